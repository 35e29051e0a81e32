package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Exposure describes how a plaintext file relates to the git repository around it
type Exposure struct {
	Path    string
	IsRepo  bool
	Tracked bool // committed or staged: the secret is in history
	Ignored bool // matched by a .gitignore rule
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir

	// git check-ignore returns exit code 0 if file is ignored
	return cmd.Run() == nil
}

// CheckPlaintext reports whether the file at path could leak through git
func CheckPlaintext(path string) Exposure {
	e := Exposure{Path: path}

	workDir, name := filepath.Split(path)
	if workDir == "" {
		workDir = "."
	}
	if !IsGitRepo(workDir) {
		return e
	}

	e.IsRepo = true
	e.Tracked = IsTracked(workDir, name)
	e.Ignored = IsIgnored(workDir, name)
	return e
}

// Warning returns a one-line warning, or an empty string when the file is safe
func (e Exposure) Warning() string {
	switch {
	case !e.IsRepo:
		return ""
	case e.Tracked:
		return fmt.Sprintf("error: plaintext %s is tracked by git (run: git rm --cached %s)", e.Path, e.Path)
	case !e.Ignored:
		return fmt.Sprintf("warning: plaintext %s not in .gitignore", e.Path)
	default:
		return ""
	}
}
