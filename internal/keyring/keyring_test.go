package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestPasswordLifecycle(t *testing.T) {
	keyring.MockInit()

	if HasPassword("work") {
		t.Fatal("mock keyring should start empty")
	}

	if err := SavePassword("work", "doggos"); err != nil {
		t.Fatalf("SavePassword() error = %v", err)
	}
	if !HasPassword("work") {
		t.Error("HasPassword() = false after save")
	}

	got, err := GetPassword("work")
	if err != nil {
		t.Fatalf("GetPassword() error = %v", err)
	}
	if got != "doggos" {
		t.Errorf("GetPassword() = %q, want doggos", got)
	}

	if err := DeletePassword("work"); err != nil {
		t.Fatalf("DeletePassword() error = %v", err)
	}
	if _, err := GetPassword("work"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPassword() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDefaultProfile(t *testing.T) {
	keyring.MockInit()

	if err := SavePassword("", "pw"); err != nil {
		t.Fatal(err)
	}
	got, err := GetPassword(DefaultProfile)
	if err != nil || got != "pw" {
		t.Errorf("GetPassword(default) = %q, %v", got, err)
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	keyring.MockInit()

	if err := SavePassword("a", "one"); err != nil {
		t.Fatal(err)
	}
	if HasPassword("b") {
		t.Error("profile b should not see profile a's password")
	}
}

func TestSaveEmptyPassword(t *testing.T) {
	keyring.MockInit()

	if err := SavePassword("x", ""); err == nil {
		t.Error("expected error for empty password")
	}
	if HasPassword("x") {
		t.Error("empty password should not be stored")
	}
}
