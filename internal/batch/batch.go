// Package batch runs many independent encrypt or decrypt calls in parallel.
// Each item gets its own nonce and key derivation; results keep input order.
package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/illarion/pcrypto/internal/crypto"
)

// Result represents the outcome of processing a single item.
type Result struct {
	// Position of the item in the input
	Index int

	Input  string
	Output string

	// Any error that occurred while processing this item
	Err error
}

// Encrypt encrypts every text with the options in tmpl
func Encrypt(ctx context.Context, c *crypto.Cryptor, tmpl crypto.Options, texts []string, parallel int) ([]Result, error) {
	return run(ctx, texts, parallel, func(text string) (string, error) {
		return c.Encrypt(crypto.EncryptOptions{Options: tmpl, Plaintext: text})
	})
}

// Decrypt decrypts every hex envelope with the options in tmpl
func Decrypt(ctx context.Context, c *crypto.Cryptor, tmpl crypto.Options, envelopes []string, parallel int) ([]Result, error) {
	return run(ctx, envelopes, parallel, func(envelope string) (string, error) {
		return c.Decrypt(crypto.DecryptOptions{Options: tmpl, Ciphertext: envelope})
	})
}

// run fans items out to at most parallel workers. Per-item failures land in
// Result.Err; the returned error is only set when ctx ends early.
func run(ctx context.Context, items []string, parallel int, fn func(string) (string, error)) ([]Result, error) {
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := fn(item)
			results[i] = Result{Index: i, Input: item, Output: out, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed returns the results that carry an error
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
