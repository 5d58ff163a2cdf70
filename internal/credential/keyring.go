// Package credential implements the host credential integration for the web
// deployment: each browser session has a keyring that can fall back to the
// server's own API key.
package credential

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/basel-ax/archaeo/internal/domain"
)

// ErrNoKeyStaged is returned when the selector is opened without a key to commit
var ErrNoKeyStaged = errors.New("no API key was entered")

var _ domain.CredentialHost = (*Keyring)(nil)

// Keyring holds the API key selected in one session
type Keyring struct {
	mu       sync.Mutex
	fallback string
	require  bool
	selected string
	staged   string
}

// NewKeyring creates a keyring. When requireSelection is set the fallback
// key is used for requests but does not count as a selected credential.
func NewKeyring(fallback string, requireSelection bool) *Keyring {
	return &Keyring{fallback: fallback, require: requireSelection}
}

// HasCredential reports whether a usable key is configured
func (k *Keyring) HasCredential(ctx context.Context) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.selected != "" {
		return true, nil
	}
	return !k.require && k.fallback != "", nil
}

// Stage records the key entered in the selection form
func (k *Keyring) Stage(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrNoKeyStaged
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.staged = key
	return nil
}

// OpenCredentialSelector commits the staged key
func (k *Keyring) OpenCredentialSelector(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.staged == "" {
		return ErrNoKeyStaged
	}
	k.selected, k.staged = k.staged, ""
	return nil
}

// Key returns the key requests should use
func (k *Keyring) Key() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.selected != "" {
		return k.selected
	}
	return k.fallback
}

type ctxKey struct{}

// WithKey attaches an API key to ctx
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// FromContext returns the API key attached to ctx
func FromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(ctxKey{}).(string)
	return key, ok && key != ""
}
