// Package app holds the top-level state of one user session: credential
// gating, the active module and the UI language.
package app

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/i18n"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/module"
)

// CredentialState is the gate in front of the modules
type CredentialState string

const (
	// Checking means the host has not answered yet
	Checking CredentialState = "checking"
	// Gated means no credential is selected
	Gated CredentialState = "gated"
	// Ready means modules may call the assistant
	Ready CredentialState = "ready"
)

// Shell is the state of one session
type Shell struct {
	host    domain.CredentialHost
	modules map[domain.ModuleType]*module.Shell
	log     *logrus.Entry
	checked chan struct{}

	mu     sync.Mutex
	cred   CredentialState
	lang   i18n.Lang
	active domain.ModuleType
}

// New creates a session shell and starts the credential check. A nil host
// means the credential is always present.
func New(ctx context.Context, host domain.CredentialHost, proc module.Processor, lang i18n.Lang, log *logrus.Entry) *Shell {
	if log == nil {
		log = logger.Discard()
	}
	s := &Shell{
		host:    host,
		modules: make(map[domain.ModuleType]*module.Shell),
		log:     log,
		checked: make(chan struct{}),
		cred:    Checking,
		lang:    lang,
		active:  domain.ModuleRestoration,
	}
	for _, id := range domain.Modules {
		if !id.CallsAssistant() {
			continue
		}
		m, err := module.New(id, proc, log)
		if err != nil {
			panic(err)
		}
		s.modules[id] = m
	}

	go s.checkCredential(context.WithoutCancel(ctx))
	return s
}

func (s *Shell) checkCredential(ctx context.Context) {
	defer close(s.checked)

	state := Ready
	if s.host != nil {
		ok, err := s.host.HasCredential(ctx)
		if err != nil {
			s.log.WithError(err).Warn("credential check failed")
		}
		if err != nil || !ok {
			state = Gated
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// ConnectKey may have finished first
	if s.cred == Checking {
		s.cred = state
	}
}

// Checked is closed once the initial credential check has finished
func (s *Shell) Checked() <-chan struct{} {
	return s.checked
}

// CredentialState returns the current gate state
func (s *Shell) CredentialState() CredentialState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred
}

// ConnectKey opens the host credential selector and marks the key present
func (s *Shell) ConnectKey(ctx context.Context) error {
	if s.host != nil {
		if err := s.host.OpenCredentialSelector(ctx); err != nil {
			return errors.Wrap(err, "open credential selector")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Ready
	return nil
}

// Host returns the credential host, nil when none is configured
func (s *Shell) Host() domain.CredentialHost {
	return s.host
}

// Select switches the active module
func (s *Shell) Select(id string) error {
	m, err := domain.ParseModuleType(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = m
	return nil
}

// Active returns the active module
func (s *Shell) Active() domain.ModuleType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Module returns the shell of an assistant-backed module
func (s *Shell) Module(id domain.ModuleType) (*module.Shell, bool) {
	m, ok := s.modules[id]
	return m, ok
}

// Lang returns the UI language
func (s *Shell) Lang() i18n.Lang {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// ToggleLanguage switches between English and Turkish
func (s *Shell) ToggleLanguage() i18n.Lang {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = s.lang.Toggle()
	return s.lang
}

// Close waits for the credential check and every started request
func (s *Shell) Close() {
	<-s.checked
	for _, m := range s.modules {
		m.Wait()
	}
}
