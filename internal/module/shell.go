// Package module implements the per-feature screens of the assistant. Each
// shell owns the selected input image, the module's request lifecycle and the
// choice of how a result is rendered.
package module

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/i18n"
	"github.com/basel-ax/archaeo/internal/lifecycle"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/service"
	"github.com/basel-ax/archaeo/internal/slider"
)

// Processor runs one module request against the assistant
type Processor interface {
	Process(ctx context.Context, req service.Request) (domain.Payload, error)
}

// Shell is the state of one feature screen
type Shell struct {
	id   domain.ModuleType
	proc Processor
	lc   *lifecycle.Lifecycle

	mu     sync.Mutex
	input  domain.EncodedImage
	extra  string
	target string
	picked bool
}

// New creates the shell of an assistant-backed module
func New(id domain.ModuleType, proc Processor, log *logrus.Entry) (*Shell, error) {
	if !id.CallsAssistant() {
		return nil, fmt.Errorf("module %q has no request lifecycle", id)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Shell{
		id:   id,
		proc: proc,
		lc: lifecycle.New(lifecycle.Messages{
			Generic:    string(id) + ".error",
			Permission: "error.permission",
		}, log.WithField("module", id)),
	}, nil
}

// ID returns the module type
func (s *Shell) ID() domain.ModuleType {
	return s.id
}

// Key returns the i18n key of one of the module's strings, e.g. "title"
func (s *Shell) Key(suffix string) string {
	return string(s.id) + "." + suffix
}

// SelectImage replaces the input image and clears any result or error
func (s *Shell) SelectImage(img domain.EncodedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = img
	s.lc.Reset()
}

// Input returns the selected image, if any
func (s *Shell) Input() domain.EncodedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetContext stores the optional free-text context sent with mosaic requests
func (s *Shell) SetContext(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extra = strings.TrimSpace(text)
}

// Context returns the stored mosaic context
func (s *Shell) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extra
}

// SetTargetLanguage pins the translation output language. An empty value
// makes it follow the UI language again.
func (s *Shell) SetTargetLanguage(target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch target {
	case "":
		s.target, s.picked = "", false
	case i18n.English.TargetLanguage(), i18n.Turkish.TargetLanguage():
		s.target, s.picked = target, true
	default:
		return fmt.Errorf("unsupported target language %q", target)
	}
	return nil
}

// TargetLanguage returns the translation output language for UI language ui
func (s *Shell) TargetLanguage(ui i18n.Lang) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.picked {
		return s.target
	}
	return ui.TargetLanguage()
}

// Act starts the module's request with the current input. It is a no-op
// returning a nil channel when no image is selected; otherwise the channel is
// closed once the assistant has answered.
func (s *Shell) Act(ctx context.Context, ui i18n.Lang) (<-chan struct{}, error) {
	// the request snapshot and its ticket are taken together, so a concurrent
	// SelectImage either precedes both or supersedes the ticket
	s.mu.Lock()
	defer s.mu.Unlock()

	req := service.Request{
		Module:         s.id,
		Image:          s.input,
		TargetLanguage: ui.TargetLanguage(),
		Context:        s.extra,
	}
	if s.picked {
		req.TargetLanguage = s.target
	}
	return s.lc.Start(ctx, req.Image, func(ctx context.Context) (domain.Payload, error) {
		return s.proc.Process(ctx, req)
	})
}

// Outcome returns the current request outcome
func (s *Shell) Outcome() domain.RequestOutcome {
	return s.lc.Outcome()
}

// Reauthorize lets the user pick another credential after a permission
// failure, then clears the error. Other outcomes are left untouched.
func (s *Shell) Reauthorize(ctx context.Context, host domain.CredentialHost) error {
	if !s.lc.Outcome().PermissionDenied() {
		return nil
	}
	if host != nil {
		if err := host.OpenCredentialSelector(ctx); err != nil {
			return err
		}
	}
	s.lc.ClearError()
	return nil
}

// Dismiss drops the current result or error so the action can run again
func (s *Shell) Dismiss() {
	s.lc.Reset()
}

// Comparison lays out the before/after slider for an image result
func (s *Shell) Comparison(ui i18n.Lang) (slider.View, bool) {
	s.mu.Lock()
	out, input := s.lc.Outcome(), s.input
	s.mu.Unlock()

	if out.Status != domain.StatusSuccess || out.Payload.Kind != domain.PayloadImage {
		return slider.View{}, false
	}
	return slider.NewView(
		string(input),
		string(out.Payload.Image),
		i18n.T(ui, s.Key("before")),
		i18n.T(ui, s.Key("after")),
		slider.DefaultPosition,
	), true
}

// Wait blocks until every started request has returned
func (s *Shell) Wait() {
	s.lc.Wait()
}
