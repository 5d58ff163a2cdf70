package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/die-net/lrucache"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/basel-ax/archaeo/internal/config"
	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/imageloader"
	"github.com/basel-ax/archaeo/internal/logger"
	"github.com/basel-ax/archaeo/internal/repository"
)

// Request is one module action forwarded to the assistant
type Request struct {
	Module         domain.ModuleType
	Image          domain.EncodedImage
	TargetLanguage string
	Context        string
}

// params is the part of a request, besides the image, that changes the answer
func (r Request) params() string {
	switch r.Module {
	case domain.ModuleTranslation:
		return "target=" + r.TargetLanguage
	case domain.ModuleMosaic:
		return "context=" + r.Context
	}
	return ""
}

// AssistantService runs module requests against the collaborator, bounding
// each call, caching answers per image content and archiving findings
type AssistantService struct {
	assistant domain.Assistant
	findings  repository.FindingRepository
	cache     *lrucache.LruCache
	timeout   time.Duration
	now       func() time.Time
}

// NewAssistantService creates a new assistant service. findings may be nil
// when archiving is disabled.
func NewAssistantService(assistant domain.Assistant, findings repository.FindingRepository, cfg *config.Config) *AssistantService {
	return &AssistantService{
		assistant: assistant,
		findings:  findings,
		cache:     lrucache.New(cfg.CacheMaxBytes, int64(cfg.CacheTTL.Seconds())),
		timeout:   cfg.RequestTimeout,
		now:       time.Now,
	}
}

// Process executes req and returns the payload to display
func (s *AssistantService) Process(ctx context.Context, req Request) (domain.Payload, error) {
	log := logger.Entry(ctx).WithField("module", req.Module)

	digest, err := imageloader.Digest(req.Image)
	if err != nil {
		return domain.Payload{}, errors.Wrap(err, "digest input")
	}
	key := cacheKey(req, digest)
	if p, ok := s.cached(key); ok {
		log.WithField("digest", digest).Debug("serving cached result")
		return p, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	p, err := s.dispatch(ctx, req)
	if err != nil {
		return domain.Payload{}, err
	}
	log.WithField("elapsed", s.now().Sub(start)).Info("assistant request completed")

	s.store(key, p)
	s.archive(ctx, req, digest, p)
	return p, nil
}

func (s *AssistantService) dispatch(ctx context.Context, req Request) (domain.Payload, error) {
	switch req.Module {
	case domain.ModuleRestoration:
		img, err := s.assistant.RestoreImage(ctx, req.Image)
		return domain.ImagePayload(img), err
	case domain.ModuleTranslation:
		text, err := s.assistant.TranslateText(ctx, domain.TranslationRequest{Image: req.Image, TargetLanguage: req.TargetLanguage})
		return domain.TextPayload(text), err
	case domain.ModuleMosaic:
		img, err := s.assistant.CompleteMosaic(ctx, domain.MosaicRequest{Image: req.Image, Context: req.Context})
		return domain.ImagePayload(img), err
	case domain.ModuleVase:
		return s.assistant.AnalyzeVase(ctx, req.Image)
	}
	return domain.Payload{}, fmt.Errorf("module %q does not call the assistant", req.Module)
}

func cacheKey(req Request, digest string) string {
	return string(req.Module) + "|" + digest + "|" + req.params()
}

type cachedPayload struct {
	Kind  domain.PayloadKind `json:"kind"`
	Value string             `json:"value"`
}

func (s *AssistantService) cached(key string) (domain.Payload, bool) {
	raw, ok := s.cache.Get(key)
	if !ok {
		return domain.Payload{}, false
	}
	var c cachedPayload
	if err := json.Unmarshal(raw, &c); err != nil {
		s.cache.Delete(key)
		return domain.Payload{}, false
	}
	if c.Kind == domain.PayloadImage {
		return domain.ImagePayload(domain.EncodedImage(c.Value)), true
	}
	return domain.TextPayload(c.Value), true
}

func (s *AssistantService) store(key string, p domain.Payload) {
	c := cachedPayload{Kind: p.Kind, Value: p.Text}
	if p.Kind == domain.PayloadImage {
		c.Value = string(p.Image)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	s.cache.Set(key, raw)
}

// archive failures are logged and never fail the request. Findings carry the
// perceptual hash of the input so similar artifacts can be grouped.
func (s *AssistantService) archive(ctx context.Context, req Request, digest string, p domain.Payload) {
	if s.findings == nil {
		return
	}
	fingerprint, ok := imageloader.PerceptualHash(req.Image)
	if !ok {
		fingerprint = digest
	}
	f := domain.Finding{
		ID:          uuid.NewString(),
		Module:      req.Module,
		Fingerprint: fingerprint,
		Params:      req.params(),
		PayloadKind: p.Kind,
		Payload:     p.Text,
		CreatedAt:   s.now(),
	}
	if p.Kind == domain.PayloadImage {
		f.Payload = string(p.Image)
	}
	if err := s.findings.Save(context.WithoutCancel(ctx), f); err != nil {
		logger.Entry(ctx).WithError(err).Warn("failed to archive finding")
	}
}
