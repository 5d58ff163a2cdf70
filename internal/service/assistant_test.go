package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basel-ax/archaeo/internal/config"
	"github.com/basel-ax/archaeo/internal/domain"
)

type fakeAssistant struct {
	mu      sync.Mutex
	calls   int
	lastCtx context.Context
	target  string
	err     error
	block   bool
}

func (f *fakeAssistant) record(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastCtx = ctx
}

func (f *fakeAssistant) RestoreImage(ctx context.Context, img domain.EncodedImage) (domain.EncodedImage, error) {
	f.record(ctx)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return domain.NewEncodedImage("image/png", []byte("restored")), f.err
}

func (f *fakeAssistant) TranslateText(ctx context.Context, req domain.TranslationRequest) (string, error) {
	f.record(ctx)
	f.target = req.TargetLanguage
	return "translated into " + req.TargetLanguage, f.err
}

func (f *fakeAssistant) CompleteMosaic(ctx context.Context, req domain.MosaicRequest) (domain.EncodedImage, error) {
	f.record(ctx)
	return domain.NewEncodedImage("image/png", []byte("mosaic:"+req.Context)), f.err
}

func (f *fakeAssistant) AnalyzeVase(ctx context.Context, img domain.EncodedImage) (domain.Payload, error) {
	f.record(ctx)
	return domain.TextPayload("krater"), f.err
}

type memFindings struct {
	mu    sync.Mutex
	saved []domain.Finding
}

func (m *memFindings) Save(ctx context.Context, f domain.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, f)
	return nil
}

func (m *memFindings) Get(ctx context.Context, id string) (*domain.Finding, error) {
	return nil, errors.New("not implemented")
}

func (m *memFindings) ListRecent(ctx context.Context, limit int) ([]domain.Finding, error) {
	return nil, nil
}

func (m *memFindings) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout: time.Second,
		CacheMaxBytes:  1 << 20,
		CacheTTL:       time.Hour,
	}
}

var input = domain.NewEncodedImage("application/octet-stream", []byte("not decodable"))

func TestProcess_DispatchesByModule(t *testing.T) {
	fa := &fakeAssistant{}
	svc := NewAssistantService(fa, nil, testConfig())
	ctx := context.Background()

	p, err := svc.Process(ctx, Request{Module: domain.ModuleRestoration, Image: input})
	require.NoError(t, err)
	assert.Equal(t, domain.PayloadImage, p.Kind)

	p, err = svc.Process(ctx, Request{Module: domain.ModuleTranslation, Image: input, TargetLanguage: "Turkish"})
	require.NoError(t, err)
	assert.Equal(t, domain.TextPayload("translated into Turkish"), p)

	p, err = svc.Process(ctx, Request{Module: domain.ModuleMosaic, Image: input, Context: "villa"})
	require.NoError(t, err)
	data, err := p.Image.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mosaic:villa", string(data))

	p, err = svc.Process(ctx, Request{Module: domain.ModuleVase, Image: input})
	require.NoError(t, err)
	assert.Equal(t, domain.TextPayload("krater"), p)

	_, err = svc.Process(ctx, Request{Module: domain.ModuleFrigated, Image: input})
	assert.Error(t, err)
}

func TestProcess_CachesByFingerprintAndParams(t *testing.T) {
	fa := &fakeAssistant{}
	svc := NewAssistantService(fa, nil, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Process(ctx, Request{Module: domain.ModuleTranslation, Image: input, TargetLanguage: "English"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fa.calls)

	p, err := svc.Process(ctx, Request{Module: domain.ModuleTranslation, Image: input, TargetLanguage: "Turkish"})
	require.NoError(t, err)
	assert.Equal(t, 2, fa.calls)
	assert.Equal(t, "translated into Turkish", p.Text)
}

// checkerboard draws size×size 4px tiles of a and b
func checkerboard(t *testing.T, size int, a, b color.Color) domain.EncodedImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return domain.NewEncodedImage("image/png", buf.Bytes())
}

func TestProcess_SimilarImagesDoNotShareResults(t *testing.T) {
	fa := &fakeAssistant{}
	svc := NewAssistantService(fa, nil, testConfig())
	ctx := context.Background()

	// same tile layout, different colours
	a := checkerboard(t, 256, color.Black, color.White)
	b := checkerboard(t, 256, color.RGBA{R: 255, A: 255}, color.RGBA{G: 255, B: 255, A: 255})

	_, err := svc.Process(ctx, Request{Module: domain.ModuleRestoration, Image: a})
	require.NoError(t, err)
	_, err = svc.Process(ctx, Request{Module: domain.ModuleRestoration, Image: b})
	require.NoError(t, err)
	assert.Equal(t, 2, fa.calls)

	_, err = svc.Process(ctx, Request{Module: domain.ModuleRestoration, Image: a})
	require.NoError(t, err)
	assert.Equal(t, 2, fa.calls)
}

func TestProcess_ErrorsAreNotCached(t *testing.T) {
	fa := &fakeAssistant{err: errors.New("network timeout")}
	svc := NewAssistantService(fa, nil, testConfig())

	for i := 0; i < 2; i++ {
		_, err := svc.Process(context.Background(), Request{Module: domain.ModuleVase, Image: input})
		assert.Error(t, err)
	}
	assert.Equal(t, 2, fa.calls)
}

func TestProcess_Archives(t *testing.T) {
	findings := &memFindings{}
	svc := NewAssistantService(&fakeAssistant{}, findings, testConfig())

	_, err := svc.Process(context.Background(), Request{Module: domain.ModuleMosaic, Image: input, Context: "Zeugma"})
	require.NoError(t, err)

	require.Len(t, findings.saved, 1)
	f := findings.saved[0]
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, domain.ModuleMosaic, f.Module)
	assert.Equal(t, "context=Zeugma", f.Params)
	assert.Equal(t, domain.PayloadImage, f.PayloadKind)
	assert.True(t, strings.HasPrefix(f.Fingerprint, "sha256:"), "undecodable input falls back to its digest")
}

func TestProcess_ArchivesPerceptualHash(t *testing.T) {
	findings := &memFindings{}
	svc := NewAssistantService(&fakeAssistant{}, findings, testConfig())

	_, err := svc.Process(context.Background(), Request{Module: domain.ModuleVase, Image: checkerboard(t, 64, color.Black, color.White)})
	require.NoError(t, err)

	require.Len(t, findings.saved, 1)
	assert.True(t, strings.HasPrefix(findings.saved[0].Fingerprint, "p:"), findings.saved[0].Fingerprint)
}

func TestProcess_Timeout(t *testing.T) {
	fa := &fakeAssistant{block: true}
	cfg := testConfig()
	cfg.RequestTimeout = 10 * time.Millisecond
	svc := NewAssistantService(fa, nil, cfg)

	_, err := svc.Process(context.Background(), Request{Module: domain.ModuleRestoration, Image: input})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
