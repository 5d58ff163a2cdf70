package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/basel-ax/archaeo/internal/credential"
	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/lifecycle"
)

var input = domain.NewEncodedImage("image/png", []byte("sherd"))

type recorder struct {
	mu     sync.Mutex
	paths  []string
	keys   []string
	bodies []string
}

func (r *recorder) record(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, req.URL.Path)
	r.keys = append(r.keys, req.Header.Get("x-goog-api-key"))
	r.bodies = append(r.bodies, string(body))
}

func newServer(t *testing.T, status int, body any) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func imageResponse(data []byte) map[string]any {
	return map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role": "model",
				"parts": []any{
					map[string]any{"text": "Here is the restored relief."},
					map[string]any{"inlineData": map[string]any{
						"mimeType": "image/png",
						"data":     base64.StdEncoding.EncodeToString(data),
					}},
				},
			},
		}},
	}
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
		}},
	}
}

func TestRestoreImage(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, imageResponse([]byte("restored")))
	c := NewClient(Config{APIKey: "server-key", BaseURL: srv.URL})

	img, err := c.RestoreImage(context.Background(), input)
	require.NoError(t, err)

	data, err := img.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("restored"), data)
	require.Len(t, rec.paths, 1)
	assert.True(t, strings.HasSuffix(rec.paths[0], "models/gemini-2.5-flash-image:generateContent"), rec.paths[0])
}

func TestTranslateText_UsesContextKey(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, textResponse("**Translation** Athena"))
	c := NewClient(Config{APIKey: "server-key", BaseURL: srv.URL})

	ctx := credential.WithKey(context.Background(), "session-key")
	text, err := c.TranslateText(ctx, domain.TranslationRequest{Image: input, TargetLanguage: "Turkish"})
	require.NoError(t, err)

	assert.Equal(t, "**Translation** Athena", text)
	assert.Equal(t, []string{"session-key"}, rec.keys)
	assert.Contains(t, rec.bodies[0], "Translate the text into Turkish")
	assert.True(t, strings.HasSuffix(rec.paths[0], "models/gemini-2.5-flash:generateContent"), rec.paths[0])
}

func TestCompleteMosaic_AddsContext(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, imageResponse([]byte("mosaic")))
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	_, err := c.CompleteMosaic(context.Background(), domain.MosaicRequest{Image: input, Context: "Zeugma, Dionysus"})
	require.NoError(t, err)
	assert.Contains(t, rec.bodies[0], "Zeugma, Dionysus")
}

func TestAnalyzeVase_TextFallback(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, textResponse("Attic red-figure krater"))
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	p, err := c.AnalyzeVase(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.TextPayload("Attic red-figure krater"), p)
}

func TestRestoreImage_TextOnlyIsError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, textResponse("I cannot do that"))
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	_, err := c.RestoreImage(context.Background(), input)
	assert.Error(t, err)
}

func TestPermissionDeniedIsStructured(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden, map[string]any{
		"error": map[string]any{
			"code":    403,
			"message": "The caller does not have access",
			"status":  "PERMISSION_DENIED",
		},
	})
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL})

	_, err := c.RestoreImage(context.Background(), input)
	require.Error(t, err)

	var ae *domain.AssistantError
	require.True(t, errors.As(err, &ae), "got %T: %v", err, err)
	assert.Equal(t, 403, ae.Code)
	assert.Equal(t, "PERMISSION_DENIED", ae.Status)
	assert.Equal(t, domain.PermissionError, lifecycle.Classify(err))
}

func TestMissingKey(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.RestoreImage(context.Background(), input)
	assert.Equal(t, domain.PermissionError, lifecycle.Classify(err))
}

func TestToAssistantError(t *testing.T) {
	err := toAssistantError(genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"})
	var ae *domain.AssistantError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 429, ae.Code)
	assert.Equal(t, domain.GenericError, lifecycle.Classify(err))

	plain := toAssistantError(errors.New("dial tcp: timeout"))
	assert.False(t, errors.As(plain, &ae))
}

func TestExtractPayload_Empty(t *testing.T) {
	_, err := extractPayload(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = extractPayload(&genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	})
	assert.ErrorContains(t, err, "blocked")
}
