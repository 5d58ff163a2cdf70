package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/basel-ax/archaeo/internal/credential"
	"github.com/basel-ax/archaeo/internal/domain"
)

var _ domain.Assistant = (*Client)(nil)

// Config holds the Gemini client settings
type Config struct {
	APIKey     string
	ImageModel string
	TextModel  string
	// BaseURL overrides the API endpoint, for tests
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements domain.Assistant on the Gemini API. The API key of a
// call is taken from the context when present, so sessions may bring their
// own key.
type Client struct {
	cfg Config

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewClient creates a new Gemini client
func NewClient(cfg Config) *Client {
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gemini-2.5-flash-image"
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	return &Client{cfg: cfg, clients: make(map[string]*genai.Client)}
}

// RestoreImage asks the image model for a restored artifact
func (c *Client) RestoreImage(ctx context.Context, img domain.EncodedImage) (domain.EncodedImage, error) {
	p, err := c.generate(ctx, c.cfg.ImageModel, img, restorePrompt, imageModalities)
	if err != nil {
		return "", err
	}
	return imageOnly(p)
}

// TranslateText transcribes and translates the inscription in the image
func (c *Client) TranslateText(ctx context.Context, req domain.TranslationRequest) (string, error) {
	target := req.TargetLanguage
	if target == "" {
		target = "English"
	}
	p, err := c.generate(ctx, c.cfg.TextModel, req.Image, fmt.Sprintf(translatePrompt, target), nil)
	if err != nil {
		return "", err
	}
	if p.Kind != domain.PayloadText || strings.TrimSpace(p.Text) == "" {
		return "", fmt.Errorf("no translation returned")
	}
	return p.Text, nil
}

// CompleteMosaic asks the image model to fill missing tesserae
func (c *Client) CompleteMosaic(ctx context.Context, req domain.MosaicRequest) (domain.EncodedImage, error) {
	prompt := mosaicPrompt
	if extra := strings.TrimSpace(req.Context); extra != "" {
		prompt += fmt.Sprintf(mosaicContextPrompt, extra)
	}
	p, err := c.generate(ctx, c.cfg.ImageModel, req.Image, prompt, imageModalities)
	if err != nil {
		return "", err
	}
	return imageOnly(p)
}

// AnalyzeVase reconstructs a vase; the model may answer with text only
func (c *Client) AnalyzeVase(ctx context.Context, img domain.EncodedImage) (domain.Payload, error) {
	return c.generate(ctx, c.cfg.ImageModel, img, vasePrompt, imageModalities)
}

var imageModalities = []string{"IMAGE", "TEXT"}

func (c *Client) generate(ctx context.Context, model string, img domain.EncodedImage, prompt string, modalities []string) (domain.Payload, error) {
	data, err := img.Bytes()
	if err != nil {
		return domain.Payload{}, fmt.Errorf("failed to decode input image: %w", err)
	}

	client, err := c.clientFor(ctx)
	if err != nil {
		return domain.Payload{}, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, img.MIMEType()),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	var config *genai.GenerateContentConfig
	if len(modalities) > 0 {
		config = &genai.GenerateContentConfig{ResponseModalities: modalities}
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return domain.Payload{}, toAssistantError(err)
	}
	return extractPayload(resp)
}

func (c *Client) clientFor(ctx context.Context) (*genai.Client, error) {
	key, ok := credential.FromContext(ctx)
	if !ok {
		key = c.cfg.APIKey
	}
	if key == "" {
		return nil, &domain.AssistantError{Code: http.StatusUnauthorized, Status: "UNAUTHENTICATED", Message: "no API key configured"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.cfg.HTTPClient,
	}
	if c.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.clients[key] = client
	return client, nil
}

// extractPayload prefers the first inline image; otherwise it joins the text parts
func extractPayload(resp *genai.GenerateContentResponse) (domain.Payload, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return domain.Payload{}, fmt.Errorf("request blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return domain.Payload{}, fmt.Errorf("no candidates returned")
	}

	var text []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return domain.ImagePayload(domain.NewEncodedImage(mimeType, part.InlineData.Data)), nil
			}
			if part.Text != "" && !part.Thought {
				text = append(text, part.Text)
			}
		}
	}
	if len(text) == 0 {
		return domain.Payload{}, fmt.Errorf("empty response")
	}
	return domain.TextPayload(strings.Join(text, "")), nil
}

func imageOnly(p domain.Payload) (domain.EncodedImage, error) {
	if p.Kind != domain.PayloadImage {
		return "", fmt.Errorf("model answered without an image: %.200s", p.Text)
	}
	return p.Image, nil
}

// toAssistantError keeps the HTTP code and status of API failures so the
// lifecycle can classify them without reading the message
func toAssistantError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.AssistantError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.AssistantError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}
