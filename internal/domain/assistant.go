package domain

import (
	"context"
	"fmt"
)

// TranslationRequest carries the inputs of an ancient-text translation
type TranslationRequest struct {
	Image          EncodedImage
	TargetLanguage string
}

// MosaicRequest carries the inputs of a mosaic completion
type MosaicRequest struct {
	Image   EncodedImage
	Context string
}

// Assistant defines the operations of the external generative-AI collaborator
type Assistant interface {
	// RestoreImage returns a restored version of a damaged artifact photo
	RestoreImage(ctx context.Context, img EncodedImage) (EncodedImage, error)

	// TranslateText reads the inscription in img and translates it
	TranslateText(ctx context.Context, req TranslationRequest) (string, error)

	// CompleteMosaic fills the missing tesserae of a mosaic fragment
	CompleteMosaic(ctx context.Context, req MosaicRequest) (EncodedImage, error)

	// AnalyzeVase reconstructs a vase, answering with an image or a text report
	AnalyzeVase(ctx context.Context, img EncodedImage) (Payload, error)
}

// AssistantError is a structured failure reported by the collaborator
type AssistantError struct {
	Code    int
	Status  string
	Message string
}

func (e *AssistantError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("assistant error %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("assistant error %d: %s", e.Code, e.Message)
}

// CredentialHost is the optional host integration that owns the API credential
type CredentialHost interface {
	HasCredential(ctx context.Context) (bool, error)
	OpenCredentialSelector(ctx context.Context) error
}
