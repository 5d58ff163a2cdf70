package domain

import "time"

// Finding represents an archived, successfully completed assistant request
type Finding struct {
	ID          string
	Module      ModuleType
	Fingerprint string
	Params      string
	PayloadKind PayloadKind
	Payload     string
	CreatedAt   time.Time
}

// Result decodes the archived payload
func (f Finding) Result() Payload {
	if f.PayloadKind == PayloadImage {
		return ImagePayload(EncodedImage(f.Payload))
	}
	return TextPayload(f.Payload)
}
