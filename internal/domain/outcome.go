package domain

// Status is the tag of a RequestOutcome
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// ErrorKind classifies a failed request for the user
type ErrorKind string

const (
	// PermissionError is an authorization failure, recoverable by selecting another credential
	PermissionError ErrorKind = "permission"
	// GenericError is any other failure, recoverable by retrying
	GenericError ErrorKind = "generic"
)

// PayloadKind tells which field of a Payload is set
type PayloadKind string

const (
	PayloadImage PayloadKind = "image"
	PayloadText  PayloadKind = "text"
)

// Payload is the result of a successful assistant request
type Payload struct {
	Kind  PayloadKind
	Image EncodedImage
	Text  string
}

// ImagePayload wraps an encoded image result
func ImagePayload(img EncodedImage) Payload {
	return Payload{Kind: PayloadImage, Image: img}
}

// TextPayload wraps a formatted text result
func TextPayload(text string) Payload {
	return Payload{Kind: PayloadText, Text: text}
}

// RequestOutcome represents the state of one module's request
type RequestOutcome struct {
	Status     Status
	Payload    Payload
	ErrorKind  ErrorKind
	MessageKey string
	// Detail is the collaborator's own error text, kept for logs only
	Detail string
}

// Idle returns the empty outcome
func Idle() RequestOutcome {
	return RequestOutcome{Status: StatusIdle}
}

// PermissionDenied reports whether the outcome is a permission failure
func (o RequestOutcome) PermissionDenied() bool {
	return o.Status == StatusFailure && o.ErrorKind == PermissionError
}
