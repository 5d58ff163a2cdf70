package lifecycle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/basel-ax/archaeo/internal/domain"
)

// permissionMarkers are matched against unstructured error text
var permissionMarkers = []string{"403", "permission", "PERMISSION_DENIED"}

// Classify decides whether err is an authorization failure. A structured
// *domain.AssistantError is trusted as is; any other error falls back to
// matching the error text.
func Classify(err error) domain.ErrorKind {
	if err == nil {
		return ""
	}

	var ae *domain.AssistantError
	if errors.As(err, &ae) {
		switch {
		case ae.Code == http.StatusUnauthorized, ae.Code == http.StatusForbidden:
			return domain.PermissionError
		case ae.Status == "PERMISSION_DENIED", ae.Status == "UNAUTHENTICATED":
			return domain.PermissionError
		}
		return domain.GenericError
	}

	msg := err.Error()
	for _, m := range permissionMarkers {
		if strings.Contains(msg, m) {
			return domain.PermissionError
		}
	}
	return domain.GenericError
}
