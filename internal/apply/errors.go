package apply

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"krushisetu/internal/portal"
)

var (
	ErrAlreadyUploaded = errors.New("document already uploaded")
	ErrNoSubsidy       = errors.New("subsidy not found")
	ErrNotFound        = errors.New("document not found in draft")
	ErrEditInProgress  = errors.New("a document is already being edited")
	ErrNoEdit          = errors.New("no document is being edited")
	ErrSessionClosed   = errors.New("application session is closed")
)

// ValidationError carries per-field messages. Keys are json field paths
// such as "number", "file" or "personal.full_name".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MissingDocumentsError blocks submission while required document types are absent.
type MissingDocumentsError struct {
	Types  []string
	Labels []string
}

func (e *MissingDocumentsError) Error() string {
	return "please upload the required documents: " + strings.Join(e.Labels, ", ")
}

// UploadError reports a failed bulk upload. Type and Label name the first failing document
// in staged order; Failed counts every failure in the batch.
type UploadError struct {
	Type   string
	Label  string
	Failed int
	Total  int
	Err    error
}

func (e *UploadError) Error() string {
	msg := fmt.Sprintf("failed to upload %s", e.Label)
	if e.Failed > 1 {
		msg += fmt.Sprintf(" (%d of %d documents failed)", e.Failed, e.Total)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UploadError) Unwrap() error { return e.Err }

// UserMessage converts an engine or portal error into the single line shown to the applicant.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		verr    *ValidationError
		missing *MissingDocumentsError
		uerr    *UploadError
		rerr    *portal.RemoteError
	)
	switch {
	case errors.As(err, &verr):
		return "Please correct the highlighted fields: " + strings.TrimPrefix(verr.Error(), "validation failed: ")
	case errors.As(err, &missing):
		return missing.Error()
	case errors.As(err, &uerr):
		msg := fmt.Sprintf("Failed to upload %s.", uerr.Label)
		if errors.As(uerr.Err, &rerr) && rerr.Detail != "" {
			msg += " " + rerr.Detail
		}
		return msg
	case errors.Is(err, ErrAlreadyUploaded):
		return "A document of this type is already uploaded. Edit or remove it instead."
	case errors.Is(err, ErrNoSubsidy):
		return "This subsidy is no longer available."
	case errors.As(err, &rerr):
		return rerr.UserMessage()
	default:
		return portal.GenericMessage
	}
}
