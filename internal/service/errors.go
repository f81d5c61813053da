package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrApplicantRequired = errors.New("applicant is required")
	ErrNotFound          = errors.New("document not found")
	ErrDuplicateType     = errors.New("a document of this type is already uploaded")
	ErrSubsidyNotFound   = errors.New("subsidy not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrUnknownDocuments  = errors.New("one or more documents do not exist")
)

// ValidationError reports invalid input fields. Keys are json field names.
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
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// MissingDocumentsError rejects an application that lacks required document types.
type MissingDocumentsError struct {
	Types  []string
	Labels []string
}

func (e *MissingDocumentsError) Error() string {
	return "missing required documents: " + strings.Join(e.Labels, ", ")
}
