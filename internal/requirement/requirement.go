// Package requirement normalizes a subsidy's documents_required catalog value into an ordered
// set of document types with display labels.
package requirement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"krushisetu/internal/model"
)

// ErrInvalidEntry is returned when a documents_required item is neither a string nor an object.
var ErrInvalidEntry = errors.New("invalid documents_required entry")

var (
	typeKeys  = []string{"type", "document_type", "code", "key"}
	labelKeys = []string{"label", "display_name", "name"}

	separators = strings.NewReplacer("_", " ", "-", " ")
)

// Document is one required document type and the label shown to the applicant.
type Document struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Set is an ordered set of required documents.
type Set []Document

// Label returns the display label for a document type. Known types use the fixed label table;
// anything else is derived from the identifier ("crop_insurance-receipt" -> "Crop Insurance Receipt").
func Label(docType string) string {
	if l, ok := model.DocumentTypeLabels[docType]; ok {
		return l
	}
	words := strings.Fields(separators.Replace(docType))
	if len(words) == 0 {
		return ""
	}
	// cases.Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Resolve parses documents_required. Items may be plain type strings or descriptor objects;
// order is kept and repeated types collapse onto their first occurrence.
func Resolve(raw []byte) (Set, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Set{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode documents_required: %w", err)
	}

	out := make(Set, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		doc, err := resolveItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if doc.Type == "" || seen[doc.Type] {
			continue
		}
		seen[doc.Type] = true
		out = append(out, doc)
	}
	return out, nil
}

// FromTypes builds a Set from bare type identifiers.
func FromTypes(types ...string) Set {
	b, _ := json.Marshal(types)
	s, _ := Resolve(b)
	return s
}

func resolveItem(item json.RawMessage) (Document, error) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		t := strings.TrimSpace(s)
		return Document{Type: t, Label: Label(t)}, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(item, &obj); err != nil {
		return Document{}, ErrInvalidEntry
	}

	t := firstString(obj, typeKeys)
	label := firstString(obj, labelKeys)
	if t == "" {
		// {"name": "land_records"} style descriptors carry the type under name.
		t, label = label, ""
	}
	if t == "" {
		return Document{}, nil
	}
	if label == "" || label == t {
		label = Label(t)
	}
	return Document{Type: t, Label: label}, nil
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := obj[k].(string); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Has reports whether docType is part of the set.
func (s Set) Has(docType string) bool {
	for _, d := range s {
		if d.Type == docType {
			return true
		}
	}
	return false
}

// Label returns the label the set declares for docType, falling back to the generated one.
func (s Set) Label(docType string) string {
	for _, d := range s {
		if d.Type == docType {
			return d.Label
		}
	}
	return Label(docType)
}

// Missing returns the members of s whose type is not in present, in set order.
func (s Set) Missing(present map[string]bool) Set {
	out := make(Set, 0)
	for _, d := range s {
		if !present[d.Type] {
			out = append(out, d)
		}
	}
	return out
}

// Labels returns the display labels in set order.
func (s Set) Labels() []string {
	out := make([]string, len(s))
	for i, d := range s {
		out[i] = d.Label
	}
	return out
}
