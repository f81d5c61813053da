// Package apply implements the applicant side of a subsidy application: the document draft,
// staging with duplicate-type protection, the bulk upload reconciler and the submission gate.
//
// A Draft and the Session that owns it are not safe for concurrent use.
package apply

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"krushisetu/internal/model"
	"krushisetu/internal/requirement"
	"krushisetu/internal/validation"
)

// Origin tells whether a record exists only locally or on the server.
type Origin int

const (
	Staged Origin = iota
	Persisted
)

func (o Origin) String() string {
	if o == Persisted {
		return "persisted"
	}
	return "staged"
}

// File is an in-memory document payload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Candidate is the input for staging or editing a document.
type Candidate struct {
	Type   string `json:"type" validate:"required"`
	Number string `json:"number" validate:"required,max=40"`
	File   *File  `json:"file" validate:"required"`
}

// DocumentRecord is one document of the draft. For persisted records Key is the server id
// and File is nil.
type DocumentRecord struct {
	Key        string
	Type       string
	Number     string
	File       *File
	Filename   string
	Size       int64
	UploadedAt time.Time
	Origin     Origin
}

func recordFromDocument(d model.Document) *DocumentRecord {
	return &DocumentRecord{
		Key:        d.ID,
		Type:       d.Type,
		Number:     d.Number,
		Filename:   d.Filename,
		Size:       d.Size,
		UploadedAt: d.UploadedAt,
		Origin:     Persisted,
	}
}

type checkout struct {
	rec   *DocumentRecord
	index int
}

// Draft holds the application being prepared: the form, the required document set and the
// staged and persisted documents.
type Draft struct {
	Form Form

	subsidy  model.Subsidy
	required requirement.Set
	maxBytes int64

	staged    []*DocumentRecord
	persisted []*DocumentRecord
	editing   *checkout

	rev   uint64
	cache *view

	validate *validator.Validate
	now      func() time.Time
	newKey   func() (string, error)
}

// NewDraft builds a draft for subsidy with the given persisted documents in server order.
func NewDraft(subsidy model.Subsidy, required requirement.Set, persisted []model.Document, maxBytes int64) *Draft {
	if maxBytes <= 0 {
		maxBytes = model.MaxDocumentBytes
	}
	d := &Draft{
		subsidy:  subsidy,
		required: required,
		maxBytes: maxBytes,
		validate: validation.New(),
		now:      time.Now,
		newKey:   func() (string, error) { return gonanoid.New() },
	}
	d.setPersisted(persisted)
	return d
}

// Subsidy is the subsidy this draft applies for.
func (d *Draft) Subsidy() model.Subsidy { return d.subsidy }

// Required is the resolved required-document set.
func (d *Draft) Required() requirement.Set { return d.required }

// Editing reports whether a staged record is checked out.
func (d *Draft) Editing() bool { return d.editing != nil }

func (d *Draft) touch() { d.rev++ }

func (d *Draft) setPersisted(docs []model.Document) {
	d.persisted = make([]*DocumentRecord, 0, len(docs))
	for _, doc := range docs {
		d.persisted = append(d.persisted, recordFromDocument(doc))
	}
	d.touch()
}

// present returns the document types currently held by the draft, including a record
// checked out for editing.
func (d *Draft) present(withCheckout bool) map[string]bool {
	out := make(map[string]bool, len(d.staged)+len(d.persisted)+1)
	for _, r := range d.staged {
		out[r.Type] = true
	}
	for _, r := range d.persisted {
		out[r.Type] = true
	}
	if withCheckout && d.editing != nil {
		out[d.editing.rec.Type] = true
	}
	return out
}

func (d *Draft) checkDuplicate(docType string, present map[string]bool) error {
	if docType != "" && present[docType] {
		return fmt.Errorf("%s: %w", d.required.Label(docType), ErrAlreadyUploaded)
	}
	return nil
}

// checkCandidate validates c and reports every field problem at once.
// When requireFile is false a nil File is accepted.
func (d *Draft) checkCandidate(c Candidate, requireFile bool) error {
	var err error
	if requireFile {
		err = d.validate.Struct(c)
	} else {
		err = d.validate.StructExcept(c, "File")
	}
	fields := validation.Fields(err)
	if fields == nil {
		fields = map[string]string{}
	}

	if c.Type != "" && len(d.required) > 0 && !d.required.Has(c.Type) {
		fields["type"] = fmt.Sprintf("%s is not required for this subsidy", requirement.Label(c.Type))
	}
	if c.File != nil {
		switch {
		case len(c.File.Data) == 0:
			fields["file"] = "file is empty"
		case int64(len(c.File.Data)) > d.maxBytes:
			fields["file"] = fmt.Sprintf("file must be %d MB or smaller", d.maxBytes>>20)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func normalize(c Candidate) Candidate {
	c.Type = strings.TrimSpace(c.Type)
	c.Number = strings.TrimSpace(c.Number)
	return c
}

// Stage validates c and adds it to the front of the staged list.
// A type already present in the draft fails with ErrAlreadyUploaded before any field checks.
func (d *Draft) Stage(c Candidate) (DocumentRecord, error) {
	c = normalize(c)
	if err := d.checkDuplicate(c.Type, d.present(true)); err != nil {
		return DocumentRecord{}, err
	}
	if err := d.checkCandidate(c, true); err != nil {
		return DocumentRecord{}, err
	}

	key, err := d.newKey()
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("generate staging key: %w", err)
	}
	rec := &DocumentRecord{
		Key:        key,
		Type:       c.Type,
		Number:     c.Number,
		File:       c.File,
		Filename:   c.File.Name,
		Size:       int64(len(c.File.Data)),
		UploadedAt: d.now(),
		Origin:     Staged,
	}
	d.staged = append([]*DocumentRecord{rec}, d.staged...)
	d.touch()
	return *rec, nil
}

func (d *Draft) stagedIndex(key string) int {
	for i, r := range d.staged {
		if r.Key == key {
			return i
		}
	}
	return -1
}

func (d *Draft) persistedIndex(key string) int {
	for i, r := range d.persisted {
		if r.Key == key {
			return i
		}
	}
	return -1
}

// RemoveStaged drops a staged record. Persisted records are removed through the session.
func (d *Draft) RemoveStaged(key string) error {
	i := d.stagedIndex(key)
	if i < 0 {
		return fmt.Errorf("staged %q: %w", key, ErrNotFound)
	}
	d.staged = append(d.staged[:i], d.staged[i+1:]...)
	d.touch()
	return nil
}

// BeginEdit checks a staged record out of the list. Its type stays reserved until the edit
// is saved or cancelled.
func (d *Draft) BeginEdit(key string) (DocumentRecord, error) {
	if d.editing != nil {
		return DocumentRecord{}, ErrEditInProgress
	}
	i := d.stagedIndex(key)
	if i < 0 {
		return DocumentRecord{}, fmt.Errorf("staged %q: %w", key, ErrNotFound)
	}
	rec := d.staged[i]
	d.staged = append(d.staged[:i], d.staged[i+1:]...)
	d.editing = &checkout{rec: rec, index: i}
	d.touch()
	return *rec, nil
}

// SaveEdit applies c to the checked-out record and puts it back at its position under the
// same key. A nil File keeps the existing payload.
func (d *Draft) SaveEdit(c Candidate) (DocumentRecord, error) {
	if d.editing == nil {
		return DocumentRecord{}, ErrNoEdit
	}
	c = normalize(c)
	if err := d.checkDuplicate(c.Type, d.present(false)); err != nil {
		return DocumentRecord{}, err
	}
	if err := d.checkCandidate(c, false); err != nil {
		return DocumentRecord{}, err
	}

	rec := *d.editing.rec
	rec.Type = c.Type
	rec.Number = c.Number
	if c.File != nil {
		rec.File = c.File
		rec.Filename = c.File.Name
		rec.Size = int64(len(c.File.Data))
		rec.UploadedAt = d.now()
	}
	d.restore(&rec)
	return rec, nil
}

// CancelEdit puts the checked-out record back unchanged.
func (d *Draft) CancelEdit() error {
	if d.editing == nil {
		return ErrNoEdit
	}
	d.restore(d.editing.rec)
	return nil
}

func (d *Draft) restore(rec *DocumentRecord) {
	i := d.editing.index
	if i > len(d.staged) {
		i = len(d.staged)
	}
	d.staged = append(d.staged, nil)
	copy(d.staged[i+1:], d.staged[i:])
	d.staged[i] = rec
	d.editing = nil
	d.touch()
}

func (d *Draft) replacePersisted(doc model.Document, key string) {
	if i := d.persistedIndex(key); i >= 0 {
		d.persisted[i] = recordFromDocument(doc)
		d.touch()
	}
}

func (d *Draft) dropPersisted(key string) {
	if i := d.persistedIndex(key); i >= 0 {
		d.persisted = append(d.persisted[:i], d.persisted[i+1:]...)
		d.touch()
	}
}

// promote moves a staged record to the end of the persisted list as the server document.
func (d *Draft) promote(key string, doc model.Document) {
	if i := d.stagedIndex(key); i >= 0 {
		d.staged = append(d.staged[:i], d.staged[i+1:]...)
	}
	d.persisted = append(d.persisted, recordFromDocument(doc))
	d.touch()
}

// dropStagedShadowed removes staged records whose type is now persisted.
func (d *Draft) dropStagedShadowed() int {
	persisted := make(map[string]bool, len(d.persisted))
	for _, r := range d.persisted {
		persisted[r.Type] = true
	}
	kept := d.staged[:0]
	dropped := 0
	for _, r := range d.staged {
		if persisted[r.Type] {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	d.staged = kept
	if dropped > 0 {
		d.touch()
	}
	return dropped
}
