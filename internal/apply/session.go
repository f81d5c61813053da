package apply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"krushisetu/internal/model"
	"krushisetu/internal/portal"
	"krushisetu/internal/requirement"
	"krushisetu/internal/validation"
)

// Backend is the set of portal operations a session needs. *portal.Client satisfies it.
type Backend interface {
	Uploader
	GetSubsidy(ctx context.Context, id string) (*model.Subsidy, error)
	GetProfile(ctx context.Context) (*model.Profile, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)
	UpdateDocument(ctx context.Context, id string, up portal.DocumentUpload) (*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	SubmitApplication(ctx context.Context, in portal.ApplicationRequest) (*model.Application, error)
}

// Options configures a session.
type Options struct {
	Policy Policy
	// Concurrency caps parallel uploads; 0 uploads every staged document at once.
	Concurrency  int
	MaxFileBytes int64
	Logger       logrus.FieldLogger
}

// Session owns one application draft from opening the subsidy until submission.
type Session struct {
	backend    Backend
	draft      *Draft
	reconciler *Reconciler
	log        logrus.FieldLogger
	closed     bool
	// stale is set after a failed bulk upload: the server may hold documents the draft still
	// has staged.
	stale bool
}

// Open loads the subsidy, the profile prefill and the persisted documents and returns a
// session with a fresh draft. A subsidy the catalog does not know fails with ErrNoSubsidy.
// A missing profile only leaves the form empty; when the document list cannot be fetched the
// documents embedded in the profile are used instead.
func Open(ctx context.Context, backend Backend, subsidyID string, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("subsidy_id", subsidyID)

	subsidy, err := backend.GetSubsidy(ctx, subsidyID)
	if err != nil {
		if portal.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%s: %w", subsidyID, ErrNoSubsidy)
		}
		return nil, fmt.Errorf("load subsidy: %w", err)
	}
	required, err := requirement.Resolve(subsidy.DocumentsRequired)
	if err != nil {
		return nil, fmt.Errorf("subsidy %s documents_required: %w", subsidyID, err)
	}

	profile, err := backend.GetProfile(ctx)
	if err != nil {
		log.WithError(err).Warn("profile prefill unavailable")
		profile = nil
	}

	docs, err := backend.ListDocuments(ctx)
	if err != nil {
		if profile == nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
		log.WithError(err).Warn("document list unavailable, using profile documents")
		docs = profile.Documents
	}

	draft := NewDraft(*subsidy, required, docs, opts.MaxFileBytes)
	draft.Form = FormFromProfile(profile)

	log.WithFields(logrus.Fields{
		"required":  len(required),
		"persisted": len(docs),
	}).Info("application session opened")

	return &Session{
		backend:    backend,
		draft:      draft,
		reconciler: NewReconciler(backend, opts.Policy, opts.Concurrency, log),
		log:        log,
	}, nil
}

// Draft exposes the draft for staging, editing and viewing documents and for filling the form.
func (s *Session) Draft() *Draft { return s.draft }

// Closed reports whether the session was submitted or closed.
func (s *Session) Closed() bool { return s.closed }

// Close discards the draft.
func (s *Session) Close() {
	s.closed = true
	s.draft = nil
}

func (s *Session) check() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// EditPersisted updates a persisted document on the server and replaces it in place.
// A nil File keeps the stored file.
func (s *Session) EditPersisted(ctx context.Context, key string, c Candidate) (DocumentRecord, error) {
	if err := s.check(); err != nil {
		return DocumentRecord{}, err
	}
	d := s.draft
	i := d.persistedIndex(key)
	if i < 0 {
		return DocumentRecord{}, fmt.Errorf("persisted %q: %w", key, ErrNotFound)
	}

	c = normalize(c)
	present := d.present(true)
	if c.Type != d.persisted[i].Type {
		if err := d.checkDuplicate(c.Type, present); err != nil {
			return DocumentRecord{}, err
		}
	}
	if err := d.checkCandidate(c, false); err != nil {
		return DocumentRecord{}, err
	}

	up := portal.DocumentUpload{Type: c.Type, Number: c.Number}
	if c.File != nil {
		up.Filename = c.File.Name
		up.ContentType = c.File.ContentType
		up.Data = c.File.Data
	}
	doc, err := s.backend.UpdateDocument(ctx, key, up)
	if err != nil {
		s.log.WithError(err).WithField("document_id", key).Warn("update document failed")
		return DocumentRecord{}, err
	}
	d.replacePersisted(*doc, key)
	return *recordFromDocument(*doc), nil
}

// DeletePersisted removes a persisted document on the server and from the draft.
func (s *Session) DeletePersisted(ctx context.Context, key string) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.draft.persistedIndex(key) < 0 {
		return fmt.Errorf("persisted %q: %w", key, ErrNotFound)
	}
	if err := s.backend.DeleteDocument(ctx, key); err != nil {
		s.log.WithError(err).WithField("document_id", key).Warn("delete document failed")
		return err
	}
	s.draft.dropPersisted(key)
	return nil
}

// Refresh reloads the persisted documents. Staged documents whose type is now persisted are
// dropped, which recovers a draft after a strict bulk upload that partly succeeded.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	docs, err := s.backend.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("refresh documents: %w", err)
	}
	s.draft.setPersisted(docs)
	if n := s.draft.dropStagedShadowed(); n > 0 {
		s.log.WithField("dropped", n).Info("staged documents already on server")
	}
	return nil
}

// ValidateForm checks the application form and reports every invalid field.
func (s *Session) ValidateForm() error {
	if err := s.check(); err != nil {
		return err
	}
	return validateForm(s.draft)
}

func validateForm(d *Draft) error {
	err := d.validate.Struct(d.Form)
	if err == nil {
		return nil
	}
	if fields := validation.Fields(err); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return err
}

// Gate verifies that every required document is staged or persisted. It makes no network call.
func (s *Session) Gate() error {
	if err := s.check(); err != nil {
		return err
	}
	return gate(s.draft)
}

func gate(d *Draft) error {
	missing := d.Missing()
	if len(missing) == 0 {
		return nil
	}
	types := make([]string, len(missing))
	for i, m := range missing {
		types[i] = m.Type
	}
	return &MissingDocumentsError{Types: types, Labels: missing.Labels()}
}

// Submit validates the form, runs the gate, uploads every staged document and submits the
// application with the persisted document ids. On success the session is closed.
// After a failed bulk upload the next Submit reloads the persisted documents first, so staged
// documents the server already accepted are not uploaded twice.
func (s *Session) Submit(ctx context.Context) (*model.Application, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	d := s.draft
	if d.Editing() {
		return nil, ErrEditInProgress
	}
	if err := validateForm(d); err != nil {
		return nil, err
	}
	if err := gate(d); err != nil {
		return nil, err
	}

	if s.stale {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		s.stale = false
		// the server list replaced the persisted documents
		if err := gate(d); err != nil {
			return nil, err
		}
	}

	if err := s.reconciler.Reconcile(ctx, d); err != nil {
		s.stale = true
		return nil, err
	}

	form, err := json.Marshal(d.Form)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	ids := make([]string, 0, len(d.persisted))
	for _, r := range d.persisted {
		ids = append(ids, r.Key)
	}

	app, err := s.backend.SubmitApplication(ctx, portal.ApplicationRequest{
		SubsidyID:   d.Subsidy().ID,
		Form:        form,
		DocumentIDs: ids,
	})
	if err != nil {
		var rerr *portal.RemoteError
		if errors.As(err, &rerr) {
			s.log.WithError(err).WithField("status", rerr.Status).Warn("application rejected")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"documents":      len(ids),
	}).Info("application submitted")
	s.Close()
	return app, nil
}
