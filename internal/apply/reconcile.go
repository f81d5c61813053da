package apply

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"krushisetu/internal/model"
	"krushisetu/internal/portal"
)

// Policy decides what a partially failed bulk upload does to the draft.
type Policy string

const (
	// PolicyStrict leaves the staged list untouched when any upload fails.
	PolicyStrict Policy = "strict"
	// PolicySettle promotes the uploads that succeeded and keeps only failures staged.
	PolicySettle Policy = "settle"
)

// ParsePolicy accepts "strict", "settle" or empty (strict).
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicySettle:
		return PolicySettle, nil
	default:
		return "", fmt.Errorf("unknown reconcile policy %q", s)
	}
}

// Uploader creates documents on the server.
type Uploader interface {
	CreateDocument(ctx context.Context, up portal.DocumentUpload) (*model.Document, error)
}

// Reconciler uploads every staged document of a draft concurrently and waits for all of them.
type Reconciler struct {
	uploader Uploader
	policy   Policy
	limit    int
	log      logrus.FieldLogger
	tracer   trace.Tracer
}

// NewReconciler builds a Reconciler. A positive limit caps parallel uploads; otherwise every
// staged document is uploaded at once.
func NewReconciler(up Uploader, policy Policy, limit int, log logrus.FieldLogger) *Reconciler {
	if policy == "" {
		policy = PolicyStrict
	}
	if limit < 0 {
		limit = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{
		uploader: up,
		policy:   policy,
		limit:    limit,
		log:      log,
		tracer:   otel.Tracer("krushisetu/internal/apply"),
	}
}

type uploadResult struct {
	doc     *model.Document
	err     error
	skipped bool
}

// Reconcile uploads the staged documents of d. On success every staged record is promoted to
// persisted. On failure it returns an *UploadError naming the first failing document in staged
// order and applies the policy; uploads that succeeded on the server are not rolled back.
// Under PolicyStrict uploads still waiting for a slot are skipped once one has failed, while
// uploads already in flight run to completion.
func (r *Reconciler) Reconcile(ctx context.Context, d *Draft) error {
	staged := d.Staged()
	if len(staged) == 0 {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "apply.reconcile", trace.WithAttributes(
		attribute.String("subsidy.id", d.Subsidy().ID),
		attribute.Int("documents.staged", len(staged)),
		attribute.String("policy", string(r.policy)),
	))
	defer span.End()

	limit := r.limit
	if limit == 0 {
		limit = len(staged)
	}

	results := make([]uploadResult, len(staged))
	var (
		g       errgroup.Group
		tripped atomic.Bool
	)
	g.SetLimit(limit)
	for i, rec := range staged {
		queued := i >= limit
		g.Go(func() error {
			// a queued upload starts only after an earlier one finished
			if queued && r.policy == PolicyStrict && tripped.Load() {
				results[i] = uploadResult{skipped: true}
				return nil
			}
			doc, err := r.upload(ctx, rec)
			if err != nil {
				tripped.Store(true)
			}
			results[i] = uploadResult{doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var first *UploadError
	failed, skipped := 0, 0
	for i, res := range results {
		if res.skipped {
			skipped++
			continue
		}
		if res.err == nil {
			continue
		}
		failed++
		if first == nil {
			first = &UploadError{
				Type:  staged[i].Type,
				Label: d.Required().Label(staged[i].Type),
				Err:   res.err,
			}
		}
	}

	log := r.log.WithFields(logrus.Fields{
		"subsidy_id": d.Subsidy().ID,
		"staged":     len(staged),
		"failed":     failed,
		"skipped":    skipped,
		"policy":     r.policy,
	})

	if first == nil || r.policy == PolicySettle {
		for i, res := range results {
			if res.err == nil && res.doc != nil {
				d.promote(staged[i].Key, *res.doc)
			}
		}
	}

	if first != nil {
		first.Failed = failed
		first.Total = len(staged)
		span.RecordError(first)
		span.SetStatus(codes.Error, "bulk upload failed")
		log.WithError(first.Err).WithField("type", first.Type).Warn("bulk upload failed")
		return first
	}
	log.Info("bulk upload done")
	return nil
}

func (r *Reconciler) upload(ctx context.Context, rec DocumentRecord) (*model.Document, error) {
	ctx, span := r.tracer.Start(ctx, "apply.upload", trace.WithAttributes(
		attribute.String("document.type", rec.Type),
		attribute.Int64("document.size", rec.Size),
	))
	defer span.End()

	up := portal.DocumentUpload{
		Type:     rec.Type,
		Number:   rec.Number,
		Filename: rec.Filename,
	}
	if rec.File != nil {
		up.ContentType = rec.File.ContentType
		up.Data = rec.File.Data
	}
	doc, err := r.uploader.CreateDocument(ctx, up)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, err
	}
	return doc, nil
}
