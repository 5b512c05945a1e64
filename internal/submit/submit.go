// Package submit runs the two-phase recipe creation workflow against
// the remote store: create the structured recipe, then attach the
// cover image to the identifier the store assigned.
package submit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sebbas-5pg/ryori-web/internal/draft"
	"github.com/sebbas-5pg/ryori-web/internal/form"
	"github.com/sebbas-5pg/ryori-web/internal/store"
)

// Phase identifies which half of the workflow failed. It is carried
// for logs and recovery hints; the user-facing message stays generic.
type Phase string

const (
	PhaseCreate Phase = "create"
	PhaseUpload Phase = "upload"
)

// ErrSubmitInFlight reports that this draft already has a submission
// running. At most one submission per draft is in flight at a time.
var ErrSubmitInFlight = errors.New("submission already in flight")

// ValidationError is a precondition failure detected before any
// network call. The author can correct the draft and resubmit.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionError is an opaque store or transport failure in either
// phase. CreatedID is non-zero when phase one committed before the
// failure: the recipe then exists in the store without its image, and
// resubmitting the draft would create a second recipe.
type SubmissionError struct {
	Phase     Phase
	CreatedID int64
	err       error
}

func (e *SubmissionError) Error() string {
	return "could not create the recipe"
}

func (e *SubmissionError) Unwrap() error {
	return e.err
}

// Store is the slice of the store client the orchestrator needs.
type Store interface {
	CreateRecipe(ctx context.Context, payload store.CreatePayload) (int64, error)
	UploadCoverImage(ctx context.Context, id int64, file *form.File) error
}

type Submitter struct {
	store  Store
	logger *slog.Logger
}

func New(st Store, logger *slog.Logger) *Submitter {
	return &Submitter{
		store:  st,
		logger: logger,
	}
}

// Submit validates the draft and runs the two phases strictly in
// order. The upload never starts before the create has succeeded, and
// a create failure issues no further network call. On success the
// returned id is the recipe to navigate to; the caller discards the
// draft.
//
// The submission slot is released only on failure, so the author can
// retry. A draft that submitted successfully keeps it claimed forever:
// a stale post-back of the finished draft gets ErrSubmitInFlight
// instead of creating the recipe a second time.
func (s *Submitter) Submit(ctx context.Context, d *draft.Draft) (int64, error) {
	if !d.TryBeginSubmit() {
		return 0, ErrSubmitInFlight
	}

	id, err := s.run(ctx, d)
	if err != nil {
		d.EndSubmit()
		return 0, err
	}
	return id, nil
}

func (s *Submitter) run(ctx context.Context, d *draft.Draft) (int64, error) {
	if d.Image == nil {
		return 0, &ValidationError{Message: "image required"}
	}

	payload := d.Payload()

	id, err := s.store.CreateRecipe(ctx, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "recipe creation failed",
			slog.String("phase", string(PhaseCreate)), slog.Any("error", err))
		return 0, &SubmissionError{Phase: PhaseCreate, err: err}
	}

	if err := s.store.UploadCoverImage(ctx, id, d.Image); err != nil {
		// The recipe already exists without its image. The store
		// offers no delete to compensate with, so the id is surfaced
		// for the caller to link instead.
		s.logger.ErrorContext(ctx, "cover image upload failed, recipe exists without image",
			slog.String("phase", string(PhaseUpload)),
			slog.Int64("recipe_id", id), slog.Any("error", err))
		return 0, &SubmissionError{Phase: PhaseUpload, CreatedID: id, err: err}
	}

	return id, nil
}
