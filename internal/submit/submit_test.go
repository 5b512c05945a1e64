package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/sebbas-5pg/ryori-web/internal/draft"
	"github.com/sebbas-5pg/ryori-web/internal/form"
	"github.com/sebbas-5pg/ryori-web/internal/log"
	"github.com/sebbas-5pg/ryori-web/internal/store"
)

type fakeStore struct {
	calls []string

	createID      int64
	createErr     error
	createPayload store.CreatePayload
	createStarted chan struct{}
	createBlock   chan struct{}

	uploadErr error
	uploadID  int64
}

func (f *fakeStore) CreateRecipe(ctx context.Context, payload store.CreatePayload) (int64, error) {
	f.calls = append(f.calls, "create")
	f.createPayload = payload
	if f.createStarted != nil {
		close(f.createStarted)
		f.createStarted = nil
	}
	if f.createBlock != nil {
		<-f.createBlock
	}
	return f.createID, f.createErr
}

func (f *fakeStore) UploadCoverImage(ctx context.Context, id int64, file *form.File) error {
	f.calls = append(f.calls, "upload")
	f.uploadID = id
	return f.uploadErr
}

func testImage() *form.File {
	return &form.File{Data: []byte{0x89}, MimeType: "image/png", Suffix: ".png", Size: 1}
}

func testDraft() *draft.Draft {
	d := draft.New()
	d.SetTitle("Gazpacho")
	d.EditStep(0, "blend")
	d.AttachImage(testImage())
	return d
}

func TestSubmitMissingImageIssuesNoNetworkCall(t *testing.T) {
	st := &fakeStore{}
	submitter := New(st, log.NullLogger())

	d := draft.New()
	d.SetTitle("Gazpacho")

	_, err := submitter.Submit(context.Background(), d)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(st.calls) != 0 {
		t.Errorf("expected zero network calls, got %v", st.calls)
	}
}

func TestSubmitRunsCreateThenUpload(t *testing.T) {
	st := &fakeStore{createID: 42}
	submitter := New(st, log.NullLogger())

	id, err := submitter.Submit(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("Submit() returned unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("expected id 42, got %d", id)
	}

	if len(st.calls) != 2 || st.calls[0] != "create" || st.calls[1] != "upload" {
		t.Fatalf("expected [create upload], got %v", st.calls)
	}
	if st.uploadID != 42 {
		t.Errorf("expected upload against id 42, got %d", st.uploadID)
	}
	if len(st.createPayload.Steps) != 1 || st.createPayload.Steps[0].StepNumber != 1 {
		t.Errorf("expected renumbered steps in payload, got %v", st.createPayload.Steps)
	}
}

func TestSubmitCreateFailureIssuesNoUpload(t *testing.T) {
	st := &fakeStore{createErr: errors.New("store down")}
	submitter := New(st, log.NullLogger())

	_, err := submitter.Submit(context.Background(), testDraft())

	var submissionErr *SubmissionError
	if !errors.As(err, &submissionErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if submissionErr.Phase != PhaseCreate {
		t.Errorf("expected phase %q, got %q", PhaseCreate, submissionErr.Phase)
	}
	if submissionErr.CreatedID != 0 {
		t.Errorf("expected no created id, got %d", submissionErr.CreatedID)
	}
	if len(st.calls) != 1 || st.calls[0] != "create" {
		t.Errorf("expected only the create call, got %v", st.calls)
	}
}

func TestSubmitUploadFailureSurfacesCreatedID(t *testing.T) {
	st := &fakeStore{createID: 42, uploadErr: errors.New("upload refused")}
	submitter := New(st, log.NullLogger())

	_, err := submitter.Submit(context.Background(), testDraft())

	var submissionErr *SubmissionError
	if !errors.As(err, &submissionErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if submissionErr.Phase != PhaseUpload {
		t.Errorf("expected phase %q, got %q", PhaseUpload, submissionErr.Phase)
	}
	// The recipe exists in the store without its image.
	if submissionErr.CreatedID != 42 {
		t.Errorf("expected created id 42, got %d", submissionErr.CreatedID)
	}
	if !errors.Is(err, st.uploadErr) {
		t.Errorf("expected wrapped upload error, got %v", err)
	}
}

func TestSubmitErrorMessageIsGeneric(t *testing.T) {
	createFail := &SubmissionError{Phase: PhaseCreate, err: errors.New("dial tcp: refused")}
	uploadFail := &SubmissionError{Phase: PhaseUpload, CreatedID: 7, err: errors.New("413 too large")}

	if createFail.Error() != uploadFail.Error() {
		t.Errorf("expected identical user-facing messages, got %q and %q",
			createFail.Error(), uploadFail.Error())
	}
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	st := &fakeStore{
		createID:      42,
		createStarted: make(chan struct{}),
		createBlock:   make(chan struct{}),
	}
	submitter := New(st, log.NullLogger())
	d := testDraft()

	done := make(chan error, 1)
	go func() {
		_, err := submitter.Submit(context.Background(), d)
		done <- err
	}()

	<-st.createStarted
	if _, err := submitter.Submit(context.Background(), d); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight, got %v", err)
	}

	close(st.createBlock)
	if err := <-done; err != nil {
		t.Fatalf("first submission returned unexpected error: %v", err)
	}

	// The finished draft keeps the slot: a stale post-back must not
	// create the recipe a second time.
	if _, err := submitter.Submit(context.Background(), d); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight after success, got %v", err)
	}
	if got := len(st.calls); got != 2 {
		t.Errorf("expected no further store calls, got %v", st.calls)
	}
}

func TestSubmitSlotReleasedAfterFailure(t *testing.T) {
	st := &fakeStore{createID: 42, createErr: errors.New("store down")}
	submitter := New(st, log.NullLogger())
	d := testDraft()

	var submissionErr *SubmissionError
	if _, err := submitter.Submit(context.Background(), d); !errors.As(err, &submissionErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}

	// The author fixes nothing but the store recovers; the retry runs.
	st.createErr = nil
	id, err := submitter.Submit(context.Background(), d)
	if err != nil {
		t.Fatalf("retry returned unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("expected id 42, got %d", id)
	}
}
