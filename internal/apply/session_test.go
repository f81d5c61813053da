package apply

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"krushisetu/internal/apply/mocks"
	"krushisetu/internal/model"
	"krushisetu/internal/portal"
)

func subsidy(required string) *model.Subsidy {
	return &model.Subsidy{ID: "sub-1", Title: "Drip irrigation", DocumentsRequired: model.JSON(required)}
}

func testProfile() *model.Profile {
	return &model.Profile{
		FullName:      "Ramesh Kumar",
		Mobile:        "9876543210",
		State:         "Maharashtra",
		District:      "Pune",
		Village:       "Wagholi",
		LandAcres:     2.5,
		BankName:      "SBI",
		AccountNumber: "123456789012",
		IFSC:          "SBIN0001234",
	}
}

func openSession(t *testing.T, backend *mocks.MockBackend, opts Options) *Session {
	t.Helper()
	if opts.Logger == nil {
		logger, _ := test.NewNullLogger()
		opts.Logger = logger
	}
	s, err := Open(context.Background(), backend, "sub-1", opts)
	require.NoError(t, err)
	return s
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("loads subsidy, profile and documents", func(t *testing.T) {
		backend := new(mocks.MockBackend)
		backend.On("GetSubsidy", ctx, "sub-1").Return(subsidy(`["aadhar_card",{"type":"land_records"}]`), nil)
		backend.On("GetProfile", ctx).Return(testProfile(), nil)
		backend.On("ListDocuments", ctx).Return([]model.Document{{ID: "srv-1", Type: "land_records"}}, nil)

		s := openSession(t, backend, Options{})
		d := s.Draft()
		assert.Equal(t, "Ramesh Kumar", d.Form.Personal.FullName)
		assert.Equal(t, "SBIN0001234", d.Form.Bank.IFSC)
		assert.Equal(t, []string{"srv-1"}, keys(d.Persisted()))
		assert.Equal(t, []string{"Aadhaar card"}, d.Missing().Labels())
	})

	t.Run("unknown subsidy is fatal", func(t *testing.T) {
		backend := new(mocks.MockBackend)
		backend.On("GetSubsidy", ctx, "sub-1").Return(nil, &portal.RemoteError{Op: "get subsidy", Status: http.StatusNotFound})

		_, err := Open(ctx, backend, "sub-1", Options{})
		assert.ErrorIs(t, err, ErrNoSubsidy)
		backend.AssertNotCalled(t, "GetProfile", mock.Anything)
	})

	t.Run("catalog outage is returned as is", func(t *testing.T) {
		backend := new(mocks.MockBackend)
		backend.On("GetSubsidy", ctx, "sub-1").Return(nil, &portal.RemoteError{Op: "get subsidy", Status: http.StatusBadGateway})

		_, err := Open(ctx, backend, "sub-1", Options{})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNoSubsidy))
	})

	t.Run("missing profile leaves form empty", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		backend := new(mocks.MockBackend)
		backend.On("GetSubsidy", ctx, "sub-1").Return(subsidy(`[]`), nil)
		backend.On("GetProfile", ctx).Return(nil, &portal.RemoteError{Op: "get profile", Status: http.StatusNotFound})
		backend.On("ListDocuments", ctx).Return([]model.Document{}, nil)

		s := openSession(t, backend, Options{Logger: logger})
		assert.Equal(t, Form{}, s.Draft().Form)
		assert.Equal(t, "profile prefill unavailable", hook.Entries[0].Message)
	})

	t.Run("document list failure falls back to profile documents", func(t *testing.T) {
		backend := new(mocks.MockBackend)
		prof := testProfile()
		prof.Documents = []model.Document{{ID: "p-1", Type: "photo"}}
		backend.On("GetSubsidy", ctx, "sub-1").Return(subsidy(`["photo"]`), nil)
		backend.On("GetProfile", ctx).Return(prof, nil)
		backend.On("ListDocuments", ctx).Return(nil, errors.New("boom"))

		s := openSession(t, backend, Options{})
		assert.Equal(t, []string{"p-1"}, keys(s.Draft().Persisted()))
		assert.True(t, s.Draft().Complete())
	})

	t.Run("no profile and no document list", func(t *testing.T) {
		backend := new(mocks.MockBackend)
		backend.On("GetSubsidy", ctx, "sub-1").Return(subsidy(`[]`), nil)
		backend.On("GetProfile", ctx).Return(nil, errors.New("down"))
		backend.On("ListDocuments", ctx).Return(nil, errors.New("down"))

		_, err := Open(ctx, backend, "sub-1", Options{})
		assert.ErrorContains(t, err, "load documents")
	})
}

func happyBackend(required string) *mocks.MockBackend {
	backend := new(mocks.MockBackend)
	backend.On("GetSubsidy", mock.Anything, "sub-1").Return(subsidy(required), nil)
	backend.On("GetProfile", mock.Anything).Return(testProfile(), nil)
	backend.On("ListDocuments", mock.Anything).Return([]model.Document{}, nil)
	return backend
}

func TestSubmit_HappyPath(t *testing.T) {
	ctx := context.Background()
	backend := happyBackend(`["aadhar_card","bank_passbook"]`)
	s := openSession(t, backend, Options{Concurrency: 2})
	d := s.Draft()

	_, err := d.Stage(candidate("aadhar_card", "1234 5678 9012"))
	require.NoError(t, err)
	_, err = d.Stage(candidate("bank_passbook", "SB-001"))
	require.NoError(t, err)

	backend.On("CreateDocument", mock.Anything, uploadOf("aadhar_card")).
		Return(&model.Document{ID: "srv-a", Type: "aadhar_card"}, nil).Once()
	backend.On("CreateDocument", mock.Anything, uploadOf("bank_passbook")).
		Return(&model.Document{ID: "srv-b", Type: "bank_passbook"}, nil).Once()
	backend.On("SubmitApplication", ctx, mock.MatchedBy(func(in portal.ApplicationRequest) bool {
		var form Form
		if err := json.Unmarshal(in.Form, &form); err != nil {
			return false
		}
		// staged most recent first, so bank_passbook is promoted before aadhar_card
		return in.SubsidyID == "sub-1" && len(in.DocumentIDs) == 2 &&
			in.DocumentIDs[0] == "srv-b" && in.DocumentIDs[1] == "srv-a" &&
			form.Personal.FullName == "Ramesh Kumar"
	})).Return(&model.Application{ID: "app-1", Status: model.ApplicationStatusSubmitted}, nil).Once()

	app, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
	assert.True(t, s.Closed())
	assert.Nil(t, s.Draft())

	_, err = s.Submit(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
	backend.AssertExpectations(t)
}

func TestSubmit_MissingDocumentsBlocksBeforeNetwork(t *testing.T) {
	backend := happyBackend(`["aadhar_card","land_records"]`)
	s := openSession(t, backend, Options{})
	_, err := s.Draft().Stage(candidate("aadhar_card", "1"))
	require.NoError(t, err)

	_, err = s.Submit(context.Background())

	var missing *MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"land_records"}, missing.Types)
	assert.Equal(t, []string{"Land documents/tenancy proof"}, missing.Labels)
	assert.Contains(t, UserMessage(err), "Land documents/tenancy proof")
	assert.False(t, s.Closed())

	backend.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
	backend.AssertNotCalled(t, "SubmitApplication", mock.Anything, mock.Anything)
}

func TestSubmit_StrictFailureDoesNotSubmit(t *testing.T) {
	backend := happyBackend(`["aadhar_card","bank_passbook"]`)
	s := openSession(t, backend, Options{})
	d := s.Draft()
	_, _ = d.Stage(candidate("aadhar_card", "1"))
	_, _ = d.Stage(candidate("bank_passbook", "2"))

	backend.On("CreateDocument", mock.Anything, uploadOf("aadhar_card")).
		Return(&model.Document{ID: "srv-a", Type: "aadhar_card"}, nil).Once()
	backend.On("CreateDocument", mock.Anything, uploadOf("bank_passbook")).
		Return(nil, &portal.RemoteError{Op: "create document", Status: 400, Detail: "number is invalid"}).Once()

	_, err := s.Submit(context.Background())

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "Bank passbook", uerr.Label)
	assert.Equal(t, "Failed to upload Bank passbook. number is invalid", UserMessage(err))
	assert.Len(t, d.Staged(), 2)
	assert.Empty(t, d.Persisted())
	backend.AssertNotCalled(t, "SubmitApplication", mock.Anything, mock.Anything)

	t.Run("refresh drops what already reached the server", func(t *testing.T) {
		backend.ExpectedCalls = nil
		backend.On("ListDocuments", mock.Anything).Return([]model.Document{{ID: "srv-a", Type: "aadhar_card"}}, nil).Once()

		require.NoError(t, s.Refresh(context.Background()))
		assert.Equal(t, []string{"bank_passbook"}, types(d.Staged()))
		assert.Equal(t, []string{"srv-a"}, keys(d.Persisted()))
	})
}

func TestSubmit_RetryAfterStrictFailure(t *testing.T) {
	ctx := context.Background()
	backend := new(mocks.MockBackend)
	backend.On("GetSubsidy", mock.Anything, "sub-1").Return(subsidy(`["aadhar_card","bank_passbook"]`), nil)
	backend.On("GetProfile", mock.Anything).Return(testProfile(), nil)
	backend.On("ListDocuments", mock.Anything).Return([]model.Document{}, nil).Once()

	s := openSession(t, backend, Options{})
	d := s.Draft()
	_, _ = d.Stage(candidate("aadhar_card", "1"))
	_, _ = d.Stage(candidate("bank_passbook", "2"))

	backend.On("CreateDocument", mock.Anything, uploadOf("aadhar_card")).
		Return(&model.Document{ID: "srv-a", Type: "aadhar_card"}, nil).Once()
	backend.On("CreateDocument", mock.Anything, uploadOf("bank_passbook")).
		Return(nil, &portal.RemoteError{Op: "create document", Status: 500, Detail: "storage down"}).Once()

	_, err := s.Submit(ctx)
	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "bank_passbook", uerr.Type)
	assert.Len(t, d.Staged(), 2)

	// the server kept aadhar_card; repeating the submit must not upload it again
	backend.On("ListDocuments", mock.Anything).
		Return([]model.Document{{ID: "srv-a", Type: "aadhar_card"}}, nil).Once()
	backend.On("CreateDocument", mock.Anything, uploadOf("bank_passbook")).
		Return(&model.Document{ID: "srv-b", Type: "bank_passbook"}, nil).Once()
	backend.On("SubmitApplication", ctx, mock.MatchedBy(func(in portal.ApplicationRequest) bool {
		return len(in.DocumentIDs) == 2 && in.DocumentIDs[0] == "srv-a" && in.DocumentIDs[1] == "srv-b"
	})).Return(&model.Application{ID: "app-1", Status: model.ApplicationStatusSubmitted}, nil).Once()

	app, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
	assert.True(t, s.Closed())
	backend.AssertNumberOfCalls(t, "CreateDocument", 3)
	backend.AssertNumberOfCalls(t, "ListDocuments", 2)
	backend.AssertExpectations(t)
}

func TestSubmit_RetryRefreshFailure(t *testing.T) {
	ctx := context.Background()
	backend := new(mocks.MockBackend)
	backend.On("GetSubsidy", mock.Anything, "sub-1").Return(subsidy(`["photo"]`), nil)
	backend.On("GetProfile", mock.Anything).Return(testProfile(), nil)
	backend.On("ListDocuments", mock.Anything).Return([]model.Document{}, nil).Once()

	s := openSession(t, backend, Options{})
	_, _ = s.Draft().Stage(candidate("photo", "P1"))

	backend.On("CreateDocument", mock.Anything, uploadOf("photo")).Return(nil, errors.New("timeout")).Once()
	_, err := s.Submit(ctx)
	require.Error(t, err)

	backend.On("ListDocuments", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	_, err = s.Submit(ctx)
	assert.ErrorContains(t, err, "refresh documents")
	assert.Len(t, s.Draft().Staged(), 1)
	backend.AssertNumberOfCalls(t, "CreateDocument", 1)
	backend.AssertNotCalled(t, "SubmitApplication", mock.Anything, mock.Anything)
}

func TestSubmit_FormValidation(t *testing.T) {
	backend := happyBackend(`[]`)
	s := openSession(t, backend, Options{})
	s.Draft().Form.Personal.Mobile = "12345"
	s.Draft().Form.Bank.IFSC = "sbin001"

	_, err := s.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"personal.mobile": "mobile must be exactly 10 characters",
		"bank.ifsc":       "IFSC code is invalid",
	}, verr.Fields)
	assert.Equal(t, verr, s.ValidateForm())
	backend.AssertNotCalled(t, "SubmitApplication", mock.Anything, mock.Anything)
}

func TestSubmit_EditInProgress(t *testing.T) {
	backend := happyBackend(`[]`)
	s := openSession(t, backend, Options{})
	rec, _ := s.Draft().Stage(candidate("photo", "1"))
	_, err := s.Draft().BeginEdit(rec.Key)
	require.NoError(t, err)

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrEditInProgress)
}

func TestSubmit_Rejected(t *testing.T) {
	backend := happyBackend(`[]`)
	s := openSession(t, backend, Options{})
	rerr := &portal.RemoteError{Op: "submit application", Status: 400, Code: "MISSING_DOCUMENTS", Detail: "missing required documents: PAN card"}
	backend.On("SubmitApplication", mock.Anything, mock.Anything).Return(nil, rerr).Once()

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, rerr)
	assert.Equal(t, "missing required documents: PAN card", UserMessage(err))
	assert.False(t, s.Closed())
}

func TestEditPersisted(t *testing.T) {
	ctx := context.Background()
	backend := new(mocks.MockBackend)
	backend.On("GetSubsidy", ctx, "sub-1").Return(subsidy(`[]`), nil)
	backend.On("GetProfile", ctx).Return(testProfile(), nil)
	backend.On("ListDocuments", ctx).Return([]model.Document{
		{ID: "srv-1", Type: "pan_card", Number: "OLD"},
		{ID: "srv-2", Type: "photo"},
	}, nil)
	s := openSession(t, backend, Options{})

	backend.On("UpdateDocument", ctx, "srv-1", portal.DocumentUpload{Type: "pan_card", Number: "ABCDE1234F"}).
		Return(&model.Document{ID: "srv-1", Type: "pan_card", Number: "ABCDE1234F"}, nil).Once()

	rec, err := s.EditPersisted(ctx, "srv-1", Candidate{Type: "pan_card", Number: "ABCDE1234F"})
	require.NoError(t, err)
	assert.Equal(t, Persisted, rec.Origin)
	assert.Equal(t, "ABCDE1234F", s.Draft().Persisted()[0].Number)
	assert.Equal(t, []string{"srv-1", "srv-2"}, keys(s.Draft().Persisted()))

	_, err = s.EditPersisted(ctx, "srv-1", Candidate{Type: "photo", Number: "X"})
	assert.ErrorIs(t, err, ErrAlreadyUploaded)

	_, err = s.EditPersisted(ctx, "missing", Candidate{Type: "photo", Number: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.EditPersisted(ctx, "srv-2", Candidate{Type: "photo"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	backend.AssertNumberOfCalls(t, "UpdateDocument", 1)
}

func TestDeletePersisted(t *testing.T) {
	ctx := context.Background()
	backend := new(mocks.MockBackend)
	backend.On("GetSubsidy", ctx, "sub-1").Return(subsidy(`["photo"]`), nil)
	backend.On("GetProfile", ctx).Return(testProfile(), nil)
	backend.On("ListDocuments", ctx).Return([]model.Document{{ID: "srv-2", Type: "photo"}}, nil)
	s := openSession(t, backend, Options{})
	require.True(t, s.Draft().Complete())

	backend.On("DeleteDocument", ctx, "srv-2").Return(errors.New("forbidden")).Once()
	assert.Error(t, s.DeletePersisted(ctx, "srv-2"))
	assert.Len(t, s.Draft().Persisted(), 1)

	backend.On("DeleteDocument", ctx, "srv-2").Return(nil).Once()
	require.NoError(t, s.DeletePersisted(ctx, "srv-2"))
	assert.Empty(t, s.Draft().Persisted())
	assert.Equal(t, []string{"Passport size photograph"}, s.Draft().Missing().Labels())

	assert.ErrorIs(t, s.DeletePersisted(ctx, "srv-2"), ErrNotFound)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "This subsidy is no longer available.", UserMessage(ErrNoSubsidy))
	assert.Contains(t, UserMessage(ErrAlreadyUploaded), "already uploaded")
	assert.Equal(t, portal.GenericMessage, UserMessage(errors.New("x")))
	assert.Equal(t, "Please correct the highlighted fields: number: number is required",
		UserMessage(&ValidationError{Fields: map[string]string{"number": "number is required"}}))
}
