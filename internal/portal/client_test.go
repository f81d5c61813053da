package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krushisetu/internal/model"
)

func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg.BaseURL = srv.URL
	if cfg.ApplicantID == "" {
		cfg.ApplicantID = "farmer-1"
	}
	c, err := New(cfg, WithLogger(logger))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestClient_ListDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/documents/", r.URL.Path)
		assert.Equal(t, "farmer-1", r.Header.Get(ApplicantHeader))
		assert.Empty(t, r.Header.Get(CSRFHeader))
		writeJSON(w, http.StatusOK, DocumentList{
			Items: []model.Document{{ID: "d1", Type: "aadhar_card"}, {ID: "d2", Type: "photo"}},
			Total: 2,
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{CSRFToken: "tok"})
	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d1", docs[0].ID)
	assert.Equal(t, "photo", docs[1].Type)
}

func TestClient_ListDocuments_FollowsPages(t *testing.T) {
	all := make([]model.Document, 230)
	for i := range all {
		all[i] = model.Document{ID: fmt.Sprintf("d%03d", i), Type: fmt.Sprintf("custom_%d", i)}
	}
	var (
		mu      sync.Mutex
		offsets []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		mu.Lock()
		offsets = append(offsets, r.URL.Query().Get("offset"))
		mu.Unlock()
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := min(offset+ListPageSize, len(all))
		writeJSON(w, http.StatusOK, DocumentList{Items: all[offset:end], Total: len(all)})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"0", "100", "200"}, offsets)
	require.Len(t, docs, 230)
	assert.Equal(t, "d229", docs[229].ID)
}

func TestClient_ListDocuments_StopsOnEmptyPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		items := []model.Document{}
		if r.URL.Query().Get("offset") == "0" {
			items = []model.Document{{ID: "d1", Type: "photo"}}
		}
		// total still counts a document deleted between the two pages
		writeJSON(w, http.StatusOK, DocumentList{Items: items, Total: 2})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CreateDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/documents/", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get(CSRFHeader))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "aadhar_card", r.FormValue("type"))
		assert.Equal(t, "1234 5678 9012", r.FormValue("number"))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "aadhaar.pdf", fh.Filename)
		assert.Equal(t, "application/pdf", fh.Header.Get("Content-Type"))
		b, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF-1.4", string(b))

		writeJSON(w, http.StatusCreated, model.Document{ID: "new-id", Type: "aadhar_card", Number: "1234 5678 9012"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{CSRFToken: "tok"})
	doc, err := c.CreateDocument(context.Background(), DocumentUpload{
		Type:        "aadhar_card",
		Number:      "1234 5678 9012",
		Filename:    "aadhaar.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", doc.ID)
}

func TestClient_UpdateDocument_WithoutFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/documents/d1/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "NEW-1", r.FormValue("number"))
		_, _, err := r.FormFile("file")
		assert.ErrorIs(t, err, http.ErrMissingFile)
		writeJSON(w, http.StatusOK, model.Document{ID: "d1", Type: "pan_card", Number: "NEW-1"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	doc, err := c.UpdateDocument(context.Background(), "d1", DocumentUpload{Type: "pan_card", Number: "NEW-1"})
	require.NoError(t, err)
	assert.Equal(t, "NEW-1", doc.Number)

	_, err = c.UpdateDocument(context.Background(), "", DocumentUpload{})
	assert.Error(t, err)
}

func TestClient_DeleteDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/documents/d9/", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get(CSRFHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{CSRFToken: "tok"})
	require.NoError(t, c.DeleteDocument(context.Background(), "d9"))
}

func TestClient_CSRFCookieFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "issued", Path: "/"})
			writeJSON(w, http.StatusOK, SubsidyList{})
		default:
			assert.Equal(t, "issued", r.Header.Get(CSRFHeader))
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	_, err := c.ListSubsidies(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.DeleteDocument(context.Background(), "x"))
}

func TestClient_RemoteErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantDetail string
		wantUser   string
	}{
		{
			name:       "envelope",
			status:     http.StatusBadRequest,
			body:       `{"request_id":"r1","error":{"code":"VALIDATION_ERROR","message":"number is required"}}`,
			wantCode:   "VALIDATION_ERROR",
			wantDetail: "number is required",
			wantUser:   "number is required",
		},
		{
			name:       "detail",
			status:     http.StatusForbidden,
			body:       `{"detail":"CSRF Failed"}`,
			wantDetail: "CSRF Failed",
			wantUser:   "CSRF Failed",
		},
		{
			name:       "message",
			status:     http.StatusConflict,
			body:       `{"message":"already exists"}`,
			wantDetail: "already exists",
			wantUser:   "already exists",
		},
		{
			name:     "not json",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantUser: GenericMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv, Config{})
			_, err := c.ListDocuments(context.Background())
			require.Error(t, err)

			var rerr *RemoteError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.status, rerr.Status)
			assert.Equal(t, tt.wantCode, rerr.Code)
			assert.Equal(t, tt.wantDetail, rerr.Detail)
			assert.Equal(t, tt.wantUser, rerr.UserMessage())
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv, Config{})
	srv.Close()

	_, err := c.ListDocuments(context.Background())
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Zero(t, rerr.Status)
	assert.Equal(t, GenericMessage, rerr.UserMessage())
}

func TestClient_GetProfile_FallsBackOn404(t *testing.T) {
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		if r.URL.Path != "/users/me/" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		writeJSON(w, http.StatusOK, model.Profile{
			FullName:  "Ramesh Kumar",
			Documents: []model.Document{{ID: "p1", Type: "photo"}},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	prof, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", prof.FullName)
	assert.Len(t, prof.Documents, 1)
	assert.Equal(t, DefaultProfilePaths, hits)
}

func TestClient_GetProfile_StopsOnOtherErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	_, err := c.GetProfile(context.Background())
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Equal(t, 1, int(calls.Load()))
}

func TestClient_GetSubsidy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subsidies/s1/", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"s1","title":"Drip irrigation","documents_required":["aadhar_card",{"type":"land_records"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	s, err := c.GetSubsidy(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Drip irrigation", s.Title)
	assert.JSONEq(t, `["aadhar_card",{"type":"land_records"}]`, string(s.DocumentsRequired))
}

func TestClient_SubmitApplication(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/apply/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in ApplicationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "s1", in.SubsidyID)
		assert.Equal(t, []string{"d1", "d2"}, in.DocumentIDs)
		assert.JSONEq(t, `{"full_name":"Ramesh"}`, string(in.Form))

		writeJSON(w, http.StatusCreated, model.Application{ID: "app-1", Status: model.ApplicationStatusSubmitted})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	app, err := c.SubmitApplication(context.Background(), ApplicationRequest{
		SubsidyID:   "s1",
		Form:        json.RawMessage(`{"full_name":"Ramesh"}`),
		DocumentIDs: []string{"d1", "d2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
}

func TestRemoteError_Error(t *testing.T) {
	err := &RemoteError{Op: "get subsidy", Status: 404, Code: "NOT_FOUND", Detail: "subsidy not found"}
	assert.Equal(t, "portal: get subsidy: status 404 NOT_FOUND: subsidy not found", err.Error())
}
