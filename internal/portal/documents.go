package portal

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"krushisetu/internal/model"
)

// DocumentList is the list envelope returned by GET /documents/.
type DocumentList struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentUpload is the multipart body for creating or updating a document.
// Data may be nil on update, in which case the stored file is kept.
type DocumentUpload struct {
	Type        string
	Number      string
	Filename    string
	ContentType string
	Data        []byte
}

// ListPageSize is the page size requested from GET /documents/, the server's maximum.
const ListPageSize = 100

// ListDocuments returns every persisted document of the applicant in server order, following
// offsets until the reported total is reached.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	docs := []model.Document{}
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(ListPageSize))
		q.Set("offset", strconv.Itoa(len(docs)))

		var out DocumentList
		if err := c.getJSON(ctx, "list documents", "/documents/?"+q.Encode(), &out); err != nil {
			return nil, err
		}
		docs = append(docs, out.Items...)
		// an empty page stops the loop if the total changes underneath us
		if len(out.Items) == 0 || len(docs) >= out.Total {
			return docs, nil
		}
	}
}

// CreateDocument uploads a new document.
func (c *Client) CreateDocument(ctx context.Context, up DocumentUpload) (*model.Document, error) {
	return c.sendDocument(ctx, "create document", http.MethodPost, "/documents/", up)
}

// UpdateDocument replaces the type, number and optionally the file of a persisted document.
func (c *Client) UpdateDocument(ctx context.Context, id string, up DocumentUpload) (*model.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("update document: id is required")
	}
	return c.sendDocument(ctx, "update document", http.MethodPut, "/documents/"+url.PathEscape(id)+"/", up)
}

// DeleteDocument removes a persisted document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete document: id is required")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id)+"/", nil, "")
	if err != nil {
		return &RemoteError{Op: "delete document", Err: err}
	}
	return c.do("delete document", req, nil)
}

func (c *Client) sendDocument(ctx context.Context, op, method, path string, up DocumentUpload) (*model.Document, error) {
	body, contentType, err := encodeDocument(up)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, &RemoteError{Op: op, Err: err}
	}
	var doc model.Document
	if err := c.do(op, req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeDocument(up DocumentUpload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("type", up.Type); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("number", up.Number); err != nil {
		return nil, "", err
	}
	if up.Data != nil {
		ct := up.ContentType
		if ct == "" {
			ct = http.DetectContentType(up.Data)
		}
		name := up.Filename
		if name == "" {
			name = up.Type
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(up.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
