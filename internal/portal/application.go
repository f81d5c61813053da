package portal

import (
	"context"
	"encoding/json"
	"net/http"

	"krushisetu/internal/model"
)

// ApplicationRequest is the JSON body of POST /apply/.
type ApplicationRequest struct {
	SubsidyID   string          `json:"subsidy_id"`
	Form        json.RawMessage `json:"form"`
	DocumentIDs []string        `json:"document_ids"`
}

// SubmitApplication posts a completed application.
func (c *Client) SubmitApplication(ctx context.Context, in ApplicationRequest) (*model.Application, error) {
	if in.DocumentIDs == nil {
		in.DocumentIDs = []string{}
	}
	var app model.Application
	if err := c.sendJSON(ctx, "submit application", http.MethodPost, "/apply/", in, &app); err != nil {
		return nil, err
	}
	return &app, nil
}
