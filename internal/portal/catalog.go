package portal

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"krushisetu/internal/model"
)

// SubsidyList is the list envelope returned by GET /subsidies/.
type SubsidyList struct {
	Items []model.Subsidy `json:"data"`
	Total int             `json:"total"`
}

// GetSubsidy fetches one subsidy definition from the catalog.
func (c *Client) GetSubsidy(ctx context.Context, id string) (*model.Subsidy, error) {
	if id == "" {
		return nil, errors.New("get subsidy: id is required")
	}
	var s model.Subsidy
	if err := c.getJSON(ctx, "get subsidy", "/subsidies/"+url.PathEscape(id)+"/", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSubsidies returns the catalog.
func (c *Client) ListSubsidies(ctx context.Context) ([]model.Subsidy, error) {
	var out SubsidyList
	if err := c.getJSON(ctx, "list subsidies", "/subsidies/", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetProfile fetches the profile prefill, trying each configured path in order.
// A 404 moves on to the next path; any other failure is returned as is.
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var lastErr error
	for _, p := range c.profilePaths {
		var prof model.Profile
		err := c.getJSON(ctx, "get profile", p, &prof)
		if err == nil {
			return &prof, nil
		}
		if !IsStatus(err, http.StatusNotFound) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &RemoteError{Op: "get profile", Status: http.StatusNotFound}
	}
	return nil, lastErr
}
