package gocardless

import (
	"context"
	"net/http"
	"net/url"
)

const defaultFinalizedStatus = "LINKED"

type createRequisitionRequest struct {
	Redirect      string `json:"redirect"`
	InstitutionID string `json:"institution_id"`
	UserLanguage  string `json:"user_language"`
}

// StartConnection creates a requisition for institutionID. The returned Redirect is the
// consent page; the aggregator sends the user back to redirectURL afterwards.
func (c *Client) StartConnection(ctx context.Context, institutionID, redirectURL string) (*StartedConnection, error) {
	var req Requisition
	body := createRequisitionRequest{
		Redirect:      redirectURL,
		InstitutionID: institutionID,
		UserLanguage:  "EN",
	}
	if err := c.do(ctx, "create requisition", http.MethodPost, "/requisitions/", body, &req); err != nil {
		return nil, err
	}
	return &StartedConnection{Redirect: req.Link, ConnectionID: req.ID}, nil
}

// LinkStatus is the status to record after the consent redirect; an empty upstream
// status counts as linked.
func (r *Requisition) LinkStatus() string {
	if r.Status == "" {
		return defaultFinalizedStatus
	}
	return r.Status
}

func (c *Client) GetRequisition(ctx context.Context, connectionID string) (*Requisition, error) {
	var req Requisition
	if err := c.do(ctx, "read requisition", http.MethodGet, "/requisitions/"+url.PathEscape(connectionID)+"/", nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
