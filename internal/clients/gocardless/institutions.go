package gocardless

import (
	"context"
	"net/http"
	"net/url"
)

// ListInstitutions returns every institution available in the configured country.
func (c *Client) ListInstitutions(ctx context.Context) ([]Institution, error) {
	path := "/institutions/?" + url.Values{"country": []string{c.country}}.Encode()

	var institutions []Institution
	if err := c.do(ctx, "list institutions", http.MethodGet, path, nil, &institutions); err != nil {
		return nil, err
	}
	return institutions, nil
}

func (c *Client) GetInstitution(ctx context.Context, institutionID string) (*Institution, error) {
	var inst Institution
	if err := c.do(ctx, "get institution", http.MethodGet, "/institutions/"+url.PathEscape(institutionID)+"/", nil, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}
