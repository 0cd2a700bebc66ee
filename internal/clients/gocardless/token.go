package gocardless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// secretTokenSource exchanges the secret id/key pair for an access token. It is always
// wrapped in oauth2.ReuseTokenSource, so it only runs when no valid token is cached.
type secretTokenSource struct {
	ctx        context.Context
	url        string
	secretID   string
	secretKey  string
	httpClient *http.Client
	now        func() time.Time
}

type tokenResponse struct {
	Access         string `json:"access"`
	AccessExpires  int64  `json:"access_expires"`
	Refresh        string `json:"refresh"`
	RefreshExpires int64  `json:"refresh_expires"`
}

func (s *secretTokenSource) Token() (*oauth2.Token, error) {
	payload, err := json.Marshal(map[string]string{
		"secret_id":  s.secretID,
		"secret_key": s.secretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gocardless: failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gocardless: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gocardless: token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError("token exchange", resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("gocardless: failed to decode token response: %w", err)
	}
	if tr.Access == "" {
		return nil, fmt.Errorf("gocardless: empty access token in token response")
	}

	token := &oauth2.Token{
		AccessToken:  tr.Access,
		TokenType:    "Bearer",
		RefreshToken: tr.Refresh,
	}
	if tr.AccessExpires > 0 {
		token.Expiry = s.now().Add(time.Duration(tr.AccessExpires) * time.Second)
	}
	return token, nil
}
