// Package casdoor implements the small slice of the Casdoor HTTP API the
// backend needs: OAuth code exchange and account lookup.
package casdoor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

// Account is the Casdoor user record, trimmed to the fields we store.
type Account struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	WeChat      string `json:"wechat"`
}

type Client interface {
	// ExchangeCode trades an OAuth authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)
	// GetAccount fetches the account behind an access token.
	GetAccount(ctx context.Context, accessToken string) (Account, error)
}

type client struct {
	log        *logger.Logger
	cfg        config.Casdoor
	httpClient *http.Client
}

func NewClient(log *logger.Logger, cfg config.Casdoor) Client {
	return &client{
		log:        log.With("component", "casdoor"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *client) ExchangeCode(ctx context.Context, code string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"code":          code,
		"redirect_uri":  c.cfg.RedirectURI,
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/api/login/oauth/access_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("casdoor token exchange: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("casdoor token exchange http %d: %s", resp.StatusCode, string(raw))
	}
	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("casdoor token decode: %w", err)
	}
	if tok.Error != "" {
		return "", fmt.Errorf("casdoor token exchange rejected: %s %s", tok.Error, tok.ErrorDescription)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("casdoor token exchange returned empty access_token")
	}
	return tok.AccessToken, nil
}

type accountResponse struct {
	Status string  `json:"status"`
	Msg    string  `json:"msg"`
	Data   Account `json:"data"`
}

func (c *client) GetAccount(ctx context.Context, accessToken string) (Account, error) {
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/api/get-account"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Account{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Account{}, fmt.Errorf("casdoor get-account: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Account{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Account{}, fmt.Errorf("casdoor get-account http %d: %s", resp.StatusCode, string(raw))
	}
	var out accountResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Account{}, fmt.Errorf("casdoor account decode: %w", err)
	}
	if out.Status == "error" {
		return Account{}, fmt.Errorf("casdoor get-account rejected: %s", out.Msg)
	}
	if out.Data.Name == "" {
		return Account{}, fmt.Errorf("casdoor account has no name")
	}
	return out.Data, nil
}
