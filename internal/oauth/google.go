// Package oauth implements the Google authorization-code exchange
// used by social sign-in.  The token and userinfo endpoints are
// called directly; only a verified email (plus name) is extracted.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// UserInfo is what social sign-in needs from the provider: a verified
// email and an optional display name.
type UserInfo struct {
	Email string
	Name  string
}

// Provider abstracts the redirect-based code exchange so handlers can
// be tested against a stub.
type Provider interface {
	// LoginURL builds the consent-page URL for the given state value.
	LoginURL(state string) string
	// Exchange trades an authorization code for the caller's user info.
	Exchange(ctx context.Context, code string) (*UserInfo, error)
}

// GoogleConfig configures the Google provider.  The URL fields exist
// so tests can point the provider at a local server.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// Google implements Provider against Google's OAuth 2.0 endpoints.
type Google struct {
	cfg GoogleConfig
}

func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}
	return &Google{cfg: cfg}
}

// LoginURL builds the consent URL with the email scope.
func (g *Google) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {g.cfg.ClientID},
		"redirect_uri":  {g.cfg.RedirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return g.cfg.AuthURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userInfoResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchange trades the authorization code for an access token and
// fetches the caller's profile with it.
func (g *Google) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	tok, err := g.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange token: %w", err)
	}
	info, err := g.fetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("provider returned no email address")
	}
	return &UserInfo{Email: info.Email, Name: info.Name}, nil
}

func (g *Google) exchangeToken(ctx context.Context, code string) (*tokenResponse, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {g.cfg.ClientID},
		"client_secret": {g.cfg.ClientSecret},
		"redirect_uri":  {g.cfg.RedirectURL},
		"grant_type":    {"authorization_code"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}
	return &tok, nil
}

func (g *Google) fetchUserInfo(ctx context.Context, accessToken string) (*userInfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var info userInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

var _ Provider = (*Google)(nil)
