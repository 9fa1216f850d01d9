// Package identity signs visitors in with the identity provider.
package identity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"privatechef/internal/models"
	"privatechef/internal/outcome"

	"github.com/rs/zerolog"
)

// Provider is a client for the identity toolkit REST API.
type Provider struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zerolog.Logger
	now        func() time.Time
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewProvider(endpoint, apiKey string, httpClient *http.Client, logger *zerolog.Logger) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Provider{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// SignInAnonymously creates a new anonymous account.
func (p *Provider) SignInAnonymously(ctx context.Context) (*models.SessionIdentity, error) {
	var resp signInResponse
	if err := p.call(ctx, "accounts:signUp", map[string]any{"returnSecureToken": true}, &resp); err != nil {
		return nil, err
	}
	uid := resp.LocalID
	if uid == "" {
		uid, _ = subjectFromIDToken(resp.IDToken)
	}
	if uid == "" {
		return nil, outcome.NewProtocol("identity provider returned no user id", nil)
	}
	return &models.SessionIdentity{UserID: uid, Anonymous: true, IssuedAt: p.now()}, nil
}

// SignInWithCustomToken exchanges a bootstrap token for an identity. The
// response carries no user id, so it is read from the returned ID token.
func (p *Provider) SignInWithCustomToken(ctx context.Context, token string) (*models.SessionIdentity, error) {
	var resp signInResponse
	body := map[string]any{"token": token, "returnSecureToken": true}
	if err := p.call(ctx, "accounts:signInWithCustomToken", body, &resp); err != nil {
		return nil, err
	}
	uid, err := subjectFromIDToken(resp.IDToken)
	if err != nil {
		return nil, outcome.NewProtocol("identity provider returned an unreadable token", err)
	}
	return &models.SessionIdentity{UserID: uid, IssuedAt: p.now()}, nil
}

func (p *Provider) call(ctx context.Context, method string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return outcome.NewProtocol("encode sign-in request", err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", p.endpoint, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return outcome.NewTransport("build sign-in request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error().Err(err).Str("method", method).Msg("identity provider unreachable")
		return outcome.NewTransport("could not reach the identity provider", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome.NewTransport("read sign-in response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "sign-in was rejected"
		var pe providerError
		if json.Unmarshal(raw, &pe) == nil && pe.Error.Message != "" {
			msg = pe.Error.Message
		}
		p.logger.Warn().Int("status", resp.StatusCode).Str("method", method).Str("provider_error", msg).Msg("sign-in rejected")
		return outcome.NewRejected(resp.StatusCode, msg)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return outcome.NewProtocol("decode sign-in response", err)
	}
	return nil
}

// subjectFromIDToken reads the user id claim of a JWT issued by the provider.
// The signature is not checked: the token came straight from the provider.
func subjectFromIDToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errors.New("malformed id token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode id token payload: %w", err)
	}
	var claims struct {
		UserID  string `json:"user_id"`
		Subject string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", fmt.Errorf("parse id token claims: %w", err)
	}
	if claims.UserID != "" {
		return claims.UserID, nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	return "", errors.New("id token has no subject")
}
