// Package genai calls the text-generation endpoint used by the menu idea
// generator and the reply drafter.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"privatechef/internal/outcome"

	"github.com/rs/zerolog"
)

const noContent = "no content received"

// Client posts single-turn prompts to a generateContent endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *zerolog.Logger
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient builds a client for endpoint (e.g. https://generativelanguage.googleapis.com/v1beta)
// and model. A nil httpClient uses http.DefaultClient.
func NewClient(endpoint, model, apiKey string, httpClient *http.Client, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) url() string {
	u := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}
	return u
}

// Generate sends prompt as the only user message and returns the first text
// part of the first candidate. The full response is awaited.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", outcome.NewProtocol("encode prompt", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(body))
	if err != nil {
		return "", outcome.NewTransport("build generation request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("generation request failed")
		return "", outcome.NewTransport("could not reach the assistant", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", outcome.NewTransport("read generation response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "the assistant is unavailable right now"
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Error.Message != "" {
			msg = ae.Error.Message
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("api_error", msg).Msg("generation rejected")
		return "", outcome.NewRejected(resp.StatusCode, msg)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.logger.Error().Err(err).Msg("decode generation response")
		return "", outcome.NewProtocol(noContent, err)
	}

	text, ok := firstText(gr)
	if !ok {
		c.logger.Error().Str("body", truncate(string(raw), 512)).Msg("generation response has no text")
		return "", outcome.NewProtocol(noContent, nil)
	}

	c.logger.Debug().Dur("duration", time.Since(start)).Int("chars", len(text)).Msg("generation completed")
	return text, nil
}

func firstText(gr generateResponse) (string, bool) {
	if len(gr.Candidates) == 0 {
		return "", false
	}
	parts := gr.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", false
	}
	return parts[0].Text, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
