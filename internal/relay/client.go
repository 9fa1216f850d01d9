package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"privatechef/internal/models"
	"privatechef/internal/outcome"

	"github.com/rs/zerolog"
)

const genericRelayError = "Failed to send message. Please try again later."

// Client forwards contact messages to the form relay endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zerolog.Logger
}

type payload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	ReplyTo string `json:"_replyto"`
}

// errorBody is the relay's JSON error shape.
type errorBody struct {
	Error  string `json:"error"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClient builds a relay client for a fixed endpoint. A nil httpClient uses
// http.DefaultClient, i.e. no timeout beyond the transport's defaults.
func NewClient(endpoint string, httpClient *http.Client, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{endpoint: endpoint, httpClient: httpClient, logger: logger}
}

// Send posts the message. Any 2xx status is success.
func (c *Client) Send(ctx context.Context, msg models.ContactMessage) error {
	data, err := json.Marshal(payload{
		Name:    msg.Name,
		Email:   msg.Email,
		Message: msg.Message,
		ReplyTo: msg.Email,
	})
	if err != nil {
		return outcome.NewProtocol("encode contact message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return outcome.NewTransport("build relay request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("contact relay request failed")
		return outcome.NewTransport("could not reach the contact service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("contact message relayed")
		return nil
	}

	message := decodeError(resp.Body)
	c.logger.Warn().
		Int("status", resp.StatusCode).
		Str("relay_error", message).
		Msg("contact relay rejected message")
	return outcome.NewRejected(resp.StatusCode, message)
}

// decodeError derives a message from the relay's error body, falling back to
// a generic one when the body is not the expected JSON.
func decodeError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return genericRelayError
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return genericRelayError
	}

	if len(eb.Errors) > 0 {
		msgs := make([]string, 0, len(eb.Errors))
		for _, e := range eb.Errors {
			if m := strings.TrimSpace(e.Message); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, ", ")
		}
	}
	if strings.TrimSpace(eb.Error) != "" {
		return eb.Error
	}
	return genericRelayError
}
