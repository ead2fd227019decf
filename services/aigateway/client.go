// Package aigateway calls an OpenAI-compatible chat completions endpoint.
package aigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
)

const (
	defaultBaseURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultModel   = "google/gemini-2.5-flash"
	defaultTimeout = 60 * time.Second

	// provider bodies are logged, never returned; keep the log line short
	maxLoggedBody = 2048
)

// caller-facing messages
const (
	msgRateLimited   = "Limite de requisições excedido. Tente novamente em alguns instantes."
	msgQuotaExceeded = "Créditos de IA esgotados. Entre em contato com o suporte."
	msgUpstream      = "Erro ao processar a solicitação com a IA."
	msgTimeout       = "A IA demorou demais para responder. Tente novamente."
)

// Client sends chat completion requests on behalf of the assistant handlers.
type Client struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	logger core.Logger
}

var _ assistant.Gateway = (*Client)(nil)

// NewClient builds a client from conf.AI; blank values fall back to the defaults.
func NewClient(conf *core.Config, logger core.Logger) *Client {
	c := &Client{
		APIKey:  conf.AI.APIKey,
		BaseURL: conf.AI.BaseURL,
		Model:   conf.AI.Model,
		logger:  logger,
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	timeout := conf.AI.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c.HTTPClient = &http.Client{Timeout: timeout}
	return c
}

type (
	contentPart struct {
		Type     string    `json:"type"`
		Text     string    `json:"text,omitempty"`
		ImageURL *imageURL `json:"image_url,omitempty"`
	}

	imageURL struct {
		URL string `json:"url"`
	}

	message struct {
		Role    string      `json:"role"`
		Content interface{} `json:"content"` // string or []contentPart
	}

	completionRequest struct {
		Model    string    `json:"model"`
		Messages []message `json:"messages"`
	}

	completionResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
)

func buildRequest(model string, p assistant.Prompt) completionRequest {
	msgs := make([]message, 0, 2)
	if p.System != "" {
		msgs = append(msgs, message{Role: "system", Content: p.System})
	}
	if p.ImageURL == "" {
		msgs = append(msgs, message{Role: "user", Content: p.User})
	} else {
		msgs = append(msgs, message{Role: "user", Content: []contentPart{
			{Type: "text", Text: p.User},
			{Type: "image_url", ImageURL: &imageURL{URL: p.ImageURL}},
		}})
	}
	return completionRequest{Model: model, Messages: msgs}
}

// Complete sends the prompt and returns the first choice's text.
// Errors are *core.Error values: RateLimited (429), QuotaExceeded (402),
// Timeout on deadline, UpstreamError otherwise.
func (c *Client) Complete(ctx context.Context, p assistant.Prompt) (string, error) {
	if c.APIKey == "" {
		return "", core.NewError(core.KindUpstream, msgUpstream, errors.New("AI API key not configured"))
	}

	payload, err := json.Marshal(buildRequest(c.Model, p))
	if err != nil {
		return "", errors.Wrap(err, "marshaling completion request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "building completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", core.NewError(core.KindTimeout, msgTimeout, err)
		}
		return "", core.NewError(core.KindUpstream, msgUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", core.NewError(core.KindTimeout, msgTimeout, err)
		}
		return "", core.NewError(core.KindUpstream, msgUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error(fmt.Sprintf("AI gateway returned %d: %s", resp.StatusCode, truncate(body)))
		return "", statusError(resp.StatusCode)
	}

	var out completionResponse
	if err = json.Unmarshal(body, &out); err != nil {
		return "", core.NewError(core.KindUpstream, msgUpstream, errors.Wrap(err, "decoding completion response"))
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", core.NewError(core.KindUpstream, msgUpstream, errors.New("completion response has no content"))
	}
	return out.Choices[0].Message.Content, nil
}

func statusError(status int) *core.Error {
	err := errors.Errorf("AI gateway status %d", status)
	switch status {
	case http.StatusTooManyRequests:
		return core.NewError(core.KindRateLimited, msgRateLimited, err)
	case http.StatusPaymentRequired:
		return core.NewError(core.KindQuotaExceeded, msgQuotaExceeded, err)
	default:
		return core.NewError(core.KindUpstream, msgUpstream, err)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
