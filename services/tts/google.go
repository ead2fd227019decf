// Package tts synthesizes speech through the Google Cloud Text-to-Speech REST API.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/speech"
)

const (
	defaultBaseURL      = "https://texttospeech.googleapis.com/v1/text:synthesize"
	defaultLanguageCode = "pt-BR"
	defaultVoice        = "pt-BR-Neural2-A"
	defaultTimeout      = 30 * time.Second
)

const (
	msgUpstream = "Erro ao gerar o áudio."
	msgTimeout  = "O serviço de voz demorou demais para responder."
)

type GoogleClient struct {
	APIKey       string
	BaseURL      string
	LanguageCode string
	Voice        string
	HTTPClient   *http.Client

	logger core.Logger
}

var _ speech.Synthesizer = (*GoogleClient)(nil)

func NewGoogleClient(conf *core.Config, logger core.Logger) *GoogleClient {
	c := &GoogleClient{
		APIKey:       conf.TTS.APIKey,
		BaseURL:      conf.TTS.BaseURL,
		LanguageCode: conf.TTS.LanguageCode,
		Voice:        conf.TTS.Voice,
		logger:       logger,
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.LanguageCode == "" {
		c.LanguageCode = defaultLanguageCode
	}
	if c.Voice == "" {
		c.Voice = defaultVoice
	}
	timeout := conf.TTS.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c.HTTPClient = &http.Client{Timeout: timeout}
	return c
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

// Synthesize returns the MP3 audio for text, base64 encoded as the API sends it.
func (c *GoogleClient) Synthesize(ctx context.Context, text string) (string, error) {
	if c.APIKey == "" {
		return "", core.NewError(core.KindUpstream, msgUpstream, errors.New("TTS API key not configured"))
	}

	var payload synthesizeRequest
	payload.Input.Text = text
	payload.Voice.LanguageCode = c.LanguageCode
	payload.Voice.Name = c.Voice
	payload.AudioConfig.AudioEncoding = "MP3"

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshaling synthesize request")
	}

	endpoint, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing TTS base url")
	}
	q := endpoint.Query()
	q.Set("key", c.APIKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building synthesize request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", core.NewError(core.KindTimeout, msgTimeout, err)
		}
		return "", core.NewError(core.KindUpstream, msgUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.NewError(core.KindUpstream, msgUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error(fmt.Sprintf("TTS API returned %d: %s", resp.StatusCode, respBody))
		return "", core.NewError(core.KindUpstream, msgUpstream, errors.Errorf("TTS API status %d", resp.StatusCode))
	}

	var out speech.Audio
	if err = json.Unmarshal(respBody, &out); err != nil {
		return "", core.NewError(core.KindUpstream, msgUpstream, errors.Wrap(err, "decoding synthesize response"))
	}
	if out.AudioContent == "" {
		return "", core.NewError(core.KindUpstream, msgUpstream, errors.New("synthesize response has no audio"))
	}
	return out.AudioContent, nil
}
