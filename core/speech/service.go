package speech

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

// MaxTextLength is the longest text, in characters, sent to the provider.
const MaxTextLength = 5000

var markdownReplacer = strings.NewReplacer("**", "", "__", "", "##", "", "#", "", "`", "", "*", "")

// Synthesizer turns text into base64 encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

type Request struct {
	Text string `json:"text" validate:"required,notblank"`
}

func (r *Request) Validate(validate *validator.Validate) error {
	r.Text = core.CleanString(r.Text)
	return validate.Struct(r)
}

type Audio struct {
	AudioContent string `json:"audioContent"`
}

type Service struct {
	synth Synthesizer
}

func NewService(synth Synthesizer) *Service {
	return &Service{synth: synth}
}

// Speak synthesizes the text once stripped of markdown markers and truncated to MaxTextLength.
func (svc *Service) Speak(ctx context.Context, req Request) (Audio, error) {
	text := PrepareText(req.Text)
	if text == "" {
		return Audio{}, core.NewError(core.KindBadRequest, "text is required")
	}
	audio, err := svc.synth.Synthesize(ctx, text)
	if err != nil {
		return Audio{}, errors.Wrap(err, "synthesizing speech")
	}
	return Audio{AudioContent: audio}, nil
}

func PrepareText(text string) string {
	text = strings.TrimSpace(markdownReplacer.Replace(text))
	if r := []rune(text); len(r) > MaxTextLength {
		text = string(r[:MaxTextLength])
	}
	return text
}
