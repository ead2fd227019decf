package speech

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

type synthFunc func(ctx context.Context, text string) (string, error)

func (f synthFunc) Synthesize(ctx context.Context, text string) (string, error) { return f(ctx, text) }

func TestPrepareText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "## Título\n**negrito** e *itálico*", want: "Título\nnegrito e itálico"},
		{in: "__sublinhado__ `código`", want: "sublinhado código"},
		{in: "  texto simples  ", want: "texto simples"},
		{in: "** ## `", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrepareText(tt.in), tt.in)
	}

	long := strings.Repeat("ç", MaxTextLength+1)
	assert.Equal(t, MaxTextLength, len([]rune(PrepareText(long))))
}

func TestService_Speak(t *testing.T) {
	var got string
	svc := NewService(synthFunc(func(_ context.Context, text string) (string, error) {
		got = text
		return "QUJD", nil
	}))

	audio, err := svc.Speak(context.Background(), Request{Text: "**Olá**"})
	require.NoError(t, err)
	assert.Equal(t, Audio{AudioContent: "QUJD"}, audio)
	assert.Equal(t, "Olá", got)

	_, err = svc.Speak(context.Background(), Request{Text: "**"})
	assert.Equal(t, core.KindBadRequest, core.KindOf(err))

	failing := NewService(synthFunc(func(context.Context, string) (string, error) {
		return "", core.NewError(core.KindTimeout, "O serviço de voz demorou demais.")
	}))
	_, err = failing.Speak(context.Background(), Request{Text: "Olá"})
	assert.Equal(t, core.KindTimeout, core.KindOf(err))
	assert.False(t, errors.Is(err, context.Canceled))
}
