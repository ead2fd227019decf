package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/speech"
)

func TestTextToSpeech(t *testing.T) {
	e := setup(t)
	e.synth.audio = "SUQzBAAAAAAA"
	path := "/functions/v1/text-to-speech-enem"

	tests := []httpTest{
		{
			name:     "blank text",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{"text":"   "}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "text is required"}),
		},
		{
			name:     "only markdown",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{"text":"** ##"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "text is required"}),
		},
		{
			name:     "success",
			method:   http.MethodPost,
			path:     path,
			body:     []byte(`{"text":"## Questão 1\n**Resposta:** letra `+"`C`"+`"}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"audioContent":"SUQzBAAAAAAA"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, e.do(tt))
		})
	}

	require.Len(t, e.synth.texts, 1)
	assert.Equal(t, "Questão 1\nResposta: letra C", e.synth.texts[0])

	t.Run("long text is truncated", func(t *testing.T) {
		long := strings.Repeat("á", speech.MaxTextLength+100)
		rec := e.do(httpTest{method: http.MethodPost, path: path, body: marshallObj(t, map[string]string{"text": long})})
		require.Equal(t, http.StatusOK, rec.Code)
		last := e.synth.texts[len(e.synth.texts)-1]
		assert.Equal(t, speech.MaxTextLength, len([]rune(last)))
	})

	t.Run("provider error", func(t *testing.T) {
		e.synth.err = core.NewError(core.KindUpstream, "Erro ao gerar o áudio.")
		defer func() { e.synth.err = nil }()

		tt := httpTest{method: http.MethodPost, path: path, body: []byte(`{"text":"Olá"}`),
			wantCode: http.StatusInternalServerError, wantData: marshallObj(t, httpErr{Error: "Erro ao gerar o áudio."})}
		checkCodeAndData(t, tt, e.do(tt))
	})
}
