package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
)

const medicinaReply = "Aqui está:\n```json\n" + `{
  "curso": "Medicina",
  "descricao": "Forma médicos generalistas.",
  "duracao": "6 anos",
  "universidadesReferencia": [{"nome": "Universidade de São Paulo", "sigla": "USP", "estado": "SP"}],
  "notasCorte": {"amplaConcorrencia": {"minima": 780.5, "media": 805.2, "maxima": 840}},
  "dicas": ["Capriche na redação."]
}` + "\n```"

const scheduleReply = `{
  "rotina": {
    "segunda": [{"horario": "19:00", "materia": "Matemática", "atividade": "Funções", "duracao": 60}],
    "terca": [{"horario": "19:00", "materia": "Física", "duracao": 30}],
    "quarta": [],
    "quinta": [{"horario": "19:00", "materia": "Química", "duracao": 60}],
    "sexta": [],
    "sabado": [{"horario": "09:00", "materia": "Simulado", "duracao": 120}],
    "domingo": []
  },
  "dicas": ["Faça pausas a cada 50 minutos."]
}`

func TestEvaluateEssay(t *testing.T) {
	e := setup(t)
	path := "/functions/v1/avaliar-redacao"
	body := []byte(`{"tema":"Desafios da educação","redacao":"Texto da redação"}`)

	tests := []struct {
		httpTest
		reply string
	}{
		{
			httpTest: httpTest{name: "score extracted", wantCode: http.StatusOK,
				wantData: []byte(`{"nota":880,"feedback":"Competência 1: boa.\nNota final: 880"}`)},
			reply: "Competência 1: boa.\nNota final: 880",
		},
		{
			httpTest: httpTest{name: "score clamped", wantCode: http.StatusOK,
				wantData: []byte(`{"nota":1000,"feedback":"NOTA FINAL: **1200**"}`)},
			reply: "NOTA FINAL: **1200**",
		},
		{
			httpTest: httpTest{name: "no score", wantCode: http.StatusOK,
				wantData: []byte(`{"nota":0,"feedback":"Sem nota."}`)},
			reply: "Sem nota.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.gateway.respond(tt.reply, nil)
			tt.method, tt.path, tt.body = http.MethodPost, path, body
			checkCodeAndData(t, tt.httpTest, e.do(tt.httpTest))
		})
	}

	t.Run("missing redacao", func(t *testing.T) {
		calls := e.gateway.calls()
		tt := httpTest{method: http.MethodPost, path: path, body: []byte(`{"tema":"Educação","redacao":"   "}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "redacao is required"})}
		checkCodeAndData(t, tt, e.do(tt))
		assert.Equal(t, calls, e.gateway.calls())
	})
}

func TestAssistantUpstreamErrors(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "rate limited", err: core.NewError(core.KindRateLimited, "Limite de requisições excedido."), wantCode: http.StatusTooManyRequests},
		{name: "quota exceeded", err: core.NewError(core.KindQuotaExceeded, "Créditos esgotados."), wantCode: http.StatusPaymentRequired},
		{name: "upstream", err: core.NewError(core.KindUpstream, "Erro na IA."), wantCode: http.StatusInternalServerError},
		{name: "timeout", err: core.NewError(core.KindTimeout, "Demorou demais."), wantCode: http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.gateway.respond("", tt.err)
			rec := e.do(httpTest{
				method: http.MethodPost,
				path:   "/functions/v1/consultar-curso",
				body:   []byte(`{"curso":"Medicina"}`),
			})
			assert.Equal(t, tt.wantCode, rec.Code)

			var res httpErr
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.err.(*core.Error).Message, res.Error)
		})
	}
}

func TestLookupCourse(t *testing.T) {
	e := setup(t)
	path := "/functions/v1/consultar-curso"

	t.Run("medicina", func(t *testing.T) {
		e.gateway.respond(medicinaReply, nil)
		rec := e.do(httpTest{method: http.MethodPost, path: path, body: []byte(`{"curso":"Medicina","universidade":"USP"}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var info assistant.CourseInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, "Medicina", info.Curso)
		require.NotEmpty(t, info.UniversidadesReferencia)
		ac := info.NotasCorte.AmplaConcorrencia
		assert.True(t, ac.Minima <= ac.Media && ac.Media <= ac.Maxima)

		last := e.gateway.prompts[len(e.gateway.prompts)-1]
		assert.Contains(t, last.User, "Medicina")
		assert.Contains(t, last.User, "USP")
	})

	t.Run("malformed reply", func(t *testing.T) {
		reply := "Desculpe, não encontrei informações sobre esse curso."
		e.gateway.respond(reply, nil)
		rec := e.do(httpTest{method: http.MethodPost, path: path, body: []byte(`{"curso":"Astrologia"}`)})
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var res struct {
			Error       string `json:"error"`
			RawResponse string `json:"rawResponse"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Error)
		assert.Equal(t, reply, res.RawResponse)
	})

	t.Run("unordered cutoffs", func(t *testing.T) {
		reply := strings.Replace(medicinaReply, `"minima": 780.5`, `"minima": 900`, 1)
		e.gateway.respond(reply, nil)
		rec := e.do(httpTest{method: http.MethodPost, path: path, body: []byte(`{"curso":"Medicina"}`)})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "rawResponse")
	})

	t.Run("missing curso", func(t *testing.T) {
		tt := httpTest{method: http.MethodPost, path: path, body: []byte(`{"universidade":"USP"}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "curso is required"})}
		checkCodeAndData(t, tt, e.do(tt))
	})
}

func TestGenerateSchedule(t *testing.T) {
	e := setup(t)
	path := "/functions/v1/gerar-rotina"

	t.Run("success", func(t *testing.T) {
		e.gateway.respond(scheduleReply, nil)
		rec := e.do(httpTest{
			method: http.MethodPost,
			path:   path,
			body:   []byte(`{"scheduleData":{"horasPorDia":2,"diasDisponiveis":["segunda","terca"],"materiasDificuldade":["Matemática"]}}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var schedule assistant.StudySchedule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
		assert.Len(t, schedule.Rotina, 7)
		for _, day := range assistant.Weekdays {
			assert.Contains(t, schedule.Rotina, day)
		}
		assert.Equal(t, 4.5, schedule.HorasEstudoSemana)
	})

	t.Run("missing day", func(t *testing.T) {
		e.gateway.respond(strings.Replace(scheduleReply, `"domingo": []`, `"feriado": []`, 1), nil)
		rec := e.do(httpTest{method: http.MethodPost, path: path, body: []byte(`{"scheduleData":{}}`)})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "rawResponse")
	})

	t.Run("missing scheduleData", func(t *testing.T) {
		tt := httpTest{method: http.MethodPost, path: path, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "scheduleData is required"})}
		checkCodeAndData(t, tt, e.do(tt))
	})
}

func TestExportSchedule(t *testing.T) {
	e := setup(t)
	path := "/functions/v1/gerar-rotina/pdf"

	rec := e.do(httpTest{method: http.MethodPost, path: path, body: []byte(scheduleReply)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = e.do(httpTest{method: http.MethodPost, path: path, body: []byte(`{"rotina":{},"dicas":[]}`)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolveQuestion(t *testing.T) {
	e := setup(t)
	path := "/functions/v1/resolver-questao"

	t.Run("success", func(t *testing.T) {
		e.gateway.respond("  A alternativa correta é a C.  ", nil)
		tt := httpTest{method: http.MethodPost, path: path, body: []byte(`{"image":"data:image/png;base64,iVBORw0KGgo="}`),
			wantCode: http.StatusOK, wantData: []byte(`{"solution":"A alternativa correta é a C."}`)}
		checkCodeAndData(t, tt, e.do(tt))

		last := e.gateway.prompts[len(e.gateway.prompts)-1]
		assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", last.ImageURL)
	})

	t.Run("not an image", func(t *testing.T) {
		calls := e.gateway.calls()
		tt := httpTest{method: http.MethodPost, path: path, body: []byte(`{"image":"https://example.com/q.png"}`),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "image must be an image data URL"})}
		checkCodeAndData(t, tt, e.do(tt))
		assert.Equal(t, calls, e.gateway.calls())
	})
}
