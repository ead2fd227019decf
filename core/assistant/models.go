package assistant

import (
	"github.com/go-playground/validator/v10"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

// Weekdays are the keys of a StudySchedule's Rotina, in week order.
var Weekdays = []string{"segunda", "terca", "quarta", "quinta", "sexta", "sabado", "domingo"}

// Essay grading

type EssayRequest struct {
	Tema    string `json:"tema" validate:"required,notblank"`
	Redacao string `json:"redacao" validate:"required,notblank"`
}

func (r *EssayRequest) Validate(validate *validator.Validate) error {
	r.Tema = core.CleanString(r.Tema)
	r.Redacao = core.CleanString(r.Redacao)
	return validate.Struct(r)
}

type EssayEvaluation struct {
	Nota     int    `json:"nota"`
	Feedback string `json:"feedback"`
}

// Course lookup

type CourseRequest struct {
	Curso        string `json:"curso" validate:"required,notblank"`
	Universidade string `json:"universidade"`
	Modalidade   string `json:"modalidade"`
}

func (r *CourseRequest) Validate(validate *validator.Validate) error {
	r.Curso = core.CleanString(r.Curso)
	r.Universidade = core.CleanString(r.Universidade)
	r.Modalidade = core.CleanString(r.Modalidade)
	return validate.Struct(r)
}

type CourseInfo struct {
	Curso                   string             `json:"curso" validate:"required,notblank"`
	Descricao               string             `json:"descricao"`
	Duracao                 string             `json:"duracao"`
	Grau                    string             `json:"grau,omitempty"`
	UniversidadesReferencia []University       `json:"universidadesReferencia" validate:"required,min=1,dive"`
	NotasCorte              CutoffScores       `json:"notasCorte"`
	Pesos                   map[string]float64 `json:"pesos,omitempty"`
	AreasAtuacao            []string           `json:"areasAtuacao,omitempty"`
	MercadoTrabalho         string             `json:"mercadoTrabalho,omitempty"`
	Dicas                   []string           `json:"dicas,omitempty"`
	Observacao              string             `json:"observacao,omitempty"`
}

type University struct {
	Nome      string   `json:"nome" validate:"required,notblank"`
	Sigla     string   `json:"sigla,omitempty"`
	Estado    string   `json:"estado,omitempty"`
	NotaCorte *float64 `json:"notaCorte,omitempty" validate:"omitempty,gte=0,lte=1000"`
}

type CutoffScores struct {
	AmplaConcorrencia ScoreRange  `json:"amplaConcorrencia"`
	Cotas             *ScoreRange `json:"cotas,omitempty"`
}

// ScoreRange holds cutoff scores on the 0-1000 ENEM scale; Minima <= Media <= Maxima.
type ScoreRange struct {
	Minima float64 `json:"minima" validate:"gte=0,lte=1000"`
	Media  float64 `json:"media" validate:"gte=0,lte=1000"`
	Maxima float64 `json:"maxima" validate:"gte=0,lte=1000"`
}

// Schedule generation

type ScheduleRequest struct {
	ScheduleData *ScheduleData `json:"scheduleData" validate:"required"`
}

func (r *ScheduleRequest) Validate(validate *validator.Validate) error {
	if r.ScheduleData != nil {
		r.ScheduleData.clean()
	}
	return validate.Struct(r)
}

type ScheduleData struct {
	HorasPorDia         float64  `json:"horasPorDia" validate:"omitempty,gt=0,lte=24"`
	DiasDisponiveis     []string `json:"diasDisponiveis" validate:"omitempty,dive,notblank"`
	Periodo             string   `json:"periodo"`
	MateriasDificuldade []string `json:"materiasDificuldade" validate:"omitempty,dive,notblank"`
	MateriasFacilidade  []string `json:"materiasFacilidade" validate:"omitempty,dive,notblank"`
	Objetivo            string   `json:"objetivo"`
	CursoDesejado       string   `json:"cursoDesejado"`
	DataProva           string   `json:"dataProva"`
	Observacoes         string   `json:"observacoes"`
}

func (d *ScheduleData) clean() {
	d.Periodo = core.CleanString(d.Periodo)
	d.Objetivo = core.CleanString(d.Objetivo)
	d.CursoDesejado = core.CleanString(d.CursoDesejado)
	d.DataProva = core.CleanString(d.DataProva)
	d.Observacoes = core.CleanString(d.Observacoes)
}

type StudySchedule struct {
	Rotina            map[string][]StudyBlock `json:"rotina" validate:"required,len=7,dive,keys,weekday,endkeys,dive"`
	Dicas             []string                `json:"dicas" validate:"required,min=1,dive,notblank"`
	HorasEstudoSemana float64                 `json:"horasEstudoSemana" validate:"gte=0,lte=168"`
}

type StudyBlock struct {
	Horario   string `json:"horario" validate:"required,notblank"`
	Materia   string `json:"materia" validate:"required,notblank"`
	Atividade string `json:"atividade"`
	Duracao   int    `json:"duracao" validate:"gte=0,lte=1440"` // minutes
}

// TotalMinutes sums the duration of every block of the week.
func (s StudySchedule) TotalMinutes() int {
	var total int
	for _, blocks := range s.Rotina {
		for _, b := range blocks {
			total += b.Duracao
		}
	}
	return total
}

// Question solving

type QuestionRequest struct {
	Image string `json:"image" validate:"required,dataurl_image"`
}

func (r *QuestionRequest) Validate(validate *validator.Validate) error {
	r.Image = core.CleanString(r.Image)
	return validate.Struct(r)
}

type Solution struct {
	Solution string `json:"solution"`
}
