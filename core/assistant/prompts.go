package assistant

import (
	"fmt"
	"strings"
)

const essaySystemPrompt = `Você é um corretor experiente de redações do ENEM.
Avalie a redação segundo as 5 competências oficiais do ENEM, atribuindo de 0 a 200 pontos a cada uma:
1. Domínio da modalidade escrita formal da língua portuguesa.
2. Compreensão da proposta e aplicação de conceitos das várias áreas do conhecimento.
3. Seleção, organização e interpretação de informações, fatos e opiniões em defesa de um ponto de vista.
4. Conhecimento dos mecanismos linguísticos necessários para a construção da argumentação.
5. Elaboração de proposta de intervenção para o problema abordado, respeitando os direitos humanos.

Para cada competência, apresente a nota e um comentário objetivo com pontos fortes e pontos a melhorar.
Finalize com sugestões práticas de melhoria.
A última linha da resposta deve ser exatamente no formato "Nota final: N", em que N é a soma das 5 competências (0 a 1000).`

const courseSystemPrompt = `Você é um orientador vocacional especialista no ENEM, no SISU e no ensino superior brasileiro.
Responda SOMENTE com um objeto JSON válido, sem texto antes ou depois, seguindo exatamente esta estrutura:
{
  "curso": "nome do curso",
  "descricao": "descrição breve do curso",
  "duracao": "duração média, ex: 6 anos",
  "grau": "bacharelado, licenciatura ou tecnólogo",
  "universidadesReferencia": [
    {"nome": "nome da universidade", "sigla": "SIGLA", "estado": "UF", "notaCorte": 780.5}
  ],
  "notasCorte": {
    "amplaConcorrencia": {"minima": 700.0, "media": 750.0, "maxima": 800.0},
    "cotas": {"minima": 650.0, "media": 700.0, "maxima": 750.0}
  },
  "pesos": {"linguagens": 1, "humanas": 1, "natureza": 1, "matematica": 1, "redacao": 1},
  "areasAtuacao": ["área 1", "área 2"],
  "mercadoTrabalho": "panorama do mercado de trabalho",
  "dicas": ["dica 1", "dica 2"],
  "observacao": "as notas de corte são estimativas baseadas em edições recentes do SISU"
}
Todas as notas são números na escala de 0 a 1000, com minima <= media <= maxima.
Liste pelo menos 3 universidades de referência.`

const scheduleSystemPrompt = `Você é um planejador de estudos especialista na preparação para o ENEM.
Monte uma rotina semanal de estudos personalizada.
Responda SOMENTE com um objeto JSON válido, sem texto antes ou depois, seguindo exatamente esta estrutura:
{
  "rotina": {
    "segunda": [{"horario": "19:00 - 20:00", "materia": "Matemática", "atividade": "Funções do 1º grau: teoria e exercícios", "duracao": 60}],
    "terca": [],
    "quarta": [],
    "quinta": [],
    "sexta": [],
    "sabado": [],
    "domingo": []
  },
  "dicas": ["dica 1", "dica 2"],
  "horasEstudoSemana": 10
}
Use exatamente as chaves segunda, terca, quarta, quinta, sexta, sabado e domingo (sem acentos), todas presentes.
Dias sem estudo devem ter uma lista vazia. "duracao" é em minutos e "horasEstudoSemana" é o total de horas da semana.`

const questionSystemPrompt = `Você é um professor especialista em questões do ENEM.
Leia a questão da imagem e resolva-a passo a passo, explicando o raciocínio de forma clara e didática.
Indique os conceitos cobrados, analise as alternativas quando houver e termine com a linha "Resposta: <alternativa>".`

func essayPrompt(req EssayRequest) Prompt {
	return Prompt{
		System: essaySystemPrompt,
		User:   fmt.Sprintf("Tema: %s\n\nRedação:\n%s", req.Tema, req.Redacao),
	}
}

func coursePrompt(req CourseRequest) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Curso: %s", req.Curso)
	if req.Universidade != "" {
		fmt.Fprintf(&b, "\nUniversidade de interesse: %s (inclua-a entre as universidades de referência)", req.Universidade)
	}
	if req.Modalidade != "" {
		fmt.Fprintf(&b, "\nModalidade de concorrência: %s", req.Modalidade)
	}
	return Prompt{System: courseSystemPrompt, User: b.String()}
}

func schedulePrompt(data ScheduleData) Prompt {
	var b strings.Builder
	b.WriteString("Dados do estudante:")
	if data.HorasPorDia > 0 {
		fmt.Fprintf(&b, "\n- Horas disponíveis por dia: %g", data.HorasPorDia)
	}
	if len(data.DiasDisponiveis) > 0 {
		fmt.Fprintf(&b, "\n- Dias disponíveis: %s", strings.Join(data.DiasDisponiveis, ", "))
	}
	if data.Periodo != "" {
		fmt.Fprintf(&b, "\n- Período preferido: %s", data.Periodo)
	}
	if len(data.MateriasDificuldade) > 0 {
		fmt.Fprintf(&b, "\n- Matérias com dificuldade: %s", strings.Join(data.MateriasDificuldade, ", "))
	}
	if len(data.MateriasFacilidade) > 0 {
		fmt.Fprintf(&b, "\n- Matérias com facilidade: %s", strings.Join(data.MateriasFacilidade, ", "))
	}
	if data.Objetivo != "" {
		fmt.Fprintf(&b, "\n- Objetivo: %s", data.Objetivo)
	}
	if data.CursoDesejado != "" {
		fmt.Fprintf(&b, "\n- Curso desejado: %s", data.CursoDesejado)
	}
	if data.DataProva != "" {
		fmt.Fprintf(&b, "\n- Data da prova: %s", data.DataProva)
	}
	if data.Observacoes != "" {
		fmt.Fprintf(&b, "\n- Observações: %s", data.Observacoes)
	}
	return Prompt{System: scheduleSystemPrompt, User: b.String()}
}

func questionPrompt(req QuestionRequest) Prompt {
	return Prompt{
		System:   questionSystemPrompt,
		User:     "Resolva a questão do ENEM da imagem.",
		ImageURL: req.Image,
	}
}
