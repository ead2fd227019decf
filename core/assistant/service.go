package assistant

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

const malformedOutputMsg = "A resposta da IA não pôde ser interpretada. Tente novamente."

type (
	// Prompt is one model call: a system instruction, the user instruction
	// and an optional image (data URL or https URL).
	Prompt struct {
		System   string
		User     string
		ImageURL string
	}

	// Gateway sends a prompt to the AI model and returns the reply text.
	// Failures are *core.Error values classified by upstream status.
	Gateway interface {
		Complete(ctx context.Context, p Prompt) (string, error)
	}

	Service struct {
		gateway  Gateway
		validate *validator.Validate
	}
)

func NewService(gateway Gateway, validate *validator.Validate) *Service {
	return &Service{gateway: gateway, validate: validate}
}

func (svc *Service) EvaluateEssay(ctx context.Context, req EssayRequest) (EssayEvaluation, error) {
	text, err := svc.gateway.Complete(ctx, essayPrompt(req))
	if err != nil {
		return EssayEvaluation{}, errors.Wrap(err, "evaluating essay")
	}
	return EssayEvaluation{
		Nota:     ExtractScore(text),
		Feedback: strings.TrimSpace(text),
	}, nil
}

func (svc *Service) LookupCourse(ctx context.Context, req CourseRequest) (CourseInfo, error) {
	text, err := svc.gateway.Complete(ctx, coursePrompt(req))
	if err != nil {
		return CourseInfo{}, errors.Wrap(err, "looking up course")
	}

	var info CourseInfo
	if err = DecodeObject(text, &info, svc.validate); err != nil {
		return CourseInfo{}, malformed(err)
	}
	return info, nil
}

func (svc *Service) GenerateSchedule(ctx context.Context, req ScheduleRequest) (StudySchedule, error) {
	text, err := svc.gateway.Complete(ctx, schedulePrompt(*req.ScheduleData))
	if err != nil {
		return StudySchedule{}, errors.Wrap(err, "generating schedule")
	}

	var schedule StudySchedule
	if err = DecodeObject(text, &schedule, svc.validate); err != nil {
		return StudySchedule{}, malformed(err)
	}
	if schedule.HorasEstudoSemana == 0 {
		schedule.HorasEstudoSemana = math.Round(float64(schedule.TotalMinutes())/60*10) / 10
	}
	return schedule, nil
}

func (svc *Service) SolveQuestion(ctx context.Context, req QuestionRequest) (Solution, error) {
	text, err := svc.gateway.Complete(ctx, questionPrompt(req))
	if err != nil {
		return Solution{}, errors.Wrap(err, "solving question")
	}
	return Solution{Solution: strings.TrimSpace(text)}, nil
}

func malformed(err error) error {
	return core.NewError(core.KindMalformedModelOutput, malformedOutputMsg, err)
}
