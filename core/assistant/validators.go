package assistant

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "{0} must be one of segunda, terca, quarta, quinta, sexta, sabado, domingo"

	scoreOrderTag  = "scoreorder"
	scoreOrderText = "{0} must satisfy minima <= media <= maxima"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	validate.RegisterStructValidation(scoreRangeStructValidation, ScoreRange{})
	core.RegisterCustomTranslation(validate, translator, scoreOrderTag, scoreOrderText)
}

func weekdayValidation(fl validator.FieldLevel) bool {
	day := fl.Field().String()
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// scoreRangeStructValidation checks the ordering of a ScoreRange.
func scoreRangeStructValidation(sl validator.StructLevel) {
	sr, ok := sl.Current().Interface().(ScoreRange)
	if !ok {
		return
	}
	if sr.Minima > sr.Media || sr.Media > sr.Maxima {
		sl.ReportError(sr.Media, "media", "Media", scoreOrderTag, "")
	}
}
