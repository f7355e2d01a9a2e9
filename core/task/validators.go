package task

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/igortacu/summer-hackathon-sub000/core"
)

var (
	statusTag  = "taskstatus"
	statusText = "must be one of: todo, in-progress, done"

	priorityTag  = "taskpriority"
	priorityText = "must be one of: low, medium, high"
)

// InitValidators registers the task validations and their messages.
// core.InitValidators must have been called on validate first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, oneOfValidation(AllStatuses))
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(priorityTag, oneOfValidation(AllPriorities))
	core.RegisterCustomTranslation(validate, translator, priorityTag, priorityText)
}

func oneOfValidation(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, a := range allowed {
			if a == val {
				return true
			}
		}
		return false
	}
}
