package errors

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
)

// FromValidator turns validator output into a validation AppError keyed by field name.
// Anything else is reported as a malformed request.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return BadRequest("malformed request body", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return NewValidation(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "eqfield":
		return "must match " + fe.Param()
	case "uuid":
		return "must be a valid id"
	case "datetime":
		return "must match the format " + fe.Param()
	case "appointment_action":
		return "must be one of Cancel, Reschedule, Accept, Complete"
	case "prescription_action":
		return "must be one of create, update, delete"
	case "role_kind":
		return "must be one of patient, doctor, staff"
	}
	return "is invalid"
}
