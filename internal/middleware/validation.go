package middleware

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hospital-api/internal/model"
)

var registerOnce sync.Once

// RegisterValidators installs the domain tags on gin's validator and reports field names
// by their json tag. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		must(v.RegisterValidation("appointment_action", func(fl validator.FieldLevel) bool {
			_, err := model.ParseAppointmentAction(fl.Field().String())
			return err == nil
		}))
		must(v.RegisterValidation("prescription_action", func(fl validator.FieldLevel) bool {
			_, err := model.ParsePrescriptionAction(fl.Field().String())
			return err == nil
		}))
		must(v.RegisterValidation("role_kind", func(fl validator.FieldLevel) bool {
			_, err := model.ParseRoleKind(fl.Field().String())
			return err == nil
		}))
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
