package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var registerOnce sync.Once

// RegisterValidators wires the custom rules into gin's validator engine and
// makes field errors report json names instead of Go field names. Safe to
// call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)

		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")

			if name == "" || name == "-" {
				return fld.Name
			}

			return name
		})

		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

// BindJSON binds the request body and, on failure, writes the 400 response
// itself. Callers just bail out when it returns false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil {
		return true
	}

	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		fields := make(map[string]string, len(validatorErrs))
		anyRequired := false

		for _, fe := range validatorErrs {
			field := fe.Field()

			if _, seen := fields[field]; !seen {
				fields[field] = fieldMessage(field, fe.Tag(), fe.Param())
			}

			if fe.Tag() == "required" {
				anyRequired = true
			}
		}

		message := firstMessage(validatorErrs, fields)

		if anyRequired {
			message = "Faltan datos requeridos"
		}

		RespondValidation(ctx, message, fields)

		return false
	}

	RespondBadRequest(ctx, "Cuerpo de la petición no válido")

	return false
}

func firstMessage(errs validator.ValidationErrors, fields map[string]string) string {
	if len(errs) == 0 {
		return "Datos no válidos"
	}

	return fields[errs[0].Field()]
}

func fieldMessage(field, rule, param string) string {
	switch field {
	case "username":
		switch rule {
		case "required":
			return "El username es requerido"
		case "min", "max":
			return "El username debe tener entre 3 y 30 caracteres"
		case "username":
			return "El username solo puede contener letras, números y guiones bajos"
		}
	case "firstName":
		switch rule {
		case "required":
			return "El nombre es requerido"
		case "max":
			return "El nombre no puede tener más de 50 caracteres"
		}
	case "lastName":
		switch rule {
		case "required":
			return "Los apellidos son requeridos"
		case "max":
			return "Los apellidos no pueden tener más de 80 caracteres"
		}
	case "email":
		switch rule {
		case "required":
			return "El email es requerido"
		case "email":
			return "El email no es válido"
		}
	case "password":
		switch rule {
		case "required":
			return "La contraseña es requerida"
		case "min":
			return "La contraseña debe tener al menos 6 caracteres"
		}
	case "age":
		return "La edad debe ser un número válido"
	}

	if param != "" {
		return fmt.Sprintf("El campo %s no cumple la regla %s (%s)", field, rule, param)
	}

	return fmt.Sprintf("El campo %s no es válido", field)
}
