package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"campus_backend/internal/models"
)

// registerCustomRules регистрирует правила на основе перечислений из statuses.go
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", enumRule(func(s string) bool {
		switch models.UserRole(s) {
		case models.UserRoleAdmin, models.UserRoleModerator, models.UserRoleRecruiter, models.UserRoleBasic:
			return true
		}
		return false
	}))
	mustRegister("is-job-category", enumRule(func(s string) bool { return models.JobCategory(s).IsValid() }))
	mustRegister("is-job-type", enumRule(func(s string) bool { return models.JobType(s).IsValid() }))
	mustRegister("is-workplace-type", enumRule(func(s string) bool { return models.JobWorkplace(s).IsValid() }))
	mustRegister("is-like-target", enumRule(func(s string) bool { return models.LikeTargetType(s).IsValid() }))
}

// enumRule пропускает пустые значения: за них отвечает 'required'.
// Указатели разыменовываются самим validator.
func enumRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return valid(value)
	}
}
