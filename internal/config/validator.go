package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// Instance names follow the Windows rules: letters, digits, underscore and
	// dollar, not starting with a digit, at most 16 characters.
	instanceNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]{0,15}$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("instance_name", func(fl validator.FieldLevel) bool {
			return instanceNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateRequest performs schema and cross-field validation on the
// installation request. It runs before any credential prompt or volume check,
// so a malformed request never reaches a step with side effects.
func ValidateRequest(r *Request) error {
	if r == nil {
		return zetuperrors.NewValidationError("request", "installation request is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(r); err != nil {
		return convertValidationError(err)
	}

	if r.LicensedEdition() && strings.TrimSpace(r.ProductKey) == "" {
		return zetuperrors.NewValidationError("product_key",
			fmt.Sprintf("product key is required for edition %s", r.Edition), nil)
	}

	if r.InstallSSMS && strings.TrimSpace(r.SSMSInstaller) == "" {
		return zetuperrors.NewValidationError("ssms_installer",
			"installer path is required when --install-ssms is set", nil)
	}

	if r.AllocUnitPolicy == "" {
		r.AllocUnitPolicy = AllocUnitFail
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return zetuperrors.NewValidationError(field, msg, err)
	}

	return zetuperrors.NewValidationError("request", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
