package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"primis/internal/domain"
)

// MinPasswordLen matches the backend's password rule.
const MinPasswordLen = 6

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (f Login) Credentials() domain.Credentials {
	return domain.Credentials{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

type Register struct {
	Name             string `json:"name" validate:"required,min=2"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	ConfirmPassword  string `json:"confirm_password" validate:"eqfield=Password"`
	Phone            string `json:"phone" validate:"omitempty,min=6,max=20"`
	ParentEmail      string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone      string `json:"parent_phone" validate:"omitempty,min=6,max=20"`
	DateOfBirth      string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone" validate:"omitempty,min=6,max=20"`
}

func (f Register) Data() domain.RegisterData {
	return domain.RegisterData{
		Name:             strings.TrimSpace(f.Name),
		Email:            strings.TrimSpace(f.Email),
		Password:         f.Password,
		Phone:            f.Phone,
		ParentEmail:      f.ParentEmail,
		ParentPhone:      f.ParentPhone,
		DateOfBirth:      f.DateOfBirth,
		Address:          f.Address,
		EmergencyContact: f.EmergencyContact,
		EmergencyPhone:   f.EmergencyPhone,
	}
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPassword struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=NewPassword"`
}

func (f ResetPassword) Request() domain.ResetPassword {
	return domain.ResetPassword{Token: f.Token, NewPassword: f.NewPassword, ConfirmPassword: f.ConfirmPassword}
}

type ChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=NewPassword"`
}

func (f ChangePassword) Request() domain.ChangePassword {
	return domain.ChangePassword{
		CurrentPassword: f.CurrentPassword,
		NewPassword:     f.NewPassword,
		ConfirmPassword: f.ConfirmPassword,
	}
}

// ValidationError maps a field's JSON name to what is wrong with it.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks form and returns a ValidationError listing every field
// that failed.
func Validate(form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(ValidationError, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	case "nefield":
		return "must differ from the current password"
	case "datetime":
		return "must be a date like " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
