package forms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primis/internal/forms"
)

func TestValidate_Login(t *testing.T) {
	require.NoError(t, forms.Validate(forms.Login{Email: "student@example.com", Password: "pw123456"}))

	err := forms.Validate(forms.Login{Email: "not-an-email"})
	var ve forms.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be a valid email address", ve["email"])
	assert.Equal(t, "is required", ve["password"])
}

func TestValidate_Register(t *testing.T) {
	tests := []struct {
		name  string
		form  forms.Register
		field string
	}{
		{"short password", forms.Register{Name: "Sam", Email: "s@example.com", Password: "123", ConfirmPassword: "123"}, "password"},
		{"mismatch", forms.Register{Name: "Sam", Email: "s@example.com", Password: "pw123456", ConfirmPassword: "pw1234567"}, "confirm_password"},
		{"bad birth date", forms.Register{Name: "Sam", Email: "s@example.com", Password: "pw123456", ConfirmPassword: "pw123456", DateOfBirth: "01/02/2010"}, "date_of_birth"},
		{"bad parent email", forms.Register{Name: "Sam", Email: "s@example.com", Password: "pw123456", ConfirmPassword: "pw123456", ParentEmail: "mum"}, "parent_email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve forms.ValidationError
			require.ErrorAs(t, forms.Validate(tt.form), &ve)
			assert.Contains(t, ve, tt.field)
			assert.Len(t, ve, 1)
		})
	}

	ok := forms.Register{Name: " Sam ", Email: "s@example.com", Password: "pw123456", ConfirmPassword: "pw123456", DateOfBirth: "2010-02-01"}
	require.NoError(t, forms.Validate(ok))
	assert.Equal(t, "Sam", ok.Data().Name)
}

func TestValidate_ChangePassword(t *testing.T) {
	var ve forms.ValidationError
	err := forms.Validate(forms.ChangePassword{CurrentPassword: "pw123456", NewPassword: "pw123456", ConfirmPassword: "pw123456"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must differ from the current password", ve["new_password"])
	assert.Contains(t, err.Error(), "new_password:")
}
