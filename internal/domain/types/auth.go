package types

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthToken is what the backend answers to a successful login.
type AuthToken struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	UserType    UserType `json:"user_type"`
	UserID      int64    `json:"user_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
}

// FallbackProfile is the minimal profile derived from the login answer itself.
func (t AuthToken) FallbackProfile() Profile {
	return Profile{ID: t.UserID, Name: t.Name, Email: t.Email}
}

// CurrentUser is the body of GET /auth/me.
type CurrentUser struct {
	UserType UserType `json:"user_type"`
	User     *Profile `json:"user"`
}

// RegisterData is the student self-registration form.
type RegisterData struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Phone            string `json:"phone,omitempty"`
	ParentEmail      string `json:"parent_email,omitempty"`
	ParentPhone      string `json:"parent_phone,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	EmergencyPhone   string `json:"emergency_phone,omitempty"`
}

// ForgotPassword is the body of POST /auth/forgot-password.
type ForgotPassword struct {
	Email string `json:"email"`
}

// ResetPassword is the body of POST /auth/reset-password.
type ResetPassword struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword is the body of POST /auth/change-password.
type ChangePassword struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
