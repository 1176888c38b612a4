package mockapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"primis/internal/domain"
)

const minPasswordLen = 6

type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeValidation(w http.ResponseWriter, issues []validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

func profileJSON(u *User) map[string]any {
	out := map[string]any{
		u.Type.String() + "_id": u.ID,
		"name":                  u.Name,
		"email":                 u.Email,
		"is_active":             u.Active,
		"created_at":            u.CreatedAt,
	}
	if u.Phone != "" {
		out["phone"] = u.Phone
	}
	if u.Type == domain.UserTypeStudent {
		out["qr_code"] = "STU-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(u.Email)).String()[:8]
	}
	return out
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in domain.Credentials
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.RLock()
	u, ok := s.users[strings.ToLower(in.Email)]
	gen := s.generation
	s.mu.RUnlock()
	if !ok || !u.Active || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := s.newAccessToken(u, gen)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthToken{
		AccessToken: token,
		TokenType:   "bearer",
		UserType:    u.Type,
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, role domain.UserType) {
	var in domain.RegisterData
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var issues []validationIssue
	if strings.TrimSpace(in.Name) == "" {
		issues = append(issues, validationIssue{Loc: []string{"body", "name"}, Msg: "field required", Type: "value_error.missing"})
	}
	if !strings.Contains(in.Email, "@") {
		issues = append(issues, validationIssue{Loc: []string{"body", "email"}, Msg: "value is not a valid email address", Type: "value_error.email"})
	}
	if len(in.Password) < minPasswordLen {
		issues = append(issues, validationIssue{Loc: []string{"body", "password"}, Msg: "ensure this value has at least 6 characters", Type: "value_error.any_str.min_length"})
	}
	if len(issues) > 0 {
		writeValidation(w, issues)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	if _, taken := s.users[strings.ToLower(in.Email)]; taken {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := s.addUserLocked(role, in.Name, in.Email, hash)
	u.Phone = in.Phone
	s.users[u.Email].Phone = in.Phone
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, profileJSON(&u))
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	s.register(w, r, domain.UserTypeStudent)
}

func (s *Server) handleRegisterRole(w http.ResponseWriter, r *http.Request) {
	role := domain.UserType(chi.URLParam(r, "role"))
	switch role {
	case domain.UserTypeTeacher, domain.UserTypeAdmin, domain.UserTypeParent:
		s.register(w, r, role)
	default:
		writeError(w, http.StatusNotFound, "Not Found")
	}
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if s.failProfile.Load() {
		writeError(w, http.StatusInternalServerError, "profile service unavailable")
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.currentUser(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Invalid authentication credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_type": u.Type,
		"user":      profileJSON(u),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.logouts.Add(1)
	if claims := claimsFromContext(r.Context()); claims != nil {
		s.mu.Lock()
		s.revoked[claims.ID] = struct{}{}
		s.mu.Unlock()
	}
	writeMessage(w, "Successfully logged out")
}

// ResetToken returns the pending password-reset token for email, as the
// real backend would have mailed it.
func (s *Server) ResetToken(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for tok, e := range s.resetTokens {
		if e == strings.ToLower(email) {
			return tok, true
		}
	}
	return "", false
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in domain.ForgotPassword
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	email := strings.ToLower(in.Email)
	s.mu.Lock()
	if _, ok := s.users[email]; ok {
		s.resetTokens[uuid.NewString()] = email
	}
	s.mu.Unlock()
	writeMessage(w, "If the email exists, a password reset link has been sent")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in domain.ResetPassword
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if len(in.NewPassword) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resetTokens[in.Token]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	delete(s.resetTokens, in.Token)
	s.users[email].passwordHash = hash
	writeMessage(w, "Password has been reset successfully")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in domain.ChangePassword
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if len(in.NewPassword) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Invalid authentication credentials")
		return
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.CurrentPassword)) != nil {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}
	u.passwordHash = hash
	writeMessage(w, "Password changed successfully")
}
