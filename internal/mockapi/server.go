package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"primis/internal/domain"
)

// Config tunes a Server. Zero values get usable defaults.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.MinCost so tests stay fast.
	BcryptCost int
	Log        logrus.FieldLogger
}

// User is an account known to the fake backend.
type User struct {
	ID           int64
	Type         domain.UserType
	Name         string
	Email        string
	Phone        string
	Active       bool
	CreatedAt    time.Time
	passwordHash []byte
}

// Server is an in-memory stand-in for the Primis REST backend. It covers
// the endpoints the client library wraps, with enough behaviour to exercise
// authentication, role checks and 401 handling.
type Server struct {
	cfg Config
	log logrus.FieldLogger

	mu            sync.RWMutex
	nextID        int64
	users         map[string]*User // by email
	resetTokens   map[string]string
	revoked       map[string]struct{}
	generation    int
	courses       map[int64]*course
	enrollments   map[int64][]int64
	attendance    []attendanceRecord
	notifications map[int64][]*notification
	preferences   map[int64]json.RawMessage
	payments      []payment

	failProfile atomic.Bool
	logouts     atomic.Int64
}

func New(cfg Config) *Server {
	if cfg.Secret == "" {
		cfg.Secret = "primis-dev-secret"
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "primis-mockapi"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.MinCost
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		cfg:           cfg,
		log:           log.WithField("component", "mockapi"),
		nextID:        1,
		users:         make(map[string]*User),
		resetTokens:   make(map[string]string),
		revoked:       make(map[string]struct{}),
		courses:       make(map[int64]*course),
		enrollments:   make(map[int64][]int64),
		notifications: make(map[int64][]*notification),
		preferences:   make(map[int64]json.RawMessage),
	}
}

// SetFailProfile makes GET /auth/me answer 500 while on.
func (s *Server) SetFailProfile(on bool) { s.failProfile.Store(on) }

// RevokeAll invalidates every token issued so far.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// LogoutCalls reports how many times POST /auth/logout was hit.
func (s *Server) LogoutCalls() int { return int(s.logouts.Load()) }

// AddUser creates an active account.
func (s *Server) AddUser(userType domain.UserType, name, email, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(userType, name, email, hash), nil
}

func (s *Server) addUserLocked(userType domain.UserType, name, email string, hash []byte) User {
	u := &User{
		ID:           s.nextID,
		Type:         userType,
		Name:         name,
		Email:        strings.ToLower(email),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
		passwordHash: hash,
	}
	s.nextID++
	s.users[u.Email] = u
	s.notifications[u.ID] = append(s.notifications[u.ID], &notification{
		ID:        s.nextID,
		Title:     "Welcome to Primis",
		Message:   "Your account is ready.",
		Type:      "system",
		CreatedAt: u.CreatedAt,
	})
	s.nextID++
	if userType == domain.UserTypeStudent {
		s.payments = append(s.payments, payment{
			ID:          s.nextID,
			StudentID:   u.ID,
			Amount:      150000,
			Status:      "pending",
			Description: "Registration fee",
			CreatedAt:   u.CreatedAt,
		})
		s.nextID++
	}
	return *u
}

// Seed adds one account per role (password "pw123456") and a course.
func (s *Server) Seed() error {
	seed := []struct {
		t     domain.UserType
		name  string
		email string
	}{
		{domain.UserTypeStudent, "Sam Student", "student@example.com"},
		{domain.UserTypeTeacher, "Tara Teacher", "teacher@example.com"},
		{domain.UserTypeAdmin, "Ada Admin", "admin@example.com"},
		{domain.UserTypeParent, "Pat Parent", "parent@example.com"},
	}
	var teacherID int64
	for _, u := range seed {
		created, err := s.AddUser(u.t, u.name, u.email, "pw123456")
		if err != nil {
			return err
		}
		if u.t == domain.UserTypeTeacher {
			teacherID = created.ID
		}
	}
	s.mu.Lock()
	s.addCourseLocked(course{Title: "Mathematics I", Code: "MATH101", Description: "Numbers and algebra", Credits: 3, TeacherID: teacherID, Price: 200000})
	s.mu.Unlock()
	return nil
}

func (s *Server) userByID(userType domain.UserType, id int64) *User {
	for _, u := range s.users {
		if u.ID == id && u.Type == userType {
			return u
		}
	}
	return nil
}

// Router returns the HTTP handler, mounted under /api/v1.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.accessLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/register/student", s.handleRegisterStudent)
			r.With(s.authMiddleware, s.requireRole(domain.UserTypeAdmin)).Post("/register/{role}", s.handleRegisterRole)
			r.With(s.authMiddleware).Get("/me", s.handleMe)
			r.With(s.authMiddleware).Post("/logout", s.handleLogout)
			r.Post("/forgot-password", s.handleForgotPassword)
			r.Post("/reset-password", s.handleResetPassword)
			r.With(s.authMiddleware).Post("/change-password", s.handleChangePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/courses", func(r chi.Router) {
				r.Get("/", s.handleListCourses)
				r.With(s.requireRole(domain.UserTypeTeacher, domain.UserTypeAdmin)).Post("/", s.handleCreateCourse)
				r.Get("/my-courses", s.handleMyCourses)
				r.Get("/my-enrollments", s.handleMyEnrollments)
				r.Get("/{courseID}", s.handleGetCourse)
				r.With(s.requireRole(domain.UserTypeTeacher, domain.UserTypeAdmin)).Put("/{courseID}", s.handleUpdateCourse)
				r.With(s.requireRole(domain.UserTypeTeacher, domain.UserTypeAdmin)).Delete("/{courseID}", s.handleDeleteCourse)
				r.With(s.requireRole(domain.UserTypeStudent)).Post("/{courseID}/enroll", s.handleEnroll)
				r.Get("/{courseID}/enrollments", s.handleCourseEnrollments)
				r.Get("/{courseID}/materials", s.handleEmptyList)
				r.Get("/{courseID}/announcements", s.handleEmptyList)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(s.requireRole(domain.UserTypeTeacher, domain.UserTypeAdmin)).Post("/mark", s.handleMarkAttendance)
				r.With(s.requireRole(domain.UserTypeStudent)).Post("/scan-qr", s.handleScanQR)
				r.Get("/course/{courseID}", s.handleCourseAttendance)
				r.Get("/student/{studentID}", s.handleStudentAttendance)
				r.Get("/student/{studentID}/stats", s.handleAttendanceStats)
				r.Get("/student/{studentID}/monthly-report", s.handleMonthlyReport)
				r.With(s.requireRole(domain.UserTypeTeacher, domain.UserTypeAdmin)).Get("/generate-qr/{courseID}", s.handleGenerateQR)
			})

			r.Get("/payments", s.handleMyPayments)
			r.Get("/payments/student/{studentID}", s.handleStudentPayments)
			r.With(s.requireRole(domain.UserTypeAdmin)).Get("/payments/all", s.handleAllPayments)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Get("/count", s.handleNotificationCount)
				r.Put("/read-all", s.handleReadAll)
				r.Get("/preferences", s.handleGetPreferences)
				r.Put("/preferences", s.handlePutPreferences)
				r.Put("/{notificationID}/read", s.handleMarkRead)
				r.Delete("/{notificationID}", s.handleDeleteNotification)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireRole(domain.UserTypeAdmin))
				r.Get("/stats", s.handleAdminStats)
				r.Get("/users/recent", s.handleRecentUsers)
				r.Get("/payments/pending", s.handlePendingPayments)
				r.Get("/activity/recent", s.handleRecentActivity)
				r.Get("/analytics/{kind}", s.handleAnalytics)
				r.Put("/users/{userType}/{userID}/status", s.handleSetUserStatus)
				r.Delete("/users/{userType}/{userID}", s.handleDeleteUser)
			})
		})
	})
	return r
}

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := s.parseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid authentication credentials")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(roles ...domain.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			for _, role := range roles {
				if claims != nil && claims.UserType == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Not enough permissions")
		})
	}
}

func claimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

// currentUser resolves the token's subject. Callers hold at least s.mu.RLock.
func (s *Server) currentUser(r *http.Request) *User {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		return nil
	}
	return s.users[claims.Email]
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": r.Header.Get("X-Request-ID"),
		}).Debug("handled")
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError answers in the backend's {"detail": "..."} shape.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func limitQuery(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (s *Server) usersByNewest() []*User {
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
