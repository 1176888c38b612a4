package mockapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"primis/internal/domain"
)

type payment struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) paymentsFor(studentID int64) []payment {
	out := []payment{}
	for _, p := range s.payments {
		if studentID == 0 || p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleMyPayments(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	me := s.currentUser(r)
	if me.Type != domain.UserTypeStudent {
		writeJSON(w, http.StatusOK, []payment{})
		return
	}
	writeJSON(w, http.StatusOK, s.paymentsFor(me.ID))
}

func (s *Server) handleStudentPayments(w http.ResponseWriter, r *http.Request) {
	sid, ok := idParam(r, "studentID")
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	if !canSeeStudent(s.currentUser(r), sid) {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	writeJSON(w, http.StatusOK, s.paymentsFor(sid))
}

func (s *Server) handleAllPayments(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.paymentsFor(0))
}

func (s *Server) handleAdminStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[domain.UserType]int{}
	for _, u := range s.users {
		counts[u.Type]++
	}
	pending := 0
	for _, p := range s.payments {
		if p.Status == "pending" {
			pending++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"total_students":   counts[domain.UserTypeStudent],
		"total_teachers":   counts[domain.UserTypeTeacher],
		"total_admins":     counts[domain.UserTypeAdmin],
		"total_parents":    counts[domain.UserTypeParent],
		"total_courses":    len(s.courses),
		"pending_payments": pending,
	})
}

func (s *Server) handleRecentUsers(w http.ResponseWriter, r *http.Request) {
	limit := limitQuery(r, 10)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []map[string]any{}
	for _, u := range s.usersByNewest() {
		if len(out) == limit {
			break
		}
		out = append(out, map[string]any{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"user_type":  u.Type,
			"is_active":  u.Active,
			"created_at": u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePendingPayments(w http.ResponseWriter, r *http.Request) {
	limit := limitQuery(r, 10)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []payment{}
	for _, p := range s.payments {
		if len(out) == limit {
			break
		}
		if p.Status == "pending" {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := limitQuery(r, 10)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []map[string]any{}
	for _, u := range s.usersByNewest() {
		if len(out) == limit {
			break
		}
		out = append(out, map[string]any{
			"type":        "registration",
			"description": u.Name + " registered as " + u.Type.DisplayName(),
			"timestamp":   u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch chi.URLParam(r, "kind") {
	case "revenue":
		var total, pending float64
		for _, p := range s.payments {
			if p.Status == "pending" {
				pending += p.Amount
			} else {
				total += p.Amount
			}
		}
		writeJSON(w, http.StatusOK, map[string]float64{"total_revenue": total, "pending_revenue": pending})
	case "enrollment":
		per := map[string]int{}
		for id, students := range s.enrollments {
			if c, ok := s.courses[id]; ok {
				per[c.Code] = len(students)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"enrollments_by_course": per})
	case "attendance":
		writeJSON(w, http.StatusOK, summarize(s.attendance))
	default:
		writeError(w, http.StatusNotFound, "Not Found")
	}
}

func (s *Server) adminTarget(w http.ResponseWriter, r *http.Request) *User {
	id, ok := idParam(r, "userID")
	u := s.userByID(domain.UserType(chi.URLParam(r, "userType")), id)
	if !ok || u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return nil
	}
	return u
}

func (s *Server) handleSetUserStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IsActive bool `json:"is_active"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.adminTarget(w, r)
	if u == nil {
		return
	}
	u.Active = in.IsActive
	writeJSON(w, http.StatusOK, map[string]any{"message": "User status updated", "is_active": u.Active})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.adminTarget(w, r)
	if u == nil {
		return
	}
	if me := s.currentUser(r); me != nil && me.ID == u.ID {
		writeError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}
	delete(s.users, u.Email)
	delete(s.notifications, u.ID)
	writeMessage(w, "User deleted successfully")
}
