package mockapi

import (
	"net/http"
	"sort"
	"strings"

	"primis/internal/domain"
)

type course struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Code        string  `json:"code"`
	Description string  `json:"description,omitempty"`
	Credits     int     `json:"credits"`
	Price       float64 `json:"price"`
	TeacherID   int64   `json:"teacher_id"`
	IsActive    bool    `json:"is_active"`
}

type enrollment struct {
	CourseID  int64  `json:"course_id"`
	StudentID int64  `json:"student_id"`
	Name      string `json:"student_name"`
	Email     string `json:"student_email"`
	Status    string `json:"status"`
}

func (s *Server) addCourseLocked(c course) *course {
	c.ID = s.nextID
	c.IsActive = true
	s.nextID++
	s.courses[c.ID] = &c
	return &c
}

func (s *Server) sortedCourses(keep func(*course) bool) []course {
	out := make([]course, 0, len(s.courses))
	for _, c := range s.courses {
		if keep == nil || keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.sortedCourses(func(c *course) bool {
		return search == "" || strings.Contains(strings.ToLower(c.Title), search) ||
			strings.Contains(strings.ToLower(c.Code), search)
	}))
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "courseID")
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, found := s.courses[id]
	if !ok || !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var in course
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Code) == "" {
		writeError(w, http.StatusBadRequest, "title and code are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if me := s.currentUser(r); me != nil && me.Type == domain.UserTypeTeacher {
		in.TeacherID = me.ID
	}
	writeJSON(w, http.StatusOK, s.addCourseLocked(in))
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "courseID")
	var in map[string]any
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.courses[id]
	if !ok || !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	if v, ok := in["title"].(string); ok {
		c.Title = v
	}
	if v, ok := in["description"].(string); ok {
		c.Description = v
	}
	if v, ok := in["credits"].(float64); ok {
		c.Credits = int(v)
	}
	if v, ok := in["price"].(float64); ok {
		c.Price = v
	}
	if v, ok := in["is_active"].(bool); ok {
		c.IsActive = v
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "courseID")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.courses[id]; !ok || !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	delete(s.courses, id)
	delete(s.enrollments, id)
	writeMessage(w, "Course deleted successfully")
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "courseID")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.courses[id]; !ok || !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	me := s.currentUser(r)
	for _, sid := range s.enrollments[id] {
		if sid == me.ID {
			writeError(w, http.StatusBadRequest, "Already enrolled in this course")
			return
		}
	}
	s.enrollments[id] = append(s.enrollments[id], me.ID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Successfully enrolled in course", "course_id": id})
}

func (s *Server) enrolled(studentID, courseID int64) bool {
	for _, sid := range s.enrollments[courseID] {
		if sid == studentID {
			return true
		}
	}
	return false
}

func (s *Server) handleMyCourses(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	me := s.currentUser(r)
	writeJSON(w, http.StatusOK, s.sortedCourses(func(c *course) bool {
		switch me.Type {
		case domain.UserTypeTeacher:
			return c.TeacherID == me.ID
		case domain.UserTypeStudent:
			return s.enrolled(me.ID, c.ID)
		default:
			return me.Type == domain.UserTypeAdmin
		}
	}))
}

func (s *Server) handleMyEnrollments(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	me := s.currentUser(r)
	out := []enrollment{}
	for _, c := range s.sortedCourses(nil) {
		if s.enrolled(me.ID, c.ID) {
			out = append(out, enrollment{CourseID: c.ID, StudentID: me.ID, Name: me.Name, Email: me.Email, Status: "active"})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCourseEnrollments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "courseID")
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, found := s.courses[id]; !ok || !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	out := []enrollment{}
	for _, sid := range s.enrollments[id] {
		if u := s.userByID(domain.UserTypeStudent, sid); u != nil {
			out = append(out, enrollment{CourseID: id, StudentID: sid, Name: u.Name, Email: u.Email, Status: "active"})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Materials and announcements are not simulated.
func (s *Server) handleEmptyList(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "courseID")
	s.mu.RLock()
	_, found := s.courses[id]
	s.mu.RUnlock()
	if !ok || !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, []any{})
}
