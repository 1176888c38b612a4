package mockapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"primis/internal/domain"
)

const dateLayout = "2006-01-02"

type attendanceRecord struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	CourseID  int64  `json:"course_id"`
	Date      string `json:"attendance_date"`
	Status    string `json:"status"`
	Method    string `json:"method"`
}

type markRequest struct {
	StudentID int64  `json:"student_id"`
	CourseID  int64  `json:"course_id"`
	Date      string `json:"attendance_date"`
	Status    string `json:"status"`
}

func validStatus(s string) bool {
	switch s {
	case "present", "absent", "late", "excused":
		return true
	}
	return false
}

func (s *Server) recordLocked(rec attendanceRecord) attendanceRecord {
	for i, existing := range s.attendance {
		if existing.StudentID == rec.StudentID && existing.CourseID == rec.CourseID && existing.Date == rec.Date {
			rec.ID = existing.ID
			s.attendance[i] = rec
			return rec
		}
	}
	rec.ID = s.nextID
	s.nextID++
	s.attendance = append(s.attendance, rec)
	return rec
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var in markRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Date == "" {
		in.Date = time.Now().UTC().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil || !validStatus(in.Status) {
		writeError(w, http.StatusBadRequest, "invalid attendance date or status")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[in.CourseID]; !ok {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	if !s.enrolled(in.StudentID, in.CourseID) {
		writeError(w, http.StatusBadRequest, "Student is not enrolled in this course")
		return
	}
	writeJSON(w, http.StatusOK, s.recordLocked(attendanceRecord{
		StudentID: in.StudentID,
		CourseID:  in.CourseID,
		Date:      in.Date,
		Status:    in.Status,
		Method:    "manual",
	}))
}

// QR payloads are "PRIMIS:<course id>:<date>".
func qrPayload(courseID int64, date string) string {
	return fmt.Sprintf("PRIMIS:%d:%s", courseID, date)
}

func (s *Server) handleGenerateQR(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "courseID")
	date := r.URL.Query().Get("class_date")
	if _, err := time.Parse(dateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "class_date must be YYYY-MM-DD")
		return
	}
	s.mu.RLock()
	_, found := s.courses[id]
	s.mu.RUnlock()
	if !ok || !found {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"course_id":  id,
		"class_date": date,
		"qr_data":    qrPayload(id, date),
	})
}

func (s *Server) handleScanQR(w http.ResponseWriter, r *http.Request) {
	var in struct {
		QRData string `json:"qr_data"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	parts := strings.Split(in.QRData, ":")
	if len(parts) != 3 || parts[0] != "PRIMIS" {
		writeError(w, http.StatusBadRequest, "Invalid QR code")
		return
	}
	courseID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid QR code")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	me := s.currentUser(r)
	if !s.enrolled(me.ID, courseID) {
		writeError(w, http.StatusBadRequest, "Student is not enrolled in this course")
		return
	}
	writeJSON(w, http.StatusOK, s.recordLocked(attendanceRecord{
		StudentID: me.ID,
		CourseID:  courseID,
		Date:      parts[2],
		Status:    "present",
		Method:    "qr",
	}))
}

func (s *Server) filterAttendance(keep func(attendanceRecord) bool) []attendanceRecord {
	out := []attendanceRecord{}
	for _, rec := range s.attendance {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// canSeeStudent lets students read only their own records.
func canSeeStudent(me *User, studentID int64) bool {
	return me.Type != domain.UserTypeStudent || me.ID == studentID
}

func (s *Server) handleCourseAttendance(w http.ResponseWriter, r *http.Request) {
	id, _ := idParam(r, "courseID")
	date := r.URL.Query().Get("attendance_date")
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.filterAttendance(func(rec attendanceRecord) bool {
		return rec.CourseID == id && (date == "" || rec.Date == date)
	}))
}

func (s *Server) studentRecords(w http.ResponseWriter, r *http.Request) ([]attendanceRecord, bool) {
	sid, ok := idParam(r, "studentID")
	if !ok {
		writeError(w, http.StatusNotFound, "Student not found")
		return nil, false
	}
	courseID, _ := strconv.ParseInt(r.URL.Query().Get("course_id"), 10, 64)
	if me := s.currentUser(r); me == nil || !canSeeStudent(me, sid) {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return nil, false
	}
	return s.filterAttendance(func(rec attendanceRecord) bool {
		return rec.StudentID == sid && (courseID == 0 || rec.CourseID == courseID)
	}), true
}

func (s *Server) handleStudentAttendance(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if recs, ok := s.studentRecords(w, r); ok {
		writeJSON(w, http.StatusOK, recs)
	}
}

func summarize(recs []attendanceRecord) map[string]any {
	counts := map[string]int{"present": 0, "absent": 0, "late": 0, "excused": 0}
	for _, rec := range recs {
		counts[rec.Status]++
	}
	rate := 0.0
	if len(recs) > 0 {
		rate = float64(counts["present"]+counts["late"]) * 100 / float64(len(recs))
	}
	return map[string]any{
		"total_classes":   len(recs),
		"present":         counts["present"],
		"absent":          counts["absent"],
		"late":            counts["late"],
		"excused":         counts["excused"],
		"attendance_rate": rate,
	}
}

func (s *Server) handleAttendanceStats(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if recs, ok := s.studentRecords(w, r); ok {
		writeJSON(w, http.StatusOK, summarize(recs))
	}
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year == 0 {
		year = now.Year()
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		month = int(now.Month())
	}
	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.studentRecords(w, r)
	if !ok {
		return
	}
	var inMonth []attendanceRecord
	for _, rec := range recs {
		if strings.HasPrefix(rec.Date, prefix) {
			inMonth = append(inMonth, rec)
		}
	}
	report := summarize(inMonth)
	report["year"] = year
	report["month"] = month
	writeJSON(w, http.StatusOK, report)
}
