package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

func studentAttendancePath(studentID int64) string {
	return Prefix + "/attendance/student/" + strconv.FormatInt(studentID, 10)
}

func (c *Client) MarkAttendance(ctx context.Context, data any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/attendance/mark", data, nil)
}

func (c *Client) ScanQRAttendance(ctx context.Context, data any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/attendance/scan-qr", data, nil)
}

// CourseAttendance lists attendance for a course, optionally for one day
// (YYYY-MM-DD). An empty date means all days.
func (c *Client) CourseAttendance(ctx context.Context, courseID int64, date string) (json.RawMessage, error) {
	var params map[string]any
	if date != "" {
		params = map[string]any{"attendance_date": date}
	}
	return c.Request(ctx, http.MethodGet, Prefix+"/attendance/course/"+strconv.FormatInt(courseID, 10), nil, params)
}

// StudentAttendance lists a student's attendance; courseID 0 means every course.
func (c *Client) StudentAttendance(ctx context.Context, studentID, courseID int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, studentAttendancePath(studentID), nil, courseParam(courseID))
}

func (c *Client) AttendanceStats(ctx context.Context, studentID, courseID int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, studentAttendancePath(studentID)+"/stats", nil, courseParam(courseID))
}

// MonthlyAttendanceReport leaves year or month to the backend when zero.
func (c *Client) MonthlyAttendanceReport(ctx context.Context, studentID int64, year, month int) (json.RawMessage, error) {
	params := map[string]any{}
	if year > 0 {
		params["year"] = year
	}
	if month > 0 {
		params["month"] = month
	}
	return c.Request(ctx, http.MethodGet, studentAttendancePath(studentID)+"/monthly-report", nil, params)
}

func (c *Client) GenerateAttendanceQR(ctx context.Context, courseID int64, date string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/attendance/generate-qr/"+strconv.FormatInt(courseID, 10), nil,
		map[string]any{"class_date": date})
}

func courseParam(courseID int64) map[string]any {
	if courseID == 0 {
		return nil
	}
	return map[string]any{"course_id": courseID}
}
