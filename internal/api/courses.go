package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

func coursePath(id int64) string { return Prefix + "/courses/" + strconv.FormatInt(id, 10) }

// Courses lists courses; params are passed through as query filters.
func (c *Client) Courses(ctx context.Context, params map[string]any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/courses", nil, params)
}

func (c *Client) Course(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, coursePath(id), nil, nil)
}

func (c *Client) CreateCourse(ctx context.Context, data any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, Prefix+"/courses", data, nil)
}

func (c *Client) UpdateCourse(ctx context.Context, id int64, data any) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPut, coursePath(id), data, nil)
}

func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	_, err := c.Request(ctx, http.MethodDelete, coursePath(id), nil, nil)
	return err
}

func (c *Client) EnrollInCourse(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, coursePath(id)+"/enroll", nil, nil)
}

func (c *Client) MyCourses(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/courses/my-courses", nil, nil)
}

func (c *Client) MyEnrollments(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, Prefix+"/courses/my-enrollments", nil, nil)
}

// CourseStudents lists the enrollments of a course.
func (c *Client) CourseStudents(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, coursePath(id)+"/enrollments", nil, nil)
}

func (c *Client) CourseMaterials(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, coursePath(id)+"/materials", nil, nil)
}

func (c *Client) CourseAnnouncements(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, coursePath(id)+"/announcements", nil, nil)
}
