package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"primis/internal/api"
	"primis/internal/domain"
)

func attendanceCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record and review attendance",
	}

	var mark struct {
		StudentID int64  `json:"student_id"`
		CourseID  int64  `json:"course_id"`
		Date      string `json:"attendance_date,omitempty"`
		Status    string `json:"status"`
	}
	markCmd := &cobra.Command{
		Use:   "mark",
		Short: "Mark a student's attendance (teachers and administrators)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			raw, err := c.wire.API.MarkAttendance(cmd.Context(), mark)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	markCmd.Flags().Int64Var(&mark.StudentID, "student", 0, "student id")
	markCmd.Flags().Int64Var(&mark.CourseID, "course", 0, "course id")
	markCmd.Flags().StringVar(&mark.Date, "date", "", "class date YYYY-MM-DD (default today)")
	markCmd.Flags().StringVar(&mark.Status, "status", "present", "present, absent, late or excused")
	_ = markCmd.MarkFlagRequired("student")
	_ = markCmd.MarkFlagRequired("course")

	scan := &cobra.Command{
		Use:   "scan QR_DATA",
		Short: "Check in with the data from a class QR code (students)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			raw, err := c.wire.API.ScanQRAttendance(cmd.Context(), map[string]string{"qr_data": args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}

	var date string
	course := idCommand(c, "course ID", "List attendance for a course", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return a.CourseAttendance(ctx, id, date)
	})
	course.Flags().StringVar(&date, "date", "", "only this day (YYYY-MM-DD)")

	var courseID int64
	student := idCommand(c, "student ID", "List a student's attendance", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return a.StudentAttendance(ctx, id, courseID)
	})
	student.Flags().Int64Var(&courseID, "course", 0, "only this course")

	var statsCourseID int64
	stats := idCommand(c, "stats ID", "Summarise a student's attendance", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return a.AttendanceStats(ctx, id, statsCourseID)
	})
	stats.Flags().Int64Var(&statsCourseID, "course", 0, "only this course")

	var year, month int
	report := idCommand(c, "report ID", "Monthly attendance report for a student", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return a.MonthlyAttendanceReport(ctx, id, year, month)
	})
	report.Flags().IntVar(&year, "year", 0, "year (default current)")
	report.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")

	var classDate string
	qr := idCommand(c, "qr COURSE_ID", "Generate the check-in QR data for a class", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return a.GenerateAttendanceQR(ctx, id, classDate)
	})
	qr.Flags().StringVar(&classDate, "date", "", "class date YYYY-MM-DD")
	_ = qr.MarkFlagRequired("date")

	staff := func() error {
		return c.requireRole(domain.UserType.CanManageCourses, "take attendance")
	}
	sheet := func() error {
		return c.requireRole(domain.UserType.CanViewStudentData, "view a course's attendance sheet")
	}
	cmd.AddCommand(scan, student, stats, report)
	cmd.AddCommand(gated(staff, markCmd, qr)...)
	cmd.AddCommand(gated(sheet, course)...)
	return cmd
}
