package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"primis/internal/api"
	"primis/internal/domain"
)

// idCommand builds a subcommand that takes one numeric id and prints the
// backend's answer.
func idCommand(c *cli, use, short string, call func(*api.Client, context.Context, int64) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			raw, err := call(c.wire.API, cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
}

// plainCommand builds a no-argument subcommand that prints the answer.
func plainCommand(c *cli, use, short string, call func(*api.Client, context.Context) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			raw, err := call(c.wire.API, cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
}

type courseFields struct {
	Title       string  `json:"title,omitempty"`
	Code        string  `json:"code,omitempty"`
	Description string  `json:"description,omitempty"`
	Credits     int     `json:"credits,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

func bindCourseFlags(cmd *cobra.Command, f *courseFields) {
	cmd.Flags().StringVar(&f.Title, "title", "", "course title")
	cmd.Flags().StringVar(&f.Code, "code", "", "course code")
	cmd.Flags().StringVar(&f.Description, "description", "", "course description")
	cmd.Flags().IntVar(&f.Credits, "credits", 0, "credit points")
	cmd.Flags().Float64Var(&f.Price, "price", 0, "course price")
}

func coursesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "courses",
		Aliases: []string{"course"},
		Short:   "Browse and manage courses",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			params := map[string]any{}
			if search != "" {
				params["search"] = search
			}
			raw, err := c.wire.API.Courses(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	list.Flags().StringVar(&search, "search", "", "filter by title or code")

	var created courseFields
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a course (teachers and administrators)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(); err != nil {
				return err
			}
			raw, err := c.wire.API.CreateCourse(cmd.Context(), created)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	bindCourseFlags(create, &created)
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("code")

	var updated courseFields
	update := idCommand(c, "update ID", "Update a course", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return a.UpdateCourse(ctx, id, updated)
	})
	bindCourseFlags(update, &updated)

	del := idCommand(c, "delete ID", "Delete a course", func(a *api.Client, ctx context.Context, id int64) (json.RawMessage, error) {
		return nil, a.DeleteCourse(ctx, id)
	})

	manage := func() error {
		return c.requireRole(domain.UserType.CanManageCourses, "manage courses")
	}
	roster := func() error {
		return c.requireRole(domain.UserType.CanViewStudentData, "view course rosters")
	}
	cmd.AddCommand(
		list,
		idCommand(c, "show ID", "Show one course", (*api.Client).Course),
		idCommand(c, "enroll ID", "Enroll in a course (students)", (*api.Client).EnrollInCourse),
		plainCommand(c, "mine", "List the courses you teach or attend", (*api.Client).MyCourses),
		plainCommand(c, "enrollments", "List your enrollments", (*api.Client).MyEnrollments),
		idCommand(c, "materials ID", "List a course's materials", (*api.Client).CourseMaterials),
		idCommand(c, "announcements ID", "List a course's announcements", (*api.Client).CourseAnnouncements),
	)
	cmd.AddCommand(gated(manage, create, update, del)...)
	cmd.AddCommand(gated(roster, idCommand(c, "students ID", "List a course's enrollments", (*api.Client).CourseStudents))...)
	return cmd
}
