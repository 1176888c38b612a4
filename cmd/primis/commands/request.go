package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func requestCmd(c *cli) *cobra.Command {
	var data string
	var params []string
	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send an arbitrary authenticated request, e.g. `request GET /api/v1/courses`",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data must be valid JSON")
				}
				body = json.RawMessage(data)
			}
			query := make(map[string]any, len(params))
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok || k == "" {
					return fmt.Errorf("--param %q: want key=value", p)
				}
				query[k] = v
			}
			raw, err := c.wire.API.Request(cmd.Context(), method, args[1], body, query)
			if err != nil {
				return err
			}
			return printJSON(cmd, raw)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVar(&params, "param", nil, "query parameter key=value (repeatable)")
	return cmd
}
