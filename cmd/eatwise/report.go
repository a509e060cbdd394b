package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print an admin report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx := cmd.Context()
			var out any
			switch kind {
			case "dashboard":
				out, err = svc.admin.AdminReport(ctx)
			case "weekly-comparison":
				out, err = svc.admin.WeeklyComparison(ctx)
			case "user-averages":
				out, err = svc.admin.UserAverages(ctx)
			default:
				return fmt.Errorf("unknown report %q", kind)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "dashboard", "dashboard, weekly-comparison or user-averages")
	return cmd
}
