package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dukerupert/choreboard/internal/engine"
)

func newReportCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print house and room health and today's quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", format)
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			eng := engine.New(db, engine.WithLocation(loc), engine.WithLogger(a.logger))
			d, err := eng.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			return writeReport(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}

func writeReport(out io.Writer, d *engine.Dashboard) error {
	fmt.Fprintf(out, "House health: %d%%\n", d.HouseHealth)
	if d.Vacation.Active {
		fmt.Fprintln(out, "Vacation mode is on; health is frozen.")
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tHEALTH\tTASKS")
	for _, r := range d.Rooms {
		fmt.Fprintf(tw, "%s %s\t%d%%\t%d\n", r.Icon, r.Name, r.Health, r.TaskCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nToday's quests (%d)\n", len(d.Quests))
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, q := range d.Quests {
		overdue := ""
		if q.DaysOverdue > 0 {
			overdue = fmt.Sprintf("%dd overdue", q.DaysOverdue)
		}
		fmt.Fprintf(tw, "  %s\t%d%%\t%s\n", q.Name, q.Health, overdue)
	}
	return tw.Flush()
}
