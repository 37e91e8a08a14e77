package app

import (
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pranshuparmar/hostreport/internal/history"
)

func newHistoryCmd(a *app, root *rootOptions) *cobra.Command {
	var (
		limit int
		id    int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List reports recorded with --history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.loadConfig(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.History.Path == "" {
				return configError{errors.New("no history database configured (set --history or history.path)")}
			}

			ctx := cmd.Context()
			store, err := history.Open(ctx, cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if id > 0 {
				report, err := store.Load(ctx, id)
				if err != nil {
					return err
				}
				return a.render(cfg, report, nil)
			}

			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No reports recorded.")
				return nil
			}

			table := tablewriter.NewWriter(a.out)
			table.Header("ID", "Generated", "Host", "Overall", "Findings", "Sections")
			for _, e := range entries {
				table.Append(
					fmt.Sprintf("%d", e.ID),
					e.GeneratedAt.Format("2006-01-02 15:04:05"),
					e.Hostname,
					e.Overall.String(),
					fmt.Sprintf("%d", e.Findings),
					fmt.Sprintf("%d", e.Sections),
				)
			}
			return table.Render()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of reports to list")
	cmd.Flags().Int64Var(&id, "id", 0, "print the stored report with this id")
	cmd.Flags().StringP("format", "f", "text", "output format for --id (text, json, yaml)")
	return cmd
}
