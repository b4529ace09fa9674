package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"vyshim/internal/journal"
	"vyshim/internal/protocol"
)

const journalDisabledMessage = "Journal disabled (set [journal] enabled = true)"

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded invocations",
	}
	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalPruneCommand(ctx))
	return journalCmd
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent invocations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			enabled, err := ctx.withJournal(func(store *journal.Store) error {
				entries, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No invocations recorded")
					return nil
				}
				fmt.Fprintln(out, renderJournal(entries))
				return nil
			})
			if !enabled && err == nil {
				fmt.Fprintln(out, journalDisabledMessage)
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func newJournalPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			enabled, err := ctx.withJournal(func(store *journal.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d entries\n", removed)
				return nil
			})
			if !enabled && err == nil {
				fmt.Fprintln(out, journalDisabledMessage)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "Number of newest entries to keep")
	return cmd
}

func renderJournal(entries []journal.Entry) string {
	columns := []columnSpec{
		{header: "Started", align: text.AlignLeft},
		{header: "Node", align: text.AlignLeft, maxWidth: 60},
		{header: "Status", align: text.AlignLeft},
		{header: "Outcome", align: text.AlignLeft},
		{header: "Exit", align: text.AlignRight},
		{header: "Init", align: text.AlignLeft},
		{header: "Duration", align: text.AlignRight},
		{header: "Invocation", align: text.AlignLeft},
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		init := ""
		if e.Initialized {
			init = "yes"
		}
		rows = append(rows, []string{
			e.StartedAt.Local().Format(time.DateTime),
			e.Descriptor,
			protocol.Status(e.Status).String(),
			e.Outcome,
			strconv.Itoa(e.ExitCode),
			init,
			e.Duration.Round(time.Millisecond).String(),
			e.InvocationID,
		})
	}
	return renderTable(columns, rows)
}
