package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DoyleJ11/teambot/internal/config"
	"github.com/DoyleJ11/teambot/internal/engine"
	"github.com/DoyleJ11/teambot/internal/roster"
	"github.com/DoyleJ11/teambot/internal/store"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st store.SnapshotStore) error {
			snaps, err := st.LoadAll(ctx)
			if err != nil {
				return err
			}
			renderList(cmd.OutOrStdout(), snaps)
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one session's roster and teams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st store.SnapshotStore) error {
			snap, err := st.Load(ctx, args[0])
			if err != nil {
				return err
			}
			renderSession(cmd.OutOrStdout(), snap)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd)
}

func withStore(ctx context.Context, fn func(context.Context, store.SnapshotStore) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg, zap.NewNop())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer st.Close()
	return fn(ctx, st)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderList(w io.Writer, snaps []engine.Snapshot) {
	table := newTable(w, []string{"Session", "State", "Version", "Participants", "Teams"})
	for _, snap := range snaps {
		teams := "-"
		if a := snap.Assignment; a != nil && a.Version == snap.RosterVersion {
			teams = strconv.Itoa(len(a.Teams))
		}
		table.Append([]string{
			snap.SessionID,
			string(snap.State),
			strconv.Itoa(snap.Version),
			strconv.Itoa(len(snap.Roster)),
			teams,
		})
	}
	table.Render()
}

func renderSession(w io.Writer, snap engine.Snapshot) {
	fmt.Fprintf(w, "Session: %s\n", snap.SessionID)
	fmt.Fprintf(w, "State:   %s (version %d)\n", snap.State, snap.Version)
	fmt.Fprintf(w, "Roster:  %s\n\n", strings.Join(lo.Map(snap.Roster, func(p roster.Participant, _ int) string { return p.ID }), ", "))

	a := snap.Assignment
	if a == nil || a.Version != snap.RosterVersion {
		fmt.Fprintln(w, "No current teams.")
		return
	}
	table := newTable(w, []string{"Team", "Size", "Members"})
	for i, team := range a.Teams {
		table.Append([]string{strconv.Itoa(i + 1), strconv.Itoa(len(team)), strings.Join(team, ", ")})
	}
	table.Render()
	if a.Seed != nil {
		fmt.Fprintf(w, "\nSeed: %d\n", *a.Seed)
	}
}
