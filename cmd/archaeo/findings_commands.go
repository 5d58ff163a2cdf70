package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/basel-ax/archaeo/internal/domain"
	"github.com/basel-ax/archaeo/internal/repository"
)

func newFindingsCommand(ctx *commandContext) *cobra.Command {
	findingsCmd := &cobra.Command{
		Use:   "findings",
		Short: "Inspect and manage the findings archive",
	}

	findingsCmd.AddCommand(newFindingsListCommand(ctx))
	findingsCmd.AddCommand(newFindingsPruneCommand(ctx))
	return findingsCmd
}

func newFindingsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent findings",
		RunE: func(cmd *cobra.Command, args []string) error {
			findings, db, err := ctx.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			if findings == nil {
				return fmt.Errorf("findings archive is disabled (DB_DRIVER=none)")
			}
			defer db.Close()

			list, err := findings.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No findings archived")
				return nil
			}
			fmt.Fprintln(out, renderFindings(list))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of findings to show")
	return cmd
}

func newFindingsPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete findings older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			findings, db, err := ctx.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			if findings == nil {
				return fmt.Errorf("findings archive is disabled (DB_DRIVER=none)")
			}
			defer db.Close()

			retention := ctx.config.ArchiveRetention
			if olderThan > 0 {
				retention = olderThan
			}
			n, err := pruneFindings(cmd.Context(), findings, retention, time.Now(), ctx.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d finding(s)\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Retention period (overrides ARCHIVE_RETENTION)")
	return cmd
}

func pruneFindings(ctx context.Context, findings repository.FindingRepository, retention time.Duration, now time.Time, log *logrus.Entry) (int64, error) {
	cutoff := now.Add(-retention)
	n, err := findings.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{"deleted": n, "cutoff": cutoff}).Info("pruned findings archive")
	return n, nil
}

func renderFindings(list []domain.Finding) string {
	const stampLayout = "2006-01-02 15:04"
	rows := make([][]string, 0, len(list))
	for _, f := range list {
		rows = append(rows, []string{
			f.ID,
			string(f.Module),
			f.CreatedAt.Local().Format(stampLayout),
			string(f.PayloadKind),
			f.Params,
			strconv.Itoa(len(f.Payload)),
			summarize(f),
		})
	}
	return renderTable(
		[]string{"ID", "Module", "Created", "Kind", "Params", "Bytes", "Summary"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

// summarize shows the start of a text finding; images have no summary
func summarize(f domain.Finding) string {
	if f.PayloadKind != domain.PayloadText {
		return ""
	}
	s := strings.Join(strings.Fields(f.Payload), " ")
	if r := []rune(s); len(r) > 40 {
		return string(r[:40]) + "…"
	}
	return s
}
