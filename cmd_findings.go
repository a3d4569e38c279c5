package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/render"
)

var (
	findingsCompetitor string
	findingsSiteType   string
	findingsStatus     string
)

var findingsCmd = &cobra.Command{
	Use:     "findings",
	Aliases: []string{"finding"},
	Short:   "List and review discovered findings",
}

var findingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List findings, newest first",
	Args:  cobra.NoArgs,
	RunE:  runFindingsList,
}

var findingsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a flagged finding for the next report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFindingsReview(cmd, args[0], models.FindingStatusApproved)
	},
}

var findingsDismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss a flagged finding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFindingsReview(cmd, args[0], models.FindingStatusDismissed)
	},
}

func init() {
	findingsListCmd.Flags().StringVar(&findingsCompetitor, "competitor", "", "Only findings for this competitor")
	findingsListCmd.Flags().StringVar(&findingsSiteType, "site-type", "", "Only findings with this site type")
	findingsListCmd.Flags().StringVar(&findingsStatus, "status", "", "Only findings with this status (approved, flagged, dismissed)")

	findingsCmd.AddCommand(findingsListCmd, findingsApproveCmd, findingsDismissCmd)
	rootCmd.AddCommand(findingsCmd)
}

func runFindingsList(cmd *cobra.Command, args []string) error {
	filter := models.FindingFilter{
		Competitor: findingsCompetitor,
		SiteType:   findingsSiteType,
		Status:     models.FindingStatus(findingsStatus),
	}
	if filter.Status != "" && !models.IsValidFindingStatus(filter.Status) {
		return fmt.Errorf("invalid status %q (must be one of: approved, flagged, dismissed)", findingsStatus)
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	found := a.store.Findings(filter)
	if len(found) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No findings match.")
		return nil
	}
	return printMarkdown(cmd, render.FindingsTable(found))
}

func runFindingsReview(cmd *cobra.Command, id string, status models.FindingStatus) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	f, err := a.store.UpdateFindingStatus(id, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.Title, f.Status)
	return nil
}
