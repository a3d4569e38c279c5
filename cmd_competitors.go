package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/intelhub/pkg/render"
)

var competitorsCmd = &cobra.Command{
	Use:     "competitors",
	Aliases: []string{"competitor"},
	Short:   "Manage tracked competitors",
}

var competitorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked competitors",
	Args:  cobra.NoArgs,
	RunE:  runCompetitorsList,
}

var competitorsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking a competitor",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompetitorsAdd,
}

var competitorsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a competitor (existing findings keep the old name)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCompetitorsRename,
}

var competitorsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Stop tracking a competitor (its findings are kept)",
	Args:    cobra.ExactArgs(1),
	RunE:    runCompetitorsRm,
}

func init() {
	competitorsCmd.AddCommand(competitorsListCmd, competitorsAddCmd, competitorsRenameCmd, competitorsRmCmd)
	rootCmd.AddCommand(competitorsCmd)
}

func runCompetitorsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	competitors := a.store.Competitors()
	if len(competitors) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No competitors tracked yet. Add one with: intelhub competitors add <name>")
		return nil
	}
	return printMarkdown(cmd, render.CompetitorsTable(competitors))
}

func runCompetitorsAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := a.store.AddCompetitor(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", c.Name, c.ID)
	return nil
}

func runCompetitorsRename(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := a.store.RenameCompetitor(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", c.ID, c.Name)
	return nil
}

func runCompetitorsRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.DeleteCompetitor(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
