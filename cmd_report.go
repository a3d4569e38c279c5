package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/render"
	"github.com/ekaya-inc/intelhub/pkg/services"
)

var (
	reportMonth int
	reportYear  int
	reportHTML  bool
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Aliases: []string{"reports"},
	Short:   "Generate and read monthly intelligence reports",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a report from all approved findings",
	Args:  cobra.NoArgs,
	RunE:  runReportGenerate,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a report (the most recent one without an id)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportShow,
}

func init() {
	now := time.Now()
	reportGenerateCmd.Flags().IntVar(&reportMonth, "month", int(now.Month()), "Report month (1-12)")
	reportGenerateCmd.Flags().IntVar(&reportYear, "year", now.Year(), "Report year")
	reportShowCmd.Flags().BoolVar(&reportHTML, "html", false, "Print sanitized HTML instead of terminal output")

	reportCmd.AddCommand(reportGenerateCmd, reportListCmd, reportShowCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportGenerate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Fprintln(cmd.ErrOrStderr(), services.ReportGeneratingMessage)
	report, err := a.reports.Generate(cmd.Context(), reportMonth, reportYear)
	if err != nil {
		if msg := a.reports.Status().Message; msg != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), a.reports.Status().Message)
	return printMarkdown(cmd, render.Markdown(report))
}

func runReportList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	reports := a.store.Reports()
	if len(reports) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No reports generated yet.")
		return nil
	}
	return printMarkdown(cmd, render.ReportsTable(reports))
}

func runReportShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	var report models.Report
	if len(args) == 1 {
		report, err = a.store.Report(args[0])
		if err != nil {
			return err
		}
	} else {
		reports := a.store.Reports()
		if len(reports) == 0 {
			return fmt.Errorf("no reports generated yet")
		}
		report = reports[0]
	}

	if reportHTML {
		html, err := render.ReportHTML(&report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
		return err
	}
	return printMarkdown(cmd, render.Markdown(&report))
}
