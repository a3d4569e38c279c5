package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/intelhub/pkg/render"
	"github.com/ekaya-inc/intelhub/pkg/services"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery cycle over all tracked competitors",
	Long: `Sends the tracked competitor names to the discovery agent and stores the
findings it returns. Findings the agent is unsure about are flagged for review.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Fprintln(cmd.ErrOrStderr(), services.DiscoveryStartingMessage)
	outcome, err := a.discovery.Run(cmd.Context())
	if err != nil {
		if msg := a.discovery.Status().Message; msg != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", outcome.Message)
	if len(outcome.Findings) > 0 {
		b.WriteString(render.FindingsTable(outcome.Findings))
		b.WriteString("\n")
	}
	if outcome.Run.XLSXURL != "" {
		fmt.Fprintf(&b, "[Download spreadsheet](%s)\n", outcome.Run.XLSXURL)
	}
	return printMarkdown(cmd, b.String())
}
