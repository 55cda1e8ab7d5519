package main

import (
	"github.com/spf13/cobra"
)

var filingsCmd = &cobra.Command{
	Use:   "filings",
	Short: "Locate and retrieve filings",
}

var (
	filingsForm  string
	filingsDays  int
	filingsLimit int
)

var filingsRecentCmd = &cobra.Command{
	Use:   "recent [ticker-or-cik]",
	Short: "List filings in the lookback window",
	Long:  "Lists a company's filings inside the inclusive lookback window, or recent filings across all companies when no identifier is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		identifier := ""
		if len(args) > 0 {
			identifier = args[0]
		}
		return printResult(svc.GetRecentFilings(cmd.Context(), identifier, filingsForm, filingsDays, filingsLimit))
	},
}

var filingsGetCmd = &cobra.Command{
	Use:   "get <ticker-or-cik> <accession-number>",
	Short: "Retrieve one filing with its document and sections",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetFilingContent(cmd.Context(), args[0], args[1]))
	},
}

var sectionsForm string

var filingsSectionsCmd = &cobra.Command{
	Use:   "sections <ticker-or-cik> <accession-number>",
	Short: "Extract a filing's form-specific sections",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetFilingSections(cmd.Context(), args[0], args[1], sectionsForm))
	},
}

var filingsEventsCmd = &cobra.Command{
	Use:   "events <ticker-or-cik> <accession-number>",
	Short: "Analyze a current report's declared items",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.AnalyzeEightK(cmd.Context(), args[0], args[1]))
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [form-type]",
	Short: "Show which operations suit a form type",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		form := ""
		if len(args) > 0 {
			form = args[0]
		}
		return printResult(svc.GetRecommendedTools(form))
	},
}

func init() {
	filingsRecentCmd.Flags().StringVar(&filingsForm, "form", "", "form type filter, e.g. 10-K")
	filingsRecentCmd.Flags().IntVar(&filingsDays, "days", 0, "lookback days (default 30)")
	filingsRecentCmd.Flags().IntVar(&filingsLimit, "limit", 0, "max filings (default 50)")
	filingsSectionsCmd.Flags().StringVar(&sectionsForm, "form", "", "taxonomy to apply (default the filing's own form)")
	filingsCmd.AddCommand(filingsRecentCmd, filingsGetCmd, filingsSectionsCmd, filingsEventsCmd, recommendCmd)
	rootCmd.AddCommand(filingsCmd)
}
