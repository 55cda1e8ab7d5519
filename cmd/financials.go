package main

import (
	"github.com/spf13/cobra"
)

var financialsCmd = &cobra.Command{
	Use:   "financials",
	Short: "Extract normalized financial data from filings",
}

var (
	finAccession string
	finStatement string
	finMetrics   []string
	finSegment   string
	finSearch    string
	finNamespace string
	finConcepts  []string
	finStartYear int
	finEndYear   int
)

var statementsCmd = &cobra.Command{
	Use:   "statements <ticker-or-cik>",
	Short: "Extract canonical financial statements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetFinancialStatements(cmd.Context(), args[0], finAccession, finStatement))
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics <ticker-or-cik>",
	Short: "Extract key metrics from a filing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetKeyMetrics(cmd.Context(), args[0], finAccession, finMetrics))
	},
}

var segmentsCmd = &cobra.Command{
	Use:   "segments <ticker-or-cik>",
	Short: "Extract the dimensional revenue breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetSegmentData(cmd.Context(), args[0], finAccession, finSegment))
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <ticker-or-cik> <metric>",
	Short: "Compare a metric across fiscal years",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.ComparePeriods(cmd.Context(), args[0], args[1], finStartYear, finEndYear))
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover <ticker-or-cik>",
	Short: "List the concepts a company tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.DiscoverMetrics(cmd.Context(), args[0], finSearch))
	},
}

var conceptsCmd = &cobra.Command{
	Use:   "concepts <ticker-or-cik>",
	Short: "Extract raw tagged concepts from a filing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		if len(finConcepts) > 0 {
			return printResult(svc.GetXBRLConcepts(cmd.Context(), args[0], finAccession, finConcepts))
		}
		return printResult(svc.DiscoverXBRLConcepts(cmd.Context(), args[0], finAccession, finNamespace))
	},
}

func init() {
	financialsCmd.PersistentFlags().StringVar(&finAccession, "accession", "", "accession number (default latest 10-K/10-Q)")
	statementsCmd.Flags().StringVar(&finStatement, "type", "all", "income | balance | cashflow | all")
	metricsCmd.Flags().StringSliceVar(&finMetrics, "metric", nil, "concept names (default standard set)")
	segmentsCmd.Flags().StringVar(&finSegment, "type", "business", "geographic | product | business")
	compareCmd.Flags().IntVar(&finStartYear, "from", 0, "start fiscal year")
	compareCmd.Flags().IntVar(&finEndYear, "to", 0, "end fiscal year")
	_ = compareCmd.MarkFlagRequired("from")
	_ = compareCmd.MarkFlagRequired("to")
	discoverCmd.Flags().StringVar(&finSearch, "search", "", "substring filter")
	conceptsCmd.Flags().StringSliceVar(&finConcepts, "concept", nil, "concept names to extract")
	conceptsCmd.Flags().StringVar(&finNamespace, "namespace", "", "namespace filter for discovery")

	financialsCmd.AddCommand(statementsCmd, metricsCmd, segmentsCmd, compareCmd, discoverCmd, conceptsCmd)
	rootCmd.AddCommand(financialsCmd)
}
