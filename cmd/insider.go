package main

import (
	"github.com/spf13/cobra"
)

var insiderCmd = &cobra.Command{
	Use:   "insider",
	Short: "Aggregate insider-ownership filings",
}

var (
	insiderForms  []string
	insiderDays   int
	insiderLimit  int
	insiderMonths int
)

var insiderTxCmd = &cobra.Command{
	Use:   "transactions <ticker-or-cik>",
	Short: "List insider transactions in the lookback window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetInsiderTransactions(cmd.Context(), args[0], insiderForms, insiderDays, insiderLimit))
	},
}

var insiderSummaryCmd = &cobra.Command{
	Use:   "summary <ticker-or-cik>",
	Short: "Aggregate buy/sell activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetInsiderSummary(cmd.Context(), args[0], insiderDays))
	},
}

var insiderForm4Cmd = &cobra.Command{
	Use:   "form4 <ticker-or-cik> <accession-number>",
	Short: "Show one ownership filing in full",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetForm4Details(cmd.Context(), args[0], args[1]))
	},
}

var insiderAnalyzeCmd = &cobra.Command{
	Use:   "analyze <ticker-or-cik>",
	Short: "List transactions with computed total values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.AnalyzeInsiderTransactions(cmd.Context(), args[0], insiderDays, insiderLimit))
	},
}

var insiderSentimentCmd = &cobra.Command{
	Use:   "sentiment <ticker-or-cik>",
	Short: "Bucket insider activity by calendar month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetInsiderSentiment(cmd.Context(), args[0], insiderMonths))
	},
}

func init() {
	insiderCmd.PersistentFlags().IntVar(&insiderDays, "days", 0, "lookback days")
	insiderCmd.PersistentFlags().IntVar(&insiderLimit, "limit", 0, "max transactions (default 50)")
	insiderTxCmd.Flags().StringSliceVar(&insiderForms, "form", nil, "ownership forms (default 3,4,5)")
	insiderSentimentCmd.Flags().IntVar(&insiderMonths, "months", 0, "trailing months (default 6)")

	insiderCmd.AddCommand(insiderTxCmd, insiderSummaryCmd, insiderForm4Cmd, insiderAnalyzeCmd, insiderSentimentCmd)
	rootCmd.AddCommand(insiderCmd)
}
