package main

import (
	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Resolve and inspect companies",
}

var companyInfoCmd = &cobra.Command{
	Use:   "info <ticker-or-cik>",
	Short: "Show the full company profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetCompanyInfo(cmd.Context(), args[0]))
	},
}

var companyCIKCmd = &cobra.Command{
	Use:   "cik <ticker>",
	Short: "Resolve a ticker to its CIK number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetCIKByTicker(cmd.Context(), args[0]))
	},
}

var searchLimit int

var companySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search companies by ticker or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.SearchCompanies(cmd.Context(), args[0], searchLimit))
	},
}

var companyFactsCmd = &cobra.Command{
	Use:   "facts <ticker-or-cik>",
	Short: "Summarize the latest tagged value per key metric",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		return printResult(svc.GetCompanyFacts(cmd.Context(), args[0]))
	},
}

func init() {
	companySearchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results (default 10)")
	companyCmd.AddCommand(companyInfoCmd, companyCIKCmd, companySearchCmd, companyFactsCmd)
	rootCmd.AddCommand(companyCmd)
}
