package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/qatledger/internal/domain"
)

// options are the persistent flags shared by every command.
type options struct {
	baseURL        string
	timeout        time.Duration
	idempotencyKey string
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout, o.idempotencyKey)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "qatledger-cli",
		Short:         "QatLedger CLI tool",
		Long:          `A command line interface for interacting with the QatLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the QatLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency key sent with mutating requests")

	rootCmd.AddCommand(
		summaryCmd(opts),
		balanceCmd(opts),
		returnCmd(opts, "sale", "/api/v1/sales"),
		returnCmd(opts, "purchase", "/api/v1/purchases"),
		itemsCmd(opts),
		activityCmd(opts),
		convertCmd(opts),
		exportCmd(opts),
		assistantCmd(opts),
	)

	return rootCmd
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show assets, liabilities and net per currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary struct {
				Currencies []domain.CurrencySummary `json:"currencies"`
			}
			if err := opts.client().getJSON(cmd.Context(), "/api/v1/summary", &summary); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CURRENCY\tASSETS\tLIABILITIES\tNET")
			for _, c := range summary.Currencies {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Currency, c.Assets, c.Liabilities, c.Net)
			}
			return tw.Flush()
		},
	}
}

func balanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "balance customer|supplier <id>",
		Short:     "Show what a party owes or is owed",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"customer", "supplier"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch domain.PartyType(args[0]) {
			case domain.PartyCustomer:
				path = "/api/v1/customers/" + url.PathEscape(args[1]) + "/receivable"
			case domain.PartySupplier:
				path = "/api/v1/suppliers/" + url.PathEscape(args[1]) + "/payable"
			default:
				return fmt.Errorf("party type must be customer or supplier, got %q", args[0])
			}

			var balance struct {
				Name     string                  `json:"name"`
				Balances []domain.CurrencyAmount `json:"balances"`
			}
			if err := opts.client().getJSON(cmd.Context(), path, &balance); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, balance.Name)
			if len(balance.Balances) == 0 {
				fmt.Fprintln(out, "  settled")
				return nil
			}
			for _, b := range balance.Balances {
				fmt.Fprintf(out, "  %s %s\n", b.Amount, b.Currency)
			}
			return nil
		},
	}
}

func returnCmd(opts *options, name, basePath string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s operations", name),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "return <id>",
		Short: fmt.Sprintf("Mark a %s as returned and reverse its stock movement", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodPost, basePath+"/"+url.PathEscape(args[0])+"/return", nil)
			if err != nil {
				return err
			}
			return printRawJSON(cmd.OutOrStdout(), data)
		},
	})

	return cmd
}

func itemsCmd(opts *options) *cobra.Command {
	var lowStock bool

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List inventory items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/items"
			if lowStock {
				path += "/low-stock"
			}

			var items struct {
				Items []domain.InventoryItem `json:"items"`
			}
			if err := opts.client().getJSON(cmd.Context(), path, &items); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTOCK\tPRICE")
			for _, item := range items.Items {
				flag := ""
				if item.IsLowStock() {
					flag = " (low)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d%s\t%s %s\n", item.ID, truncate(item.Name, 24), item.Stock, flag, item.UnitPrice, item.Currency)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&lowStock, "low-stock", false, "Only items at or below their threshold")
	return cmd
}

func activityCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the most recent activity log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries struct {
				Items []domain.ActivityLogEntry `json:"items"`
			}
			path := "/api/v1/activity?limit=" + strconv.Itoa(limit)
			if err := opts.client().getJSON(cmd.Context(), path, &entries); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTION\tDETAILS")
			for _, e := range entries.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Format(time.DateTime), e.Action, truncate(e.Detail, 60))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show")
	return cmd
}

func convertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <amount> <currency>",
		Short: "Show the advisory YER equivalent of an amount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"amount": {args[0]}, "currency": {args[1]}}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/reports/convert?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			return printRawJSON(cmd.OutOrStdout(), data)
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports",
	}

	var output string
	debtsCmd := &cobra.Command{
		Use:   "debts",
		Short: "Export outstanding debts as an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/reports/debts.xlsx", nil)
			if err != nil {
				return err
			}
			if output == "" {
				output = "debts_" + time.Now().Format("20060102") + ".xlsx"
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}
	debtsCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default debts_YYYYMMDD.xlsx)")

	exportCmd.AddCommand(debtsCmd)
	return exportCmd
}

func assistantCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistant",
		Short: "Natural-language bookkeeping",
	}

	var execute bool
	proposeCmd := &cobra.Command{
		Use:   "propose <text>",
		Short: "Turn a sentence into a ledger command, optionally executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			proposal, err := client.do(cmd.Context(), http.MethodPost, "/api/v1/assistant/proposals", map[string]string{"text": args[0]})
			if err != nil {
				return err
			}
			if err := printRawJSON(cmd.OutOrStdout(), proposal); err != nil {
				return err
			}
			if !execute {
				return nil
			}

			var command json.RawMessage = proposal
			result, err := client.do(cmd.Context(), http.MethodPost, "/api/v1/assistant/execute", command)
			if err != nil {
				return err
			}
			return printRawJSON(cmd.OutOrStdout(), result)
		},
	}
	proposeCmd.Flags().BoolVar(&execute, "execute", false, "Apply the proposed command")

	cmd.AddCommand(proposeCmd)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRawJSON(w io.Writer, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		_, err = w.Write(data)
		return err
	}
	return printJSON(w, v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
