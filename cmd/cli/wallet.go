package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/walletledger/internal/adapter/http/dto"
)

func walletCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	cmd.AddCommand(walletGetCmd(opts), walletListCmd(opts), walletReconcileCmd(opts))
	return cmd
}

func walletGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <wallet-id>",
		Short: "Show a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			var wallet dto.WalletResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/wallets/"+url.PathEscape(args[0]), nil, nil, &wallet); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), wallet)
		},
	}
}

func walletListCmd(opts *globalOptions) *cobra.Command {
	var (
		walletType string
		status     string
		ownerID    string
		limit      int
		offset     int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tenant's wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			q := url.Values{}
			if walletType != "" {
				q.Set("type", walletType)
			}
			if status != "" {
				q.Set("status", status)
			}
			if ownerID != "" {
				q.Set("owner_id", ownerID)
			}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			var page dto.ListWalletsResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/wallets", q, nil, &page); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), page)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tOWNER\tSTATUS\tBALANCE\tPENDING")
			for _, w := range page.Wallets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
					w.ID, w.Type, truncate(w.OwnerID, 24), w.Status, w.Balance, w.PendingBalance)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d wallets\n", len(page.Wallets), page.Pagination.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&walletType, "type", "", "Filter by wallet type")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&ownerID, "owner", "", "Filter by owner ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")
	return cmd
}

func walletReconcileCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <wallet-id>",
		Short: "Replay a wallet's ledger against its stored balance",
		Long:  "Replay a wallet's ledger against its stored balance. Exits non-zero when the wallet has drifted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			var report dto.ReconciliationResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/wallets/"+url.PathEscape(args[0])+"/reconciliation", nil, nil, &report); err != nil {
				return err
			}

			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Consistent {
				return fmt.Errorf("wallet %s drifted by %d (pending %d)", report.WalletID, report.Drift, report.PendingDrift)
			}
			return nil
		},
	}
}

func tenantCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Tenant-wide operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Check every wallet of the tenant for drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			var report dto.TenantReconciliationResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/reconciliation", nil, nil, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tenant: %s\n", report.TenantID)
			fmt.Fprintf(out, "Wallets checked: %d\n", report.WalletsChecked)
			fmt.Fprintf(out, "Total stored balance: %s\n", report.TotalStoredBalance.String())
			if len(report.Discrepancies) == 0 {
				fmt.Fprintln(out, "Consistency check PASSED")
				return nil
			}

			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  %s drift=%d pending_drift=%d first_divergent=%s\n",
					d.WalletID, d.Drift, d.PendingDrift, d.FirstDivergentEntryID)
			}
			return fmt.Errorf("consistency check FAILED: %d wallet(s) drifted", len(report.Discrepancies))
		},
	})
	return cmd
}

func transferCmd(opts *globalOptions) *cobra.Command {
	var (
		from        string
		to          string
		amount      string
		key         string
		description string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between two wallets of the tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			req := dto.CreateTransferRequest{
				FromWalletID:   from,
				ToWalletID:     to,
				Amount:         amt,
				IdempotencyKey: key,
				Description:    description,
			}

			var resp dto.TransferResponse
			if err := client.do(cmd.Context(), http.MethodPost, "/transfers", nil, req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source wallet ID")
	cmd.Flags().StringVar(&to, "to", "", "Destination wallet ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in minor units")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
