package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/walletledger/internal/adapter/http/dto"
)

type globalOptions struct {
	server  string
	tenant  string
	token   string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "walletctl",
		Short:         "Wallet ledger CLI tool",
		Long:          `A command line interface for operating the wallet ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("WALLETCTL_SERVER", "http://localhost:8080"), "Base URL of the wallet ledger API")
	rootCmd.PersistentFlags().StringVar(&opts.tenant, "tenant", os.Getenv("WALLETCTL_TENANT"), "Tenant ID sent as X-Tenant-ID")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("WALLETCTL_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		walletCmd(opts),
		tenantCmd(opts),
		transferCmd(opts),
		tokenCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// apiClient talks to the tenant API.
type apiClient struct {
	baseURL string
	tenant  string
	token   string
	http    *http.Client
}

func (o *globalOptions) client() (*apiClient, error) {
	if o.tenant == "" {
		return nil, fmt.Errorf("--tenant is required")
	}
	return &apiClient{
		baseURL: strings.TrimRight(o.server, "/"),
		tenant:  o.tenant,
		token:   o.token,
		http:    &http.Client{Timeout: o.timeout},
	}, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Tenant-ID", c.tenant)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("%s: %s (status %d)", apiErr.Code, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
