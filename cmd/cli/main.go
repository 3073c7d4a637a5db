package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mymoolah/walletcore/internal/infrastructure/auth"
)

// errInconsistent makes the process exit non-zero when a check fails.
var errInconsistent = errors.New("check failed")

type options struct {
	baseURL string
	timeout time.Duration
	token   string
	userID  string
	role    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "walletctl",
		Short:        "Wallet core operations CLI",
		Long:         `A command line interface for operating the wallet core API: ledger checks, movements, fees and sweeps.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("WALLETCORE_URL", "http://localhost:8080"), "Base URL of the wallet core API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.token, "token", os.Getenv("WALLETCORE_TOKEN"), "Bearer token")
	flags.StringVar(&opts.userID, "user", envOr("WALLETCORE_USER", "ops-cli"), "Caller identity when auth is disabled")
	flags.StringVar(&opts.role, "role", string(auth.RoleAdmin), "Caller role when auth is disabled")

	rootCmd.AddCommand(
		ledgerCmd(opts),
		movementCmd(opts),
		feeCmd(opts),
		sweepCmd(opts),
		outboxCmd(opts),
		tokenCmd(),
	)
	return rootCmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "ledger", Short: "Ledger operations"}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that every journal entry balances",
		RunE: func(c *cobra.Command, _ []string) error {
			return check(c, opts, "/api/v1/ledger/consistency", "Consistency")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Compare wallet balances with the user wallets control account",
		RunE: func(c *cobra.Command, _ []string) error {
			return check(c, opts, "/api/v1/ledger/reconciliation", "Reconciliation")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance",
		RunE: func(c *cobra.Command, _ []string) error {
			return get(c, opts, "/api/v1/ledger/trial-balance")
		},
	})
	return cmd
}

func movementCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "movement", Short: "Inspect and cancel money movements"}

	cmd.AddCommand(&cobra.Command{
		Use:   "status <reference>",
		Short: "Show the status of a movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return get(c, opts, "/api/v1/movements/"+url.PathEscape(args[0])+"/status")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "taxes <reference>",
		Short: "List the tax lines of a movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return get(c, opts, "/api/v1/movements/"+url.PathEscape(args[0])+"/taxes")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <reference>",
		Short: "Cancel a pending movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return post(c, opts, "/api/v1/movements/"+url.PathEscape(args[0])+"/cancel", nil)
		},
	})
	return cmd
}

func feeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "fee", Short: "Fee operations"}

	var supplier, service, amount string
	quote := &cobra.Command{
		Use:   "quote",
		Short: "Quote the fee for a service",
		RunE: func(c *cobra.Command, _ []string) error {
			body := map[string]string{
				"supplier_code": supplier,
				"service_type":  service,
				"amount":        amount,
			}
			return post(c, opts, "/api/v1/fees/quote", body)
		},
	}
	quote.Flags().StringVar(&supplier, "supplier", "MYMOOLAH", "Supplier code")
	quote.Flags().StringVar(&service, "service", "", "Service type")
	quote.Flags().StringVar(&amount, "amount", "", "Amount in rand, e.g. 100.00")
	_ = quote.MarkFlagRequired("service")
	_ = quote.MarkFlagRequired("amount")

	cmd.AddCommand(quote)
	return cmd
}

func sweepCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "sweep", Short: "Run background sweeps on demand"}

	cmd.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Expire overdue vouchers and requests to pay",
		RunE: func(c *cobra.Command, _ []string) error {
			return post(c, opts, "/api/v1/admin/sweeps/expire", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "recover",
		Short: "Re-poll movements stuck in processing",
		RunE: func(c *cobra.Command, _ []string) error {
			return post(c, opts, "/api/v1/admin/sweeps/recover", nil)
		},
	})
	return cmd
}

func outboxCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "outbox", Short: "Outbox operations"}
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Relay one batch of pending outbox events",
		RunE: func(c *cobra.Command, _ []string) error {
			return post(c, opts, "/api/v1/admin/outbox/flush", nil)
		},
	})
	return cmd
}

func tokenCmd() *cobra.Command {
	var secret, userID, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed token for an operator",
		RunE: func(c *cobra.Command, _ []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			r := auth.Role(role)
			if !r.Satisfies(auth.RoleUser) {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(userID, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret shared with the server")
	cmd.Flags().StringVar(&userID, "subject", "ops-cli", "User ID carried by the token")
	cmd.Flags().StringVar(&role, "grant", string(auth.RoleOperator), "Role carried by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

// check GETs a pass/fail endpoint; 409 means the check ran and failed.
func check(c *cobra.Command, opts *options, path, name string) error {
	status, body, err := opts.do(c.Context(), http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	out := c.OutOrStdout()
	switch status {
	case http.StatusOK:
		fmt.Fprintf(out, "%s check PASSED\n", name)
		printJSON(out, body)
		return nil
	case http.StatusConflict:
		fmt.Fprintf(out, "%s check FAILED\n", name)
		printJSON(out, body)
		return fmt.Errorf("%s: %w", strings.ToLower(name), errInconsistent)
	default:
		return httpError(http.MethodGet, path, status, body)
	}
}

func get(c *cobra.Command, opts *options, path string) error {
	return call(c, opts, http.MethodGet, path, nil)
}

func post(c *cobra.Command, opts *options, path string, payload any) error {
	return call(c, opts, http.MethodPost, path, payload)
}

func call(c *cobra.Command, opts *options, method, path string, payload any) error {
	status, body, err := opts.do(c.Context(), method, path, payload)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return httpError(method, path, status, body)
	}
	printJSON(c.OutOrStdout(), body)
	return nil
}

func (o *options) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(o.baseURL, "/")+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	} else {
		req.Header.Set("X-User-ID", o.userID)
		req.Header.Set("X-User-Role", o.role)
	}

	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func httpError(method, path string, status int, body []byte) error {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := truncate(strings.TrimSpace(string(body)), 200)
	if json.Unmarshal(body, &e) == nil && (e.Message != "" || e.Error != "") {
		msg = e.Error
		if e.Message != "" {
			msg = e.Message
		}
	}
	return fmt.Errorf("%s %s: http %d: %s", method, path, status, msg)
}

// printJSON indents a JSON body, or prints it as-is when it is not JSON.
func printJSON(w io.Writer, body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Fprintln(w, string(body))
		return
	}
	fmt.Fprintln(w, buf.String())
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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
