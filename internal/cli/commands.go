package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go-inventory-pos/internal/clock"
	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/seed"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/pkg/jwt"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			if err := repository.AutoMigrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Schema up to date")
			return nil
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then create default privileges, roles and the admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			if err := repository.AutoMigrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := seed.Run(ctx(cmd), e.db, e.log); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded (admin: %s)\n", seed.AdminEmail)
			return nil
		},
	}
}

// NewLogsCommand creates the logs command.
func NewLogsCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent audit log entries",
		Long: `Print the audit log, newest first.

Examples:
  posctl logs --limit 20
  posctl logs --driver sqlite --dsn ./inventory.db --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			inv := service.NewInventoryService(
				repository.NewProductRepo(e.db),
				repository.NewLogRepo(e.db),
				clock.NewMonotonic(nil),
				events.NewBus(),
				e.log,
				service.EngineOptions{TxTimeout: e.cfg.TxTimeout, MaxAttempts: e.cfg.TxMaxAttempts},
			)
			logs, err := inv.GetLogs(ctx(cmd), limit)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), logs)
			}
			return printLogs(cmd.OutOrStdout(), logs, e.cfg.Location())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", service.DefaultLogLimit, "number of entries")
	return cmd
}

func printLogs(w io.Writer, logs []model.LogEntry, loc *time.Location) error {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No log entries")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tUSER\tITEMS\tDETAILS")
	for _, l := range logs {
		items := make([]string, len(l.Items))
		for i, it := range l.Items {
			items[i] = fmt.Sprintf("%s %+d", it.ProductName, it.QuantityChange)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			l.Timestamp.In(loc).Format("2006-01-02 15:04:05"), l.Type, l.UserName, strings.Join(items, ", "), l.Details)
	}
	return tw.Flush()
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			dash := service.NewDashboardService(
				repository.NewProductRepo(e.db),
				repository.NewLogRepo(e.db),
				repository.NewExpenseRepo(e.db),
				e.log,
				service.DashboardOptions{
					Location:          e.cfg.Location(),
					LowStockThreshold: e.cfg.LowStockThreshold,
					ExpiryWindow:      e.cfg.ExpiryWindow(),
					TopSellingLimit:   e.cfg.TopSellingLimit,
				},
			)
			stats, err := dash.GetDashboardStats(ctx(cmd))
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}
}

func printStats(w io.Writer, s *service.DashboardStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Products\t%d\n", s.TotalProducts)
	fmt.Fprintf(tw, "Low stock\t%d\n", s.LowStockCount)
	fmt.Fprintf(tw, "Units (stock/shop)\t%d/%d\n", s.StockUnits, s.ShopUnits)
	fmt.Fprintf(tw, "Valuation\t%s\n", s.TotalValuation.StringFixed(2))
	fmt.Fprintf(tw, "Revenue (all time)\t%s\n", s.TotalRevenue.StringFixed(2))
	fmt.Fprintf(tw, "Today sold/returned\t%d/%d\n", s.Today.ItemsSold, s.Today.ItemsReturned)
	fmt.Fprintf(tw, "Today net revenue\t%s\n", s.Today.NetRevenue.StringFixed(2))
	for i, p := range s.TopSelling {
		fmt.Fprintf(tw, "Top %d\t%s (%d)\n", i+1, p.ProductName, p.UnitsSold)
	}
	for _, p := range s.Expiring {
		fmt.Fprintf(tw, "Expiring\t%s in %d days\n", p.Name, p.DaysLeft)
	}
	return tw.Flush()
}

// NewRevokeCommand creates the revoke-sessions command. It replaces any
// token the user holds, e.g. after a lost device.
func NewRevokeCommand(opts *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "revoke-sessions",
		Short: "Invalidate every token issued to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			auth := service.NewAuthService(
				repository.NewUserRepo(e.db),
				jwt.NewSigner(e.cfg.JWTSecret, e.cfg.JWTTTL()),
				events.NewBus(),
				e.log,
			)
			if err := auth.RevokeSessions(ctx(cmd), email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Sessions revoked for %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", seed.AdminEmail, "user email")
	return cmd
}

func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
