package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"eventreg/internal/audit"
	"eventreg/internal/platform/database"
	"eventreg/internal/registration/export"
	"eventreg/internal/registration/report"
	"eventreg/internal/registration/service"
	"eventreg/internal/registration/store"
	"eventreg/internal/registration/validation"
	id "eventreg/pkg/domain"
	"eventreg/pkg/platform/middleware/auth"
	"eventreg/pkg/requestcontext"
)

func exportCmd(load configLoader) *cobra.Command {
	var (
		department string
		day        string
		out        string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write registrations as a semicolon-delimited CSV",
		Long: `Export registrations straight from the database with the same encoder the
dashboard download uses.

Examples:
  # Everything, to inscricoes_<date>.csv in the current directory
  regctl export

  # One department and day to stdout
  regctl export --departamento TI --dia 2025-01-16 --out -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			filter, err := report.ParseFilter(cfg.Catalog, department, day)
			if err != nil {
				return err
			}
			if cfg.InMemory() {
				return errors.New("database.url is not configured")
			}

			ctx := cmd.Context()
			pool, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close() //nolint:errcheck // command exit

			validator, err := validation.New(cfg.Catalog)
			if err != nil {
				return err
			}
			loc, err := cfg.ExportLocation()
			if err != nil {
				return err
			}
			encoderOpts := []export.Option{export.WithLocation(loc)}
			if cfg.Export.LegacyQuoting {
				encoderOpts = append(encoderOpts, export.WithLegacyQuoting())
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			auditor := audit.NewPublisher(audit.NewPostgresStore(pool.DB()), audit.WithPublisherLogger(logger))
			defer auditor.Close()

			svc := service.New(store.NewPostgres(pool.DB()), validator, logger,
				service.WithAuditPublisher(auditor),
				service.WithEncoder(export.New(encoderOpts...)),
			)

			ctx = requestcontext.WithStaff(ctx, requestcontext.Staff{
				ID:    id.StaffID(uuid.New()),
				Email: actor,
				Role:  auth.RoleAdmin,
			})
			result, err := svc.Export(ctx, filter)
			if err != nil {
				return err
			}

			if out == "" {
				out = result.FileName
			}
			if err := writeOutput(cmd.OutOrStdout(), out, result.Content); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d registrations written to %s\n", result.Rows, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&department, "departamento", "", "Only this department")
	cmd.Flags().StringVar(&day, "dia", "", "Only this participation day (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&out, "out", "o", "", `Output file, "-" for stdout (defaults to inscricoes_<date>.csv)`)
	cmd.Flags().StringVar(&actor, "actor", "regctl", "Name recorded in the audit trail")
	return cmd
}

func writeOutput(stdout io.Writer, path string, content []byte) error {
	if path == "-" {
		_, err := stdout.Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
