package main

import (
	"github.com/spf13/cobra"

	"github.com/Gridfuse/gridfuse/internal/database"
	"github.com/Gridfuse/gridfuse/internal/repository"
	"github.com/Gridfuse/gridfuse/internal/service"
)

func newQueryCommand(opts *rootOptions) *cobra.Command {
	var now string

	cmd := &cobra.Command{
		Use:   "query <request.json|request.yaml>",
		Short: "Run a record query against the configured database and print matching ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req compileRequest
			if err := decodeFile(args[0], &req); err != nil {
				return err
			}

			dialect, err := database.DialectOf(opts.cfg.Database.Driver)
			if err != nil {
				return err
			}
			calc, err := opts.calculator(now)
			if err != nil {
				return err
			}

			db, err := database.Connect(&opts.cfg.Database, opts.cfg.Tracing.Enabled)
			if err != nil {
				return err
			}
			defer db.Close()

			fieldRepo := repository.NewSQLFieldRepository(db, dialect, opts.cfg.Compiler.FieldCacheTTL)
			defer fieldRepo.Close()

			svc := service.NewRecordQueryService(
				fieldRepo,
				repository.NewSQLRecordRepository(db, dialect),
				service.NewQueryBuilder(dialect, calc),
				opts.logger,
			)
			result, err := svc.Query(cmd.Context(), &req.RecordQuery)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&now, "now", "", "pin the clock to an RFC 3339 instant")
	return cmd
}
