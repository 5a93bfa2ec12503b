package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gridfuse/gridfuse/internal/database"
	"github.com/Gridfuse/gridfuse/internal/repository"
	"github.com/Gridfuse/gridfuse/internal/service"
)

func newApplyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <schema.json|schema.yaml>",
		Short: "Create a record table and store its field metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var schema tableSchema
			if err := decodeFile(args[0], &schema); err != nil {
				return err
			}
			if err := schema.Validate(); err != nil {
				return err
			}

			dialect, err := database.DialectOf(opts.cfg.Database.Driver)
			if err != nil {
				return err
			}
			db, err := database.Connect(&opts.cfg.Database, opts.cfg.Tracing.Enabled)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := database.InitializeDatabase(ctx, db, dialect); err != nil {
				return err
			}
			if err := database.CreateRecordTable(ctx, db, dialect, schema.TableID, service.RecordIDColumn, schema.Fields); err != nil {
				return err
			}

			fieldRepo := repository.NewSQLFieldRepository(db, dialect, 0)
			defer fieldRepo.Close()
			for i, f := range schema.Fields {
				if err := fieldRepo.Save(ctx, schema.TableID, i, f); err != nil {
					return err
				}
			}

			opts.logger.WithFields(map[string]interface{}{
				"table_id": schema.TableID,
				"fields":   len(schema.Fields),
				"dialect":  dialect,
			}).Info("Applied table schema")
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s (%d fields)\n", schema.TableID, len(schema.Fields))
			return nil
		},
	}
}
