package main

import (
	"github.com/spf13/cobra"

	"github.com/Gridfuse/gridfuse/internal/service"
)

func newCompileCommand(opts *rootOptions) *cobra.Command {
	var (
		dialectFlag string
		now         string
	)

	cmd := &cobra.Command{
		Use:   "compile <request.json|request.yaml>",
		Short: "Compile a record query with inline fields and print the statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req compileRequest
			if err := decodeFile(args[0], &req); err != nil {
				return err
			}
			for _, f := range req.Fields {
				if err := f.Validate(); err != nil {
					return err
				}
			}

			dialect, err := opts.dialect(dialectFlag)
			if err != nil {
				return err
			}
			calc, err := opts.calculator(now)
			if err != nil {
				return err
			}

			svc := service.NewRecordQueryService(
				&inlineFieldRepository{tableID: req.TableID, fields: req.Fields},
				nil,
				service.NewQueryBuilder(dialect, calc),
				opts.logger,
			)
			stmt, err := svc.Compile(cmd.Context(), &req.RecordQuery)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stmt)
		},
	}

	cmd.Flags().StringVar(&dialectFlag, "dialect", "", "target dialect, postgres or sqlite (default COMPILER_DIALECT)")
	cmd.Flags().StringVar(&now, "now", "", "pin the clock to an RFC 3339 instant")
	return cmd
}
