package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gridfuse/gridfuse/internal/filter"
)

func newOperatorsCommand(opts *rootOptions) *cobra.Command {
	var (
		dialectFlag string
		kinds       []string
	)

	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List the operators supported per field kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect, err := opts.dialect(dialectFlag)
			if err != nil {
				return err
			}
			calc, err := opts.calculator("")
			if err != nil {
				return err
			}

			wanted := map[filter.AdapterKind]bool{}
			for _, k := range kinds {
				wanted[filter.AdapterKind(k)] = true
			}

			table := filter.NewRegistry(calc).OperatorTable(dialect)
			for _, kind := range filter.SortedKinds(table) {
				if len(wanted) > 0 && !wanted[kind] {
					continue
				}
				names := make([]string, len(table[kind]))
				for i, op := range table[kind] {
					names[i] = string(op)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s%s\n", kind, strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dialectFlag, "dialect", "", "target dialect, postgres or sqlite (default COMPILER_DIALECT)")
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "only list these field kinds")
	return cmd
}
