package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loreindex/loreindex/internal/store"
	"github.com/loreindex/loreindex/internal/ui"
)

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Wipe the index, including the cost ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := resolveProjectRoot()
			if err != nil {
				return err
			}

			st, err := store.Open(root)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Clear(cmd.Context()); err != nil {
				return err
			}

			ui.New(cmd.OutOrStdout()).Statusf("Index cleared.")
			return nil
		},
	}
}
