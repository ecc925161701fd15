package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loreindex/loreindex/internal/index"
	"github.com/loreindex/loreindex/internal/store"
	"github.com/loreindex/loreindex/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	st, err := store.Open(root)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}

	// The shared indexing lock doubles as the cross-process
	// "is indexing" signal: if it cannot be taken, a reindex is running.
	indexing := false
	lock := index.NewLock(root)
	if locked, err := lock.TryLock(); err == nil {
		if locked {
			_ = lock.Unlock()
		} else {
			indexing = true
		}
	}

	ui.New(cmd.OutOrStdout()).Status(stats, indexing)
	return nil
}
