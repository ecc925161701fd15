package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loreindex/loreindex/internal/index"
	"github.com/loreindex/loreindex/internal/store"
	"github.com/loreindex/loreindex/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index every document in the project",
		Long: `Index walks the project tree and (re)indexes every markdown
document. Files whose content hash is unchanged are skipped, so rerunning
after small edits only embeds what actually changed.

Examples:
  loreindex index
  loreindex index --project ~/writing/neon-city
  loreindex index --offline`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Use deterministic offline embeddings (no credential needed)")

	return cmd
}

func runIndex(cmd *cobra.Command, offline bool) error {
	root, cfg, err := loadProject()
	if err != nil {
		return err
	}

	client, err := newEmbedClient(cfg, offline)
	if err != nil {
		return err
	}

	st, err := store.Open(root)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	renderer := ui.New(cmd.OutOrStdout())
	runner := index.NewRunner(
		index.New(root, st, client),
		index.WithProgress(renderer.Progress),
	)

	summary, err := runner.Reindex(cmd.Context())
	if err != nil {
		return err
	}

	renderer.Summary(summary)
	return nil
}
