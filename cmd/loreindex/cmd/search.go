package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loreindex/loreindex/internal/search"
	"github.com/loreindex/loreindex/internal/store"
	"github.com/loreindex/loreindex/internal/ui"
)

// searchOptions holds the CLI flags for search.
type searchOptions struct {
	max         int
	entityTypes []string
	book        string
	excludes    []string
	format      string
	offline     bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find the most similar indexed chunks",
		Long: `Search embeds the query and ranks every indexed chunk by cosine
similarity, after applying the metadata filters.

Examples:
  loreindex search "who raised Alice"
  loreindex search "flooded districts" --entity-type world --max 5
  loreindex search "act two reversal" --book 01 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.max, "max", "n", 0, "Maximum results (default from config)")
	cmd.Flags().StringSliceVarP(&opts.entityTypes, "entity-type", "t", nil, "Keep only these entity types (repeatable)")
	cmd.Flags().StringVarP(&opts.book, "book", "b", "", "Keep only chunks scoped to this book id")
	cmd.Flags().StringSliceVarP(&opts.excludes, "exclude", "x", nil, "Extra exclusion patterns (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use deterministic offline embeddings")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	root, cfg, err := loadProject()
	if err != nil {
		return err
	}

	client, err := newEmbedClient(cfg, opts.offline)
	if err != nil {
		return err
	}

	st, err := store.Open(root)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	maxResults := opts.max
	if maxResults <= 0 {
		maxResults = cfg.Search.MaxResults
	}

	engine := search.New(st, client)
	results, err := engine.Search(cmd.Context(), query, search.Options{
		MaxResults:  maxResults,
		EntityTypes: opts.entityTypes,
		BookID:      opts.book,
		Excluded:    excludedMatcher(cfg, opts.excludes),
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	ui.New(cmd.OutOrStdout()).SearchResults(query, results)
	return nil
}
