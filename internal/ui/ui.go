// Package ui renders indexing progress, status and search results for
// the CLI. Output is styled when stdout is a terminal and plain
// otherwise, so piped output stays machine-friendly.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/loreindex/loreindex/internal/index"
	"github.com/loreindex/loreindex/internal/search"
	"github.com/loreindex/loreindex/internal/store"
)

// progressBarWidth is the character width of the reindex progress bar.
const progressBarWidth = 30

// Renderer writes formatted CLI output.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// New creates a renderer for the writer, styled when it is a terminal.
func New(out io.Writer) *Renderer {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, styles: GetStyles(styled)}
}

// NewPlain creates an unstyled renderer, used by tests and --no-color.
func NewPlain(out io.Writer) *Renderer {
	return &Renderer{out: out, styles: GetStyles(false)}
}

// Statusf writes one formatted line.
func (r *Renderer) Statusf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

// Progress renders an in-place reindex progress line.
func (r *Renderer) Progress(p index.Progress) {
	if p.FilesTotal <= 0 {
		return
	}

	pct := float64(p.FilesProcessed) / float64(p.FilesTotal)
	filled := min(int(pct*progressBarWidth), progressBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	line := fmt.Sprintf("\r[%s] %3.0f%% (%d/%d) %s",
		r.styles.Progress.Render(bar), pct*100, p.FilesProcessed, p.FilesTotal,
		r.styles.Dim.Render(truncatePath(p.CurrentFile, 40)))
	_, _ = fmt.Fprint(r.out, line)

	if p.FilesProcessed >= p.FilesTotal {
		_, _ = fmt.Fprintln(r.out)
	}
}

// Summary renders the completion report of a full reindex.
func (r *Renderer) Summary(s *index.Summary) {
	r.Statusf("%s", r.styles.Header.Render("Reindex complete"))
	r.Statusf("  files:    %d indexed, %d unchanged, %d failed",
		s.FilesIndexed, s.FilesSkipped, s.FilesFailed)
	r.Statusf("  chunks:   %d embedded (~%d tokens)", s.ChunksEmbedded, s.Tokens)
	r.Statusf("  cost:     $%.4f", s.Cost)
	r.Statusf("  duration: %s", s.Duration.Round(time.Millisecond))
}

// Status renders index statistics.
func (r *Renderer) Status(stats store.Stats, isIndexing bool) {
	r.Statusf("%s", r.styles.Header.Render("Index status"))
	r.Statusf("  files:  %d", stats.TotalFiles)
	r.Statusf("  chunks: %d", stats.TotalChunks)
	if stats.LastIndexed.IsZero() {
		r.Statusf("  last indexed: never")
	} else {
		r.Statusf("  last indexed: %s", stats.LastIndexed.Format(time.RFC3339))
	}
	r.Statusf("  total cost:   $%.4f", stats.TotalCost)
	if isIndexing {
		r.Statusf("  %s", r.styles.Warning.Render("reindex in progress"))
	}
}

// SearchResults renders ranked hits.
func (r *Renderer) SearchResults(query string, results []search.Result) {
	if len(results) == 0 {
		r.Statusf("No results for %q", query)
		return
	}

	r.Statusf("%s", r.styles.Header.Render(fmt.Sprintf("%d results for %q", len(results), query)))
	for i, res := range results {
		location := res.FilePath
		if res.SectionHeading != "" {
			location += "  " + res.SectionHeading
		}
		r.Statusf("%2d. %s %s", i+1, location,
			r.styles.Dim.Render(fmt.Sprintf("(score %.3f, ~%d tokens)", res.Score, res.TokenCount)))

		for _, line := range previewLines(res.Preview, 2) {
			r.Statusf("     %s", line)
		}
	}
}

// previewLines returns up to n non-empty lines of a preview.
func previewLines(preview string, n int) []string {
	var lines []string
	for _, line := range strings.Split(preview, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

func truncatePath(path string, max int) string {
	if len(path) <= max {
		return path
	}
	return "..." + path[len(path)-max+3:]
}
