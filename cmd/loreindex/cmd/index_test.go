package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreindex/loreindex/internal/store"
)

const aliceProfile = `---
name: Alice Vane
role: protagonist
---

# Alice Vane

## Background

Alice grew up in the flooded lower wards of Neo-Detroit, raised by the
courier collective after the evacuation.

## Voice

Short sentences. Dry humor under pressure.
`

const neoDetroitOverview = `# Neo-Detroit

## Geography

A coastal arc of seawalls and stilt districts. The old downtown is
permanently flooded below the third floor.
`

func TestIndexCmd_Offline_IndexesProject(t *testing.T) {
	// Given: a project with two documents
	root := t.TempDir()
	writeProjectFile(t, root, "characters/alice/profile.md", aliceProfile)
	writeProjectFile(t, root, "world/places/neo-detroit/overview.md", neoDetroitOverview)

	// When: running index --offline
	output, err := execute(t, "index", "--offline", "--project", root)

	// Then: both files should be indexed and the summary printed
	require.NoError(t, err)
	assert.Contains(t, output, "Reindex complete")
	assert.Contains(t, output, "2 indexed")

	// And: the store should hold their chunks
	st, err := store.Open(root)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Greater(t, stats.TotalChunks, 2)
}

func TestIndexCmd_Offline_SecondRunSkipsUnchanged(t *testing.T) {
	// Given: a project indexed once
	root := t.TempDir()
	writeProjectFile(t, root, "notes/ideas.md", "# Ideas\n\nA note.\n")

	_, err := execute(t, "index", "--offline", "--project", root)
	require.NoError(t, err)

	// When: indexing again without edits
	output, err := execute(t, "index", "--offline", "--project", root)

	// Then: nothing should be re-embedded
	require.NoError(t, err)
	assert.Contains(t, output, "0 indexed")
	assert.Contains(t, output, "1 unchanged")
}

func TestIndexCmd_WithoutCredential_FailsWithGuidance(t *testing.T) {
	// Given: a project with no search configuration
	root := t.TempDir()
	writeProjectFile(t, root, "notes/ideas.md", "# Ideas\n")

	// When: running index without --offline
	_, err := execute(t, "index", "--project", root)

	// Then: it should explain how to enable search
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
	assert.Contains(t, err.Error(), "--offline")
}

func TestClearCmd_WipesIndex(t *testing.T) {
	// Given: an indexed project
	root := t.TempDir()
	writeProjectFile(t, root, "notes/ideas.md", "# Ideas\n\nA note.\n")

	_, err := execute(t, "index", "--offline", "--project", root)
	require.NoError(t, err)

	// When: clearing the index
	output, err := execute(t, "clear", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, output, "Index cleared")

	// Then: the store should be empty but the database file remain
	st, err := store.Open(root)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFiles)
	assert.Equal(t, 0, stats.TotalChunks)

	_, statErr := os.Stat(filepath.Join(root, store.DataDirName, store.DBFileName))
	assert.NoError(t, statErr, "Clear should keep the database file")
}
