package chunk

import "strings"

// Metadata holds the filter tags attached to every chunk of a file.
// Tags are used only for query-time filtering, never for scoring.
// Empty strings mean "not set".
type Metadata struct {
	FileType   string
	BookID     string
	ChapterID  string
	EntityType string
	EntityName string
}

// FileTypeUnknown is assigned when a path matches no known layout.
const FileTypeUnknown = "unknown"

// Classify derives metadata from a project-relative forward-slash path.
//
// Recognized layouts:
//
//	overview/...                                   -> overview | brainstorm
//	characters/<slug>/...                          -> character
//	world/<category>/<slug>/...                    -> world
//	notes/...                                      -> notes
//	books/<book>/<phase>/...                       -> per-phase types
//	*.json                                         -> config
//
// Classification is best-effort: unmatched paths degrade to FileTypeUnknown
// with no entity binding, never an error.
func Classify(relPath string) Metadata {
	meta := Metadata{FileType: FileTypeUnknown}

	parts := splitPath(relPath)
	if len(parts) == 0 {
		return meta
	}

	switch parts[0] {
	case "overview":
		if parts[len(parts)-1] == "brainstorm.md" {
			meta.FileType = "brainstorm"
		} else {
			meta.FileType = "overview"
		}
		return meta

	case "characters":
		if len(parts) >= 2 {
			meta.EntityName = parts[1]
		}
		if parts[len(parts)-1] == "brainstorm.md" {
			meta.FileType = "brainstorm"
		} else {
			meta.FileType = "character"
			meta.EntityType = "character"
		}
		return meta

	case "world":
		meta.FileType = "world"
		meta.EntityType = "world"
		if len(parts) >= 3 {
			meta.EntityName = parts[len(parts)-2]
		}
		return meta

	case "notes":
		meta.FileType = "notes"
		return meta

	case "books":
		if len(parts) >= 2 {
			classifyBookPath(parts, &meta)
			return meta
		}
	}

	if strings.HasSuffix(relPath, ".json") {
		meta.FileType = "config"
	}

	return meta
}

// classifyBookPath handles books/<book>/<phase>/... layouts.
func classifyBookPath(parts []string, meta *Metadata) {
	meta.BookID = parts[1]
	if len(parts) < 3 {
		return
	}

	switch parts[2] {
	case "overview":
		meta.FileType = "book_overview"
	case "phase-1-seed":
		meta.FileType = "seed"
	case "phase-2-root":
		meta.FileType = "structure"
	case "phase-3-sprout":
		meta.FileType = "character_arc"
		meta.EntityType = "character_arc"
		if len(parts) >= 4 {
			meta.EntityName = parts[3]
		}
	case "phase-4-flourish":
		meta.FileType = "scene_outline"
		meta.EntityType = "scene_outline"
	case "phase-5-bloom":
		meta.FileType = "scene_draft"
		meta.EntityType = "scene_draft"
		if len(parts) >= 4 {
			meta.ChapterID = parts[3]
		}
		if len(parts) >= 5 {
			scene := strings.TrimSuffix(parts[4], ".md")
			meta.EntityName = parts[3] + "-" + scene
		}
	case "front-matter":
		meta.FileType = "front_matter"
	case "back-matter":
		meta.FileType = "back_matter"
	case "notes":
		meta.FileType = "notes"
	}
}

func splitPath(relPath string) []string {
	var parts []string
	for _, p := range strings.Split(strings.ReplaceAll(relPath, "\\", "/"), "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
