// Package chunk splits project documents into embeddable chunks.
//
// Chunking is a pure function of (content, path): identical inputs always
// produce identical chunk boundaries and hashes. The indexer relies on this
// determinism for change detection.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Chunking thresholds, in estimated tokens.
const (
	// MaxSectionTokens is the high-water mark above which a heading section
	// is split further at paragraph boundaries.
	MaxSectionTokens = 1000

	// TargetChunkTokens is the target size for paragraph-boundary chunks.
	TargetChunkTokens = 500

	// OverlapTokens is the maximum overlap carried from the tail of one
	// sub-chunk into the next to preserve continuity across a split.
	OverlapTokens = 50

	// PreviewLength is the maximum preview size in bytes.
	PreviewLength = 200
)

// frontMatterDelimiter marks the start and end of a front-matter block.
const frontMatterDelimiter = "---"

// Chunk is a contiguous, independently-embeddable span of a document.
type Chunk struct {
	// Index is the zero-based position of the chunk within its file.
	Index int

	// SectionHeading is the "## " heading line this chunk belongs to.
	// Empty for front-matter and heading-less documents.
	SectionHeading string

	// Content is the full chunk text, heading included.
	Content string

	// ContentHash is the SHA-256 hex digest of Content, used purely for
	// change detection.
	ContentHash string

	// Preview is a short excerpt for display in search results.
	Preview string

	// TokenCount is a rough token estimate of Content.
	TokenCount int

	// Metadata carries the filter tags derived from path and front-matter.
	Metadata Metadata
}

// Split chunks a document into an ordered sequence of chunks.
//
// Rules:
//  1. A leading front-matter block becomes its own chunk (no heading).
//  2. Each "## " heading section becomes a candidate chunk, heading prefixed.
//  3. Sections above MaxSectionTokens are split at paragraph boundaries.
//  4. Documents without headings are split at paragraph boundaries directly.
//
// Empty or whitespace-only chunks are dropped; indices are contiguous in
// final order. Split never fails: unparseable input yields zero chunks.
func Split(content, relPath string) []Chunk {
	var chunks []Chunk
	index := 0

	frontMatter, body := splitFrontMatter(content)
	meta := applyFrontMatter(frontMatter, Classify(relPath))

	if frontMatter != "" {
		fmContent := fmt.Sprintf("%s\n%s\n%s", frontMatterDelimiter, strings.TrimSpace(frontMatter), frontMatterDelimiter)
		chunks = append(chunks, makeChunk(index, "", fmContent, meta))
		index++
	}

	sections := splitByHeadings(body)
	if len(sections) == 0 {
		return chunks
	}

	hasHeadings := false
	for _, sec := range sections {
		if sec.heading != "" {
			hasHeadings = true
			break
		}
	}

	if !hasHeadings {
		fullBody := strings.TrimSpace(body)
		if fullBody == "" {
			return chunks
		}
		for _, sub := range splitAtParagraphs(fullBody, TargetChunkTokens, OverlapTokens) {
			if strings.TrimSpace(sub) == "" {
				continue
			}
			chunks = append(chunks, makeChunk(index, "", strings.TrimSpace(sub), meta))
			index++
		}
		return chunks
	}

	for _, sec := range sections {
		if strings.TrimSpace(sec.content) == "" {
			continue
		}

		if EstimateTokens(sec.content) > MaxSectionTokens {
			for _, sub := range splitAtParagraphs(sec.content, TargetChunkTokens, OverlapTokens) {
				if strings.TrimSpace(sub) == "" {
					continue
				}
				// Prepend the heading so each sub-chunk is usable context
				// on its own.
				chunks = append(chunks, makeChunk(index, sec.heading, joinHeading(sec.heading, sub), meta))
				index++
			}
			continue
		}

		chunks = append(chunks, makeChunk(index, sec.heading, joinHeading(sec.heading, sec.content), meta))
		index++
	}

	return chunks
}

// HashContent returns the SHA-256 hex digest of content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// EstimateTokens returns a rough token estimate (~4 chars per token).
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func makeChunk(index int, heading, content string, meta Metadata) Chunk {
	return Chunk{
		Index:          index,
		SectionHeading: heading,
		Content:        content,
		ContentHash:    HashContent(content),
		Preview:        preview(content),
		TokenCount:     EstimateTokens(content),
		Metadata:       meta,
	}
}

func preview(content string) string {
	if len(content) <= PreviewLength {
		return content
	}
	cut := PreviewLength
	// Back up to a rune boundary so the preview stays valid UTF-8.
	for cut > 0 && content[cut]&0xC0 == 0x80 {
		cut--
	}
	return content[:cut] + "..."
}

func joinHeading(heading, text string) string {
	trimmed := strings.TrimSpace(text)
	if heading == "" {
		return trimmed
	}
	return heading + "\n\n" + trimmed
}

// splitFrontMatter separates a leading front-matter block from the body.
// Returns ("", content) when no complete block is present.
func splitFrontMatter(content string) (frontMatter, body string) {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(trimmed, frontMatterDelimiter) {
		return "", content
	}

	rest := trimmed[len(frontMatterDelimiter):]
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return "", content
	}

	return rest[:end], rest[end+1+len(frontMatterDelimiter):]
}

// section is a heading-delimited span of the document body.
type section struct {
	heading string // the full "## Title" line, empty before the first heading
	content string
}

// splitByHeadings splits the body on second-level headings. Content before
// the first heading becomes a heading-less section.
func splitByHeadings(body string) []section {
	var sections []section
	var current section
	var builder strings.Builder

	flush := func() {
		current.content = builder.String()
		if current.heading != "" || strings.TrimSpace(current.content) != "" {
			sections = append(sections, current)
		}
		builder.Reset()
	}

	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			current = section{heading: line}
			continue
		}
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	flush()

	return sections
}

// splitAtParagraphs splits text at blank-line boundaries, targeting
// targetTokens per chunk. When a paragraph fits the overlap budget it is
// carried into the next chunk for continuity.
func splitAtParagraphs(text string, targetTokens, overlapTokens int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		if currentTokens+paraTokens > targetTokens && current.Len() > 0 {
			flushed := current.String()
			chunks = append(chunks, flushed)
			current.Reset()
			currentTokens = 0
			if tail := lastParagraph(flushed); EstimateTokens(tail) <= overlapTokens {
				current.WriteString(tail)
				currentTokens = EstimateTokens(tail)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// lastParagraph returns the final blank-line-delimited paragraph of text.
func lastParagraph(text string) string {
	if i := strings.LastIndex(text, "\n\n"); i >= 0 {
		return text[i+2:]
	}
	return text
}

// applyFrontMatter overlays front-matter key/value pairs onto path-derived
// metadata. Front-matter values take precedence.
func applyFrontMatter(frontMatter string, base Metadata) Metadata {
	meta := base
	if frontMatter == "" {
		return meta
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(frontMatter, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	if t, ok := fields["type"]; ok {
		meta.EntityType = t
	}
	if n, ok := fields["name"]; ok {
		meta.EntityName = strings.ReplaceAll(strings.ToLower(n), " ", "-")
	}
	if s, ok := fields["scope"]; ok && strings.HasPrefix(s, "book-") {
		meta.BookID = s
	}

	return meta
}
