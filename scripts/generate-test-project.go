//go:build ignore

// Package main generates a synthetic writing project for benchmarking
// the indexer and search at scale.
// Usage: go run scripts/generate-test-project.go -characters 50 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numCharacters = flag.Int("characters", 50, "Number of character profiles to generate")
	numPlaces     = flag.Int("places", 30, "Number of world entries to generate")
	numChapters   = flag.Int("chapters", 20, "Number of chapter outlines per book")
	numBooks      = flag.Int("books", 2, "Number of books")
	outputDir     = flag.String("output", "testdata/bench", "Output directory")
	seed          = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var profileTemplate = `---
name: %s
role: %s
status: active
---

# %s

## Background

%s was born in %s and came of age during the %s. Years of %s left
their mark; most who meet %s notice the %s first.

## Personality

%s. Under pressure this hardens into %s, which has cost %s more than
one friendship.

## Relationships

Closest to %s, strained with %s. The debt owed to %s remains unspoken.

## Voice

%s
`

var placeTemplate = `# %s

## Geography

%s sits %s, shaped by %s. Travelers arrive by %s.

## History

Founded during the %s, it survived the %s largely intact. The %s
quarter still bears the scars.

## Current Tensions

%s
`

var outlineTemplate = `# Chapter %d: %s

## Goal

%s must %s before %s.

## Scenes

- Opening at %s, establishing %s.
- Midpoint reversal: %s.
- Closing image: %s.

## Notes

Keep the %s thread visible but quiet.
`

var premiseTemplate = `# Premise

## Logline

When %s threatens %s, %s must %s or lose %s forever.

## Themes

%s against %s. The cost of %s.
`

// Word pools for generating varied story material.
var (
	firstNames = []string{
		"Alice", "Bram", "Cato", "Dessa", "Edan", "Fenn", "Greta", "Halim",
		"Iris", "Joren", "Kestrel", "Lio", "Mara", "Noor", "Okra", "Piers",
		"Quinn", "Ren", "Sable", "Tamsin", "Ulla", "Vane", "Wren", "Xan",
	}
	surnames = []string{
		"Vane", "Reyes", "Okonkwo", "Strand", "Miro", "Calloway", "Teague",
		"Inoue", "Bellweather", "Ashdown", "Ferro", "Quist", "Moreno",
	}
	roles = []string{
		"protagonist", "antagonist", "mentor", "rival", "confidant", "wildcard",
	}
	placeNames = []string{
		"Neo-Detroit", "the Saltmarsh Exchange", "Candlewick Row", "the Verge",
		"Ironhaven", "the Sunken Library", "Marrow Street", "the Tidewalls",
		"Gloam Harbor", "the Ninth Terrace", "Cinderfall", "the Long Stairs",
	}
	events = []string{
		"the evacuation", "the flood years", "the grain strikes", "the long blackout",
		"the border collapse", "the quiet plague", "the seawall breach",
	}
	trades = []string{
		"salvage work", "courier runs", "archive keeping", "smuggling",
		"seawall repair", "translation", "cartography",
	}
	traits = []string{
		"steady hands", "a ledger-keeper's memory", "an easy laugh",
		"a habit of counting exits", "salt-bleached hair", "a dockworker's patience",
	}
	temperaments = []string{
		"Generous to a fault", "Wary of strangers", "Relentlessly curious",
		"Slow to anger and slower to forgive", "Loyal past the point of sense",
	}
	flaws = []string{
		"stubbornness", "secrecy", "recklessness", "cold calculation", "self-erasure",
	}
	voices = []string{
		"Short sentences. Dry humor under pressure.",
		"Formal, almost archaic phrasing; never contracts.",
		"Rambling warmth that sharpens abruptly when lied to.",
		"Speaks in trade argot, translates for no one.",
	}
	stakes = []string{
		"the last archive", "the harbor accord", "her brother's pardon",
		"the freshwater line", "the winter stores", "the ceasefire",
	}
	goals = []string{
		"cross the flooded wards", "broker the exchange", "expose the ledger",
		"hold the seawall", "find the missing courier", "break the embargo",
	}
	themes = []string{
		"memory", "belonging", "survival", "loyalty", "reinvention", "inheritance",
	}
)

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	fmt.Printf("Generating project in %s...\n", *outputDir)

	generated := 0
	write := func(relPath, content string) {
		path := filepath.Join(*outputDir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", filepath.Dir(path), err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		generated++
	}

	for i := 0; i < *numCharacters; i++ {
		name := pick(rng, firstNames) + " " + pick(rng, surnames)
		slug := slugify(name)
		write("characters/"+slug+"/profile.md", characterProfile(rng, name))
	}

	for i := 0; i < *numPlaces; i++ {
		name := pick(rng, placeNames)
		slug := fmt.Sprintf("%s-%d", slugify(name), i)
		write("world/places/"+slug+"/overview.md", placeEntry(rng, name))
	}

	for b := 1; b <= *numBooks; b++ {
		book := fmt.Sprintf("%02d", b)
		write("books/"+book+"/phase-1-seed/premise.md", premise(rng))
		for c := 1; c <= *numChapters; c++ {
			write(fmt.Sprintf("books/%s/phase-2-root/chapter-%02d.md", book, c),
				chapterOutline(rng, c))
		}
	}

	write("overview/project.md", premise(rng))
	write("notes/loose-threads.md", "# Loose Threads\n\n"+
		"- Who holds "+pick(rng, stakes)+"?\n"+
		"- Revisit "+pick(rng, events)+" timeline.\n")

	fmt.Printf("Generated %d files.\n", generated)
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func characterProfile(rng *rand.Rand, name string) string {
	first := strings.Split(name, " ")[0]
	return fmt.Sprintf(profileTemplate,
		name, pick(rng, roles),
		name,
		first, pick(rng, placeNames), pick(rng, events), pick(rng, trades),
		first, pick(rng, traits),
		pick(rng, temperaments), pick(rng, flaws), first,
		pick(rng, firstNames), pick(rng, firstNames), pick(rng, firstNames),
		pick(rng, voices),
	)
}

func placeEntry(rng *rand.Rand, name string) string {
	return fmt.Sprintf(placeTemplate,
		name,
		name, "behind the old floodline", pick(rng, events), pick(rng, trades),
		pick(rng, events), pick(rng, events), pick(rng, themes),
		"The "+pick(rng, trades)+" guilds dispute control of "+pick(rng, stakes)+".",
	)
}

func chapterOutline(rng *rand.Rand, number int) string {
	return fmt.Sprintf(outlineTemplate,
		number, titleCase(pick(rng, themes)),
		pick(rng, firstNames), pick(rng, goals), pick(rng, events),
		pick(rng, placeNames), pick(rng, themes),
		pick(rng, firstNames)+" refuses to "+pick(rng, goals),
		pick(rng, placeNames)+" at low tide",
		pick(rng, themes),
	)
}

func premise(rng *rand.Rand) string {
	return fmt.Sprintf(premiseTemplate,
		pick(rng, events), pick(rng, stakes), pick(rng, firstNames),
		pick(rng, goals), pick(rng, stakes),
		titleCase(pick(rng, themes)), pick(rng, themes), pick(rng, flaws),
	)
}
