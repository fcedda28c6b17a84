package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/kydenul/smartbot"
)

func main() {
	inputFile := flag.String("input", "", "Template corpus JSON file path")
	verbose := flag.Bool("verbose", false, "Print every template after validation")
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("Usage: corpus_lint -input <templates.json> [-verbose]")
		return
	}

	fmt.Printf("Checking %s...\n", *inputFile)

	loader := smartbot.NewCorpusLoader(smartbot.DiscardLogger{})
	corpus, err := loader.LoadFromFile(*inputFile)
	if err != nil {
		log.Fatalf("Corpus rejected: %v", err)
	}

	templates := corpus.Templates()

	// Index keywords for the overlap report.
	keywordOwners := make(map[string][]int)
	categories := make(map[smartbot.Category]int)
	for _, t := range templates {
		categories[t.Category]++
		for _, kw := range t.Keywords {
			keywordOwners[kw] = append(keywordOwners[kw], t.ID)
		}
	}

	fmt.Printf("Loaded %d templates (%d malformed entries skipped)\n",
		len(templates), loader.SkippedEntries())
	fmt.Printf("Highest template id: %d\n", corpus.MaxID())

	fmt.Println("Categories:")
	for cat, count := range categories {
		fmt.Printf("  %-10s %d\n", cat, count)
	}

	// Keywords claimed by more than one template dilute every owner's
	// overlap score; worth knowing, not an error.
	shared := 0
	for kw, owners := range keywordOwners {
		if len(owners) > 1 {
			shared++
			fmt.Printf("Keyword %q is shared by templates %v\n", kw, owners)
		}
	}
	if shared == 0 {
		fmt.Println("No keywords shared between templates")
	}

	if *verbose {
		fmt.Println()
		for _, t := range templates {
			fmt.Printf("%4d [%s] keywords: %s\n", t.ID, t.Category, strings.Join(t.Keywords, ", "))
			fmt.Printf("     response: %s\n", t.Response)
		}
	}

	fmt.Printf("Corpus OK: %d templates ready\n", len(templates))
}
