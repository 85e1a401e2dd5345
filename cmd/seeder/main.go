package main

import (
	"bufio"
	"flag"
	"iter"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/poiesic/kbsearch"
	"github.com/poiesic/kbsearch/config"
	"github.com/poiesic/kbsearch/corpus"
)

var (
	seedFileName = flag.String("src", "", "file of queries, one per line")
	dbPath       = flag.String("db", "./history_db", "history database directory")
	corpusPath   = flag.String("corpus", "", "knowledge base to search (default: built-in)")
	exportPath   = flag.String("export", "", "write the knowledge base as YAML to this file and exit")
	rounds       = flag.Int("rounds", 1, "number of times each query is replayed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over the non-blank lines of a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}

// queriesFromBundle returns an iterator over the popular searches and the
// example questions of every entry.
func queriesFromBundle(bundle *corpus.Bundle) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, q := range bundle.Popular {
			if !yield(q) {
				return
			}
		}
		for _, e := range bundle.Entries {
			for _, q := range e.Examples {
				if !yield(q) {
					return
				}
			}
		}
	}
}

// replay searches every query of source n times.
func replay(lib *kbsearch.Library, source iter.Seq[string], n int) int {
	queries := slices.Collect(source)
	count := 0
	for range n {
		for _, query := range queries {
			results := lib.Search(query)
			slog.Debug("seeded query", "query", query, "results", len(results))
			count++
		}
	}
	lib.Flush()
	return count
}

func main() {
	cfg := config.NewConfig(
		config.WithCorpusPath(*corpusPath),
		config.WithHistoryDB(*dbPath),
	)

	if *exportPath != "" {
		cfg.History.DBPath = ""
	}

	lib, err := kbsearch.Open(cfg)
	if err != nil {
		panic(err)
	}
	defer lib.Close()

	if *exportPath != "" {
		if err := lib.Bundle().Save(*exportPath); err != nil {
			panic(err)
		}
		slog.Info("knowledge base exported", "path", *exportPath, "entries", len(lib.Bundle().Entries))
		return
	}

	// Determine source of seed queries
	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = queriesFromBundle(lib.Bundle())
	}

	n := replay(lib, source, max(*rounds, 1))
	slog.Info("history seeded", "db", *dbPath, "queries", n, "session", lib.Session())
}
