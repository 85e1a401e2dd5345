// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/kbsearch"
	"github.com/poiesic/kbsearch/config"
	"github.com/poiesic/kbsearch/core"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env file is not an error
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// runner holds the configuration resolved by the global flags.
type runner struct {
	cfg *config.Config
	out io.Writer
}

func newApp(out io.Writer) *cli.App {
	r := &runner{out: out}
	return &cli.App{
		Name:  "kbsearch",
		Usage: "Search a knowledge base of help entries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "corpus",
				Usage: "Knowledge base file (.yaml) or directory of Markdown notes",
			},
			&cli.StringFlag{
				Name:    "history-db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB directory for persistent search history",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Before: r.setup,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank knowledge base entries against a query",
				ArgsUsage: "<query>",
				Action:    r.searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (defaults to configuration)",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum score of a result (defaults to configuration)",
					},
					&cli.BoolFlag{
						Name:  "no-expansion",
						Usage: "Disable synonym expansion",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print why each entry matched",
					},
				},
			},
			{
				Name:      "simple",
				Usage:     "List the titles of the best entries for a query",
				ArgsUsage: "<query>",
				Action:    r.simpleCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"n"},
						Usage:   "Maximum number of entries",
						Value:   core.DefaultMaxResults,
					},
				},
			},
			{
				Name:   "multi",
				Usage:  "Combine a text query with category and keyword filters",
				Action: r.multiCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "text",
						Usage: "Free text query",
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Keep entries of this category",
					},
					&cli.StringSliceFlag{
						Name:  "keyword",
						Usage: "Keep entries with this keyword (repeatable)",
					},
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"n"},
						Usage:   "Maximum number of entries",
						Value:   core.DefaultMultiModalResults,
					},
				},
			},
			{
				Name:      "category",
				Usage:     "List the entries of a category",
				ArgsUsage: "<category> [subcategory]",
				Action:    r.categoryCommand,
			},
			{
				Name:      "keywords",
				Usage:     "List the entries having any of the keywords",
				ArgsUsage: "<keyword>...",
				Action:    r.keywordsCommand,
			},
			{
				Name:      "suggest",
				Usage:     "Propose completions for a partial query",
				ArgsUsage: "<partial query>",
				Action:    r.suggestCommand,
			},
			{
				Name:   "popular",
				Usage:  "List the popular searches",
				Action: r.popularCommand,
			},
			{
				Name:      "context",
				Usage:     "Suggest entries near a navigation path",
				ArgsUsage: "[query]",
				Action:    r.contextCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path",
						Aliases:  []string{"p"},
						Usage:    "Current navigation path, e.g. \"Finance > Budget\"",
						Required: true,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Summarize the knowledge base",
				Action: r.statsCommand,
			},
			{
				Name:      "entry",
				Usage:     "Show a knowledge base entry",
				ArgsUsage: "<id>",
				Action:    r.entryCommand,
			},
			{
				Name:  "history",
				Usage: "Inspect the persistent search history",
				Subcommands: []*cli.Command{
					{
						Name:   "recent",
						Usage:  "List the most recent searches",
						Action: r.historyRecentCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Number of searches to list",
								Value: 10,
							},
						},
					},
					{
						Name:   "top",
						Usage:  "List the most frequent searches",
						Action: r.historyTopCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Number of searches to list",
								Value: 10,
							},
						},
					},
					{
						Name:      "count",
						Usage:     "Count how many times a query was searched",
						ArgsUsage: "<query>",
						Action:    r.historyCountCommand,
					},
					{
						Name:   "clear",
						Usage:  "Delete the search history",
						Action: r.historyClearCommand,
					},
				},
			},
			{
				Name:      "init-config",
				Usage:     "Write a configuration file with the current settings",
				ArgsUsage: "<path>",
				Action:    r.initConfigCommand,
			},
		},
	}
}

// setup resolves the configuration (file, then environment, then flags)
// and configures the default logger.
func (r *runner) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.ApplyEnv()

	if c.IsSet("corpus") {
		cfg.Corpus.Path = c.String("corpus")
	}
	if c.IsSet("history-db") {
		cfg.History.DBPath = c.String("history-db")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	r.cfg = cfg
	return nil
}

func (r *runner) open() (*kbsearch.Library, error) {
	lib, err := kbsearch.Open(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return lib, nil
}

func queryArg(c *cli.Context) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", errors.New("query is required")
	}
	return query, nil
}

func (r *runner) searchCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	opts := lib.SearchOptions()
	if c.IsSet("max-results") {
		opts.MaxResults = c.Int("max-results")
	}
	if c.IsSet("threshold") {
		opts.Threshold = c.Float64("threshold")
	}
	if c.Bool("no-expansion") {
		opts.SemanticExpansion = false
	}

	results := lib.Engine().Search(query, opts)
	fmt.Fprintf(r.out, "Found %d results\n", len(results))
	for i, result := range results {
		fmt.Fprintf(r.out, "%d: %s (%s)[%0.3f]\n", i+1, result.Entry.Title, result.Entry.ID, result.Score)
		if c.Bool("explain") {
			for _, reason := range result.MatchReasons {
				fmt.Fprintf(r.out, "   - %s\n", reason)
			}
		}
	}
	return nil
}

func (r *runner) printEntries(entries []*core.KnowledgeEntry) {
	for _, entry := range entries {
		fmt.Fprintf(r.out, "%s\t%s\n", entry.ID, entry.Title)
	}
}

func (r *runner) printLines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(r.out, line)
	}
}

func (r *runner) simpleCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	r.printEntries(lib.Engine().SearchSimple(query, c.Int("max-results")))
	return nil
}

func (r *runner) multiCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	r.printEntries(lib.Engine().MultiModalSearch(core.MultiModalQuery{
		TextQuery:  c.String("text"),
		Category:   c.String("category"),
		Keywords:   c.StringSlice("keyword"),
		MaxResults: c.Int("max-results"),
	}))
	return nil
}

func (r *runner) categoryCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("category is required")
	}
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	r.printEntries(lib.Engine().SearchByCategory(c.Args().Get(0), c.Args().Get(1)))
	return nil
}

func (r *runner) keywordsCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("at least one keyword is required")
	}
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	r.printEntries(lib.Engine().SearchByKeywords(c.Args().Slice()))
	return nil
}

func (r *runner) suggestCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	r.printLines(lib.Engine().Suggestions(strings.Join(c.Args().Slice(), " ")))
	return nil
}

func (r *runner) popularCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	r.printLines(lib.Engine().PopularSearches())
	return nil
}

func (r *runner) contextCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	r.printLines(lib.Engine().ContextualSuggestions(c.String("path"), strings.Join(c.Args().Slice(), " ")))
	return nil
}

func (r *runner) statsCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	stats := lib.Engine().Stats()
	fmt.Fprintf(r.out, "Entries: %d\n", stats.TotalEntries)
	fmt.Fprintf(r.out, "Categories: %s\n", strings.Join(stats.Categories, ", "))
	fmt.Fprintf(r.out, "Subcategories: %s\n", strings.Join(stats.Subcategories, ", "))
	fmt.Fprintf(r.out, "Keywords: %d\n", stats.TotalKeywords)
	fmt.Fprintf(r.out, "Indexed terms: %d\n", stats.IndexedTerms)
	return nil
}

func (r *runner) entryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one entry id is required")
	}
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	id := c.Args().First()
	entry, ok := lib.Engine().Entry(id)
	if !ok {
		return fmt.Errorf("entry %q not found", id)
	}

	path := entry.Category
	if entry.HasSubcategory() {
		path += " > " + entry.Subcategory
	}
	fmt.Fprintf(r.out, "%s\n%s\n\n%s\n", entry.Title, path, entry.Content)
	if len(entry.Keywords) > 0 {
		fmt.Fprintf(r.out, "\nKeywords: %s\n", strings.Join(entry.Keywords, ", "))
	}
	if entry.NavigationPath != "" {
		fmt.Fprintf(r.out, "Navigation: %s\n", entry.NavigationPath)
	}
	if len(entry.RelatedTopics) > 0 {
		fmt.Fprintf(r.out, "Related: %s\n", strings.Join(entry.RelatedTopics, ", "))
	}
	return nil
}

func (r *runner) historyRecentCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	records, err := lib.RecentQueries(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Fprintf(r.out, "%s\t%q\t%d results\n", record.Timestamp.Local().Format("2006-01-02 15:04:05"), record.Query, record.Results)
	}
	return nil
}

func (r *runner) historyTopCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	counts, err := lib.TopQueries(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}
	for _, qc := range counts {
		fmt.Fprintf(r.out, "%d\t%q\n", qc.Count, qc.Query)
	}
	return nil
}

func (r *runner) historyCountCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	repo := lib.HistoryRepository()
	if repo == nil {
		return kbsearch.ErrHistoryDisabled
	}
	n, err := repo.CountQuery(context.Background(), query)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, n)
	return nil
}

func (r *runner) historyClearCommand(c *cli.Context) error {
	lib, err := r.open()
	if err != nil {
		return err
	}
	defer lib.Close()

	repo := lib.HistoryRepository()
	if repo == nil {
		return kbsearch.ErrHistoryDisabled
	}
	if err := repo.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintln(r.out, "History cleared")
	return nil
}

func (r *runner) initConfigCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("configuration path is required")
	}
	if err := config.Save(c.Args().First(), r.cfg); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Configuration written to %s\n", c.Args().First())
	return nil
}
