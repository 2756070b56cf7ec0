package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/asaidimu/go-sift/core/fuzzy"
	"github.com/asaidimu/go-sift/core/query"
	"github.com/asaidimu/go-sift/core/record"
	"github.com/asaidimu/go-sift/sqlite"
	"github.com/asaidimu/go-sift/utils"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const loggerKey = "logger"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sift",
		Usage: "Search, filter, sort, paginate and group JSON or SQLite records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		After: func(c *cli.Context) error {
			logger(c).Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a pipeline over a collection and print the result as JSON",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Path to a JSON file holding an array of objects (- for stdin)",
					},
					&cli.StringFlag{
						Name:  "sqlite",
						Usage: "Path to a SQLite database to read records from",
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Table to load from the SQLite database",
					},
					&cli.StringFlag{
						Name:  "sql",
						Usage: "SELECT statement to load records from the SQLite database",
					},
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to a JSON pipeline definition",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search query passed to every stage",
					},
					&cli.StringFlag{
						Name:  "write-table",
						Usage: "Store the result in this table of the --sqlite database",
					},
					&cli.BoolFlag{
						Name:  "issues",
						Usage: "Include pipeline issues in the output",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Indent the JSON output",
					},
				},
			},
			{
				Name:      "score",
				Usage:     "Print the similarity of two strings under every fuzzy algorithm",
				ArgsUsage: "<value> <query>",
				Action:    scoreCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"a"},
						Usage:   "Only print this algorithm (" + strings.Join(algorithmNames(), ", ") + ")",
					},
				},
			},
			{
				Name:   "paths",
				Usage:  "List the leaf field paths of the first record of a JSON file",
				Action: pathsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to a JSON file holding an array of objects (- for stdin)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of paths to list",
						Value: query.DefaultObjectToStringThreshold,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	level, err := zapcore.ParseLevel(levelStr)
	if err != nil || level > zapcore.ErrorLevel {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	cfg := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[loggerKey] = l
	return nil
}

func logger(c *cli.Context) *zap.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()
	lg := logger(c)

	cfg, err := query.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	pipeline, err := cfg.Build(lg)
	if err != nil {
		return err
	}

	docs, src, err := loadDocuments(ctx, c, lg)
	if err != nil {
		return err
	}
	if src != nil {
		defer src.Close()
	}

	res := pipeline.RunContext(ctx, docs, c.String("query"))
	if res.Err != nil {
		lg.Warn("Pipeline failed, printing input unchanged", zap.Error(res.Err))
	}

	if table := c.String("write-table"); table != "" {
		if src == nil {
			return fmt.Errorf("%w: --write-table requires --sqlite", query.ErrInvalidArgument)
		}
		if _, err := src.WriteTable(ctx, table, res.Documents, &sqlite.WriteOptions{Replace: true}); err != nil {
			return err
		}
	}

	var out any = res.Documents
	if c.Bool("issues") {
		out = res
	}
	return writeJSON(c.App.Writer, out, c.Bool("pretty"))
}

// loadDocuments reads the collection from exactly one of --input or --sqlite.
// The returned source is non-nil for SQLite input and must be closed.
func loadDocuments(ctx context.Context, c *cli.Context, lg *zap.Logger) ([]record.Document, *sqlite.Source, error) {
	input, dbPath := c.String("input"), c.String("sqlite")
	switch {
	case input != "" && dbPath != "":
		return nil, nil, fmt.Errorf("%w: --input and --sqlite are mutually exclusive", query.ErrInvalidArgument)
	case input != "":
		docs, err := readJSONFile(c, input)
		return docs, nil, err
	case dbPath == "":
		return nil, nil, fmt.Errorf("%w: one of --input or --sqlite is required", query.ErrInvalidArgument)
	}

	table, stmt := c.String("table"), c.String("sql")
	if (table == "") == (stmt == "") {
		return nil, nil, fmt.Errorf("%w: --sqlite needs exactly one of --table or --sql", query.ErrInvalidArgument)
	}

	src, err := sqlite.Open(dbPath, lg, nil)
	if err != nil {
		return nil, nil, err
	}

	var docs []record.Document
	if table != "" {
		docs, err = src.LoadTable(ctx, table)
	} else {
		docs, err = src.Query(ctx, stmt)
	}
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return docs, src, nil
}

func readJSONFile(c *cli.Context, path string) ([]record.Document, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}

	docs, err := utils.DecodeDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", query.ErrInvalidArgument, path, err)
	}
	return docs, nil
}

func scoreCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("%w: expected <value> <query>, got %d arguments", query.ErrInvalidArgument, c.NArg())
	}
	value, q := c.Args().Get(0), c.Args().Get(1)

	names := algorithmNames()
	if only := c.String("algorithm"); only != "" {
		if _, ok := fuzzy.Lookup(fuzzy.Algorithm(only)); !ok {
			return fmt.Errorf("%w: unknown algorithm %q", query.ErrUnsupportedStrategy, only)
		}
		names = []string{only}
	}

	for _, name := range names {
		scorer, _ := fuzzy.Lookup(fuzzy.Algorithm(name))
		fmt.Fprintf(c.App.Writer, "%-12s %.4f\n", name, scorer(value, q))
	}
	return nil
}

func pathsCommand(c *cli.Context) error {
	docs, err := readJSONFile(c, c.String("input"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	for _, p := range record.LeafPaths(docs[0], c.Int("limit")) {
		fmt.Fprintln(c.App.Writer, p)
	}
	return nil
}

func algorithmNames() []string {
	algs := fuzzy.Algorithms()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = string(a)
	}
	return names
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
