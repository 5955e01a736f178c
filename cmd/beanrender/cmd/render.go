package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/loader"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/pathutil"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/render"
	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/repository"
)

// stdoutTarget is the target name recorded for renders to standard output.
const stdoutTarget = "-"

var (
	outFile string
	monthly bool
	dryRun  bool
)

// renderCmd represents the render command.
var renderCmd = &cobra.Command{
	Use:   "render INPUT.yaml",
	Short: "Render a ledger document as Beancount",
	Long: `Render a YAML ledger document as Beancount source text.

This command:
1. Loads the directives from the YAML document
2. Renders them in document order
3. Writes to stdout, to --out, or to monthly files with --monthly
4. Records render history in SQLite

With --monthly, dated directives are appended to {root}/YYYY/YYYY-MM.beancount
and undated ones (option, plugin, include) to {root}/main.beancount.

Example:
  beanrender render ledger.yaml
  beanrender render ledger.yaml --out ledger.beancount
  beanrender render ledger.yaml --monthly --dry-run`,
	Args: cobra.ExactArgs(1),
	Run:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().BoolVar(&monthly, "monthly", false, "Append to monthly files under the ledger root")
	renderCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no file writes)")

	renderCmd.MarkFlagsMutuallyExclusive("out", "monthly")
}

// target is one output of a render run.
type target struct {
	// month is the YYYY-MM key of a monthly file
	month string
	// main marks the file receiving undated directives in monthly mode
	main   bool
	path   string
	ledger beancount.Ledger
}

func runRender(cmd *cobra.Command, args []string) {
	source := args[0]
	slog.Info("Starting render", "source", source, "out", outFile, "monthly", monthly, "dry_run", dryRun)

	pathResolver, err := loadPaths()
	exitOnError(err, "failed to load configuration")

	ledger, err := loader.New(slog.Default()).LoadFile(source)
	exitOnError(err, "failed to load ledger")
	slog.Info("Loaded ledger", "directives", ledger.Len())

	targets, err := planTargets(pathResolver, ledger, outFile, monthly)
	exitOnError(err, "failed to plan output")

	if dryRun {
		for _, t := range targets {
			fmt.Printf("[DRY RUN] Would write %d directives to %s\n", t.ledger.Len(), t.path)
			exitOnError(render.Render(os.Stdout, t.ledger), "failed to render ledger")
		}
		return
	}

	exitOnError(checkTargets(targets), "failed to render ledger")

	repo := repository.NewFileSystemRepository(pathResolver, slog.Default())
	comment := fmt.Sprintf("Rendered from %s", filepath.Base(source))

	records, writeErr := writeTargets(repo, os.Stdout, source, targets, comment)

	// Files written before a failure were modified and belong in the history.
	runID, err := recordHistory(pathResolver, records)
	if err != nil {
		slog.Error("Failed to record render history", "error", err)
	}
	exitOnError(writeErr, "failed to write ledger")

	slog.Info("Render completed", "run_id", runID, "files_written", len(records))
}

// checkTargets renders every target without writing it, so a ledger that cannot be
// rendered fails before any file is touched.
func checkTargets(targets []target) error {
	for _, t := range targets {
		if err := render.Render(io.Discard, t.ledger); err != nil {
			return fmt.Errorf("failed to render %s: %w", t.path, err)
		}
	}
	return nil
}

// recordHistory stores the records of one run. No records means nothing was written.
func recordHistory(pathResolver *pathutil.PathResolver, records []db.RenderRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	conn, err := db.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	return db.NewRenderHistory(conn).RecordRun(records...)
}

// planTargets splits the ledger into the outputs selected by the flags.
func planTargets(pathResolver *pathutil.PathResolver, ledger beancount.Ledger, out string, byMonth bool) ([]target, error) {
	if !byMonth {
		path := stdoutTarget
		if out != "" {
			path = out
		}
		return []target{{path: path, ledger: ledger}}, nil
	}

	groups := repository.SplitByMonth(ledger)
	targets := make([]target, 0, len(groups))

	// Undated directives come first so main.beancount is written before the months it includes.
	if undated, ok := groups[""]; ok {
		targets = append(targets, target{main: true, path: pathResolver.GetMainFilePath(), ledger: undated})
	}

	months := make([]string, 0, len(groups))
	for month := range groups {
		months = append(months, month)
	}
	slices.Sort(months)

	for _, month := range months {
		if month == "" {
			continue
		}
		path, err := pathResolver.GetMonthFilePath(month)
		if err != nil {
			return nil, fmt.Errorf("failed to get month file path: %w", err)
		}
		targets = append(targets, target{month: month, path: path, ledger: groups[month]})
	}

	return targets, nil
}

// writeTargets writes every target and returns one history record per output.
func writeTargets(repo repository.Repository, stdout io.Writer, source string, targets []target, comment string) ([]db.RenderRecord, error) {
	records := make([]db.RenderRecord, 0, len(targets))

	for _, t := range targets {
		var (
			n   int
			err error
		)

		switch {
		case t.path == stdoutTarget:
			var buf bytes.Buffer
			if err = render.Render(&buf, t.ledger); err == nil {
				n, err = stdout.Write(buf.Bytes())
			}
		case t.month != "":
			n, err = repo.AppendLedger(t.month, t.ledger, comment)
		case t.main:
			n, err = repo.AppendMain(t.ledger, comment)
		default:
			n, err = repo.WriteLedger(t.path, t.ledger)
		}
		if err != nil {
			return records, fmt.Errorf("failed to write %s: %w", t.path, err)
		}

		slog.Info("Updated file", "path", t.path, "directives", t.ledger.Len(), "bytes", n)
		records = append(records, db.RenderRecord{
			SourceFile:     source,
			TargetFile:     t.path,
			DirectiveCount: t.ledger.Len(),
			RenderedBytes:  n,
		})
	}

	return records, nil
}
