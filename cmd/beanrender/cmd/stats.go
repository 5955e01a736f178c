package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/beancount-ledger/pkg/db"
)

var statsLimit int

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display render statistics",
	Long: `Display statistics about rendered ledger files.

Shows:
- Total number of render runs and files written
- Total number of directives and bytes rendered
- Last render timestamp
- The most recent render records

Example:
  beanrender stats
  beanrender stats --limit 20`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "limit", 5, "Number of recent render records to show (0 for all)")
}

func runStats(cmd *cobra.Command, args []string) {
	pathResolver, err := loadPaths()
	exitOnError(err, "failed to load configuration")

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewRenderHistory(conn)

	stats, err := history.GetStats()
	exitOnError(err, "failed to get statistics")

	recent, err := history.ListRuns(statsLimit)
	exitOnError(err, "failed to list render records")

	lastRunID, err := history.GetMetadata(db.MetadataLastRunID)
	exitOnError(err, "failed to get last run")

	printStats(os.Stdout, stats, recent, lastRunID)

	slog.Info("Statistics displayed successfully", "database", conn.GetPath())
}

func printStats(w io.Writer, stats *db.Stats, recent []db.RenderRecord, lastRunID string) {
	fmt.Fprintln(w, "\n=== Render Statistics ===")
	fmt.Fprintf(w, "Total runs:        %d\n", stats.TotalRuns)
	fmt.Fprintf(w, "Total files:       %d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Total directives:  %d\n", stats.TotalDirectives)
	fmt.Fprintf(w, "Total bytes:       %d\n", stats.TotalBytes)

	if stats.LastRender.Valid {
		fmt.Fprintf(w, "Last render:       %s\n", stats.LastRender.String)
	} else {
		fmt.Fprintf(w, "Last render:       (never)\n")
	}
	if lastRunID != "" {
		fmt.Fprintf(w, "Last run:          %s\n", lastRunID)
	}

	if len(recent) > 0 {
		fmt.Fprintln(w, "\n=== Recent Files ===")
		for _, r := range recent {
			fmt.Fprintf(w, "%s  %-40s %5d directives  %7d bytes\n",
				r.RenderedAt.Format("2006-01-02 15:04:05"), r.TargetFile, r.DirectiveCount, r.RenderedBytes)
		}
	}

	fmt.Fprintln(w)
}
