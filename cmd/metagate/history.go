package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/metagate/metagate/adapters/sqlite"
	"github.com/metagate/metagate/config"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent deployment attempts",
	Long: `Show the most recent deployment attempts, newest first.

Examples:
  metagate history
  metagate history --limit 50`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum records to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewDeploymentStore(db)
	records, err := store.List(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list deployments: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No deployments recorded.")
		fmt.Println()
		fmt.Println("Deploy an object with: curl -X POST localhost:3000/create-metadata -d @definition.json")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOBJECT\tORG\tFIELDS\tSTATUS\tDURATION\tWHEN")
	fmt.Fprintln(w, "--\t------\t---\t------\t------\t--------\t----")

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%dms\t%s\n",
			r.ID, r.ObjectName, r.OrgAlias, r.FieldCount, r.Status, r.DurationMs,
			r.CreatedAt.Local().Format(time.DateTime))
	}

	w.Flush()
	return nil
}

func openDatabase() (*sqlite.DB, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
