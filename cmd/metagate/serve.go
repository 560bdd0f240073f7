package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metagate/metagate/bootstrap"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metadata deployment service",
	Long: `Start the MetaGate HTTP service.

The server will:
  - Load configuration from metagate.yaml (or --config)
  - Or load configuration from METAGATE_* environment variables
  - Open the deployment history database
  - Accept object definitions on POST /create-metadata
  - Stage descriptor files and invoke the deployment CLI

Environment variables (for container deployments):
  METAGATE_SERVER_PORT / PORT   - Listen port (default: 3000)
  METAGATE_DEPLOY_BIN           - Deployment CLI executable (default: sf)
  METAGATE_DATABASE_DSN         - History database path (default: metagate.db)
  METAGATE_STAGING_ROOT         - Staging directory (default: $TMPDIR/metagate)
  METAGATE_LOG_LEVEL            - Log level: debug, info, warn, error

Examples:
  metagate serve
  metagate serve --config /etc/metagate/config.yaml
  metagate serve --hot-reload=false

  # Container (env vars only):
  PORT=8080 METAGATE_DEPLOY_BIN=/usr/local/bin/sf metagate serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	opts := bootstrap.Options{}
	if _, err := os.Stat(cfgFile); err == nil {
		opts.ConfigPath = cfgFile
		opts.WatchConfig = hotReload
	} else {
		fmt.Println("Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(opts)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
