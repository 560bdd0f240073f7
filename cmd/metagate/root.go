package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metagate",
	Short: "Metadata deployment service for custom platform objects",
	Long: `MetaGate turns JSON object definitions into deployable metadata.

It generates the descriptor XML for a custom object and its fields, stages
the files in a scratch directory, and hands them to the platform deployment
CLI for the target org.

Quick start:
  metagate serve       # Start the HTTP service
  metagate generate    # Render descriptors without deploying

Management:
  metagate history     # Show recent deployment attempts
  metagate validate    # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "metagate.yaml", "config file path")
}
