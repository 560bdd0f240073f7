package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metagate/metagate/domain/metadata"
	"github.com/metagate/metagate/domain/object"
)

var (
	generateFile string
	generateOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render metadata descriptors without deploying",
	Long: `Generate the descriptor XML for an object definition and write it to a
directory, skipping the deployment step.

The definition is read from --file, or from stdin when --file is omitted.
The orgAlias field may be left out since nothing is deployed.

Examples:
  metagate generate --file beat_plan.json --out ./build
  cat beat_plan.json | metagate generate --out ./build`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "definition JSON file (default: stdin)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", ".", "output directory")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if generateFile != "" {
		f, err := os.Open(generateFile)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var def object.Definition
	if err := json.NewDecoder(r).Decode(&def); err != nil {
		return fmt.Errorf("parse definition: %w", err)
	}

	// Nothing is deployed, so the org alias is not required here
	if def.OrgAlias == "" {
		def.OrgAlias = "none"
	}
	if err := object.Validate(def); err != nil {
		return err
	}

	bundle := metadata.Generate(def)
	for _, file := range bundle.Files {
		dest := filepath.Join(generateOut, filepath.FromSlash(file.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, file.Body, 0o644); err != nil {
			return err
		}
		fmt.Println(dest)
	}

	fmt.Printf("\nGenerated %d files for %s\n", len(bundle.Files), bundle.APIName)
	return nil
}
