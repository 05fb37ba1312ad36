// Package main is the goroku command line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "goroku",
	Short: "Baseball-flavored quote generator and daily lineup composer",
	Long: `Goroku turns short user phrases into stylized interview quotes via a
language model, curates them with engagement scoring, and composes a
deterministic daily lineup of the best entries.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s)", Version, Commit)

	// Load .env if present so local runs pick up GOROKU_MODEL_API_KEY.
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
