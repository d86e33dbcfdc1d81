// Package cmd provides the command-line interface of mediumcache.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediumcache",
	Short: "mediumcache runs workloads against pluggable caches.",
	Long: `mediumcache puts an LRU or a set-associative cache in front of an ` +
		`in-memory or SQLite medium and replays a synthetic workload. ` +
		`Settings come from MEDIUMCACHE_* environment variables, a .env ` +
		`file, and flags, in increasing order of priority.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File to load environment variables from")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
