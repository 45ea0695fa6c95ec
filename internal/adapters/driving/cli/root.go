// Package cli provides the cobra command surface of the Lectern CLI.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern-cli/internal/logger"
)

var (
	flagVerbose    bool
	flagConfigPath string
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Evidence retrieval for document Q&A",
	Long: `Lectern retrieves the most relevant, deduplicated evidence for a
question from indexed document collections: hybrid keyword + semantic
search across generated query variants, cross-encoder reranking, and
context assembly, with a two-tier query cache in front.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(flagVerbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (default ~/.lectern/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
