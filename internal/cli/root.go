package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragstore/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ragstore",
	Short: "Embedding store and retrieval service for RAG pipelines",
	Long: `ragstore converts text documents to vector embeddings, keeps them in a
vector index, and answers similarity queries used to ground a chat agent.

Example usage:
  ragstore serve                      # Run the HTTP API
  ragstore ingest ./files             # Batch-load a directory of documents
  ragstore query -q "sky color"      # Similarity search from the terminal`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragstore.yaml)")
}
