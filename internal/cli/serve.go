package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"ragstore/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the embedding store HTTP API",
	Long: `Start the HTTP server exposing embed, retrieve, list, and delete
operations. The collection is created if missing and the embedding model
is initialized before the server accepts traffic; failure of either is
fatal.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, emb, st, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.EnsureCollection(cfg.Embedding.Dimension); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	if err := emb.Ready(); err != nil {
		return fmt.Errorf("embedding model unavailable: %w", err)
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	logger := log.New(os.Stderr, "ragstore: ", log.LstdFlags)
	srv := server.New(svc, cfg.Retrieve.TopK, cfg.Server.CORSOrigin, logger)
	return srv.ListenAndServe(addr)
}
