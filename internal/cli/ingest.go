package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragstore/internal/adapter/docparse"
	"ragstore/internal/adapter/fs"
	"ragstore/internal/identity"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Batch-load a directory of documents into the store",
	Long: `Read every matching file under the given directory, derive a stable
ID from its filename, split optional "key: value" front matter from the
body, and upsert the result. Re-running ingest updates existing points
instead of duplicating them.

Examples:
  ragstore ingest ./files
  ragstore ingest ./docs --config ragstore.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	svc, _, st, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.EnsureCollection(cfg.Embedding.Dimension); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	files, err := walker.Walk(root)
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No matching files found.")
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Embedding"),
		progressbar.OptionShowCount(),
	)

	inserted, updated, failed := 0, 0, 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "\nfailed to read %s: %v\n", path, err)
			bar.Add(1)
			continue
		}

		metadata, text := docparse.Parse(string(content))
		id := identity.ForName(filepath.Base(path))

		wasUpdate, err := svc.Upsert(id, text, metadata)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "\nfailed to embed %s: %v\n", path, err)
			bar.Add(1)
			continue
		}
		if wasUpdate {
			updated++
		} else {
			inserted++
		}
		bar.Add(1)
	}

	fmt.Printf("\nDone: %d inserted, %d updated, %d failed\n", inserted, updated, failed)
	if failed > 0 {
		return fmt.Errorf("%d files failed to ingest", failed)
	}
	return nil
}
