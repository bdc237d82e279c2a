package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listOffset string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored embeddings with pagination",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "page size (default 50)")
	listCmd.Flags().StringVar(&listOffset, "offset", "", "page cursor from a previous run")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	svc, _, st, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.EnsureCollection(cfg.Embedding.Dimension); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	var offset any
	if listOffset != "" {
		if n, err := strconv.Atoi(listOffset); err == nil {
			offset = n
		} else {
			offset = listOffset
		}
	}
	page, err := svc.List(listLimit, offset)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		entries := make([]map[string]any, 0, len(page.Points))
		for _, p := range page.Points {
			entries = append(entries, map[string]any{"id": p.ID, "payload": p.Payload})
		}
		out := map[string]any{"total": len(entries), "embeddings": entries}
		if page.NextOffset != nil {
			out["next_offset"] = page.NextOffset
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(page.Points) == 0 {
		fmt.Println("No stored embeddings.")
		return nil
	}
	for _, p := range page.Points {
		text := p.Text()
		if len(text) > 80 {
			text = text[:80] + "..."
		}
		fmt.Printf("%s  %s\n", p.ID, text)
	}
	if page.NextOffset != nil {
		fmt.Printf("\nMore results: --offset %v\n", page.NextOffset)
	}
	return nil
}
