package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search stored embeddings by similarity",
	Long: `Embed the query text and return the most similar stored documents,
ranked by cosine similarity. Results below the configured score
threshold are excluded.

Examples:
  ragstore query -q "sky color"
  ragstore query -q "database tuning" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

type queryResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	svc, _, st, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.EnsureCollection(cfg.Embedding.Dimension); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	scored, err := svc.Retrieve(queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, 0, len(scored))
	for _, sp := range scored {
		results = append(results, queryResult{ID: sp.Point.ID, Score: sp.Score, Payload: sp.Point.Payload})
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results above the score threshold.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. %s (score %.4f)\n", i+1, r.ID, r.Score)
		if text, ok := r.Payload["text"].(string); ok {
			fmt.Printf("   %s\n", text)
		}
	}
	return nil
}
