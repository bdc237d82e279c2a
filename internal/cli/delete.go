package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteAllFlag bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete one embedding by ID, or all with --all",
	Long: `Delete a stored embedding. Deleting an ID that does not exist still
succeeds. --all wipes the whole collection; there is no undo.

Examples:
  ragstore delete 9b2b0a0e-0b8e-5f6a-8f43-1c5a60dfe428
  ragstore delete --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteAllFlag, "all", false, "delete every stored embedding")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if !deleteAllFlag && len(args) == 0 {
		return fmt.Errorf("provide an ID or --all")
	}
	if deleteAllFlag && len(args) > 0 {
		return fmt.Errorf("--all cannot be combined with an ID")
	}

	svc, _, st, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := st.EnsureCollection(cfg.Embedding.Dimension); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	if deleteAllFlag {
		if err := svc.DeleteAll(); err != nil {
			return fmt.Errorf("delete all failed: %w", err)
		}
		fmt.Println("All embeddings removed.")
		return nil
	}

	if err := svc.DeleteOne(args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("Embedding with ID %s removed.\n", args[0])
	return nil
}
