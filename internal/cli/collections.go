package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage chunk store collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := buildStore(GetConfig())
		if err != nil {
			return err
		}
		defer cleanup()

		names, err := store.ListCollections()
		if err != nil {
			return fmt.Errorf("list collections: %w", err)
		}
		if len(names) == 0 {
			fmt.Println("No collections.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete one collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := buildStore(GetConfig())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.DeleteCollection(args[0]); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var collectionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to delete all collections without --yes")
		}
		store, cleanup, err := buildStore(GetConfig())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.DeleteAll(); err != nil {
			return fmt.Errorf("clear collections: %w", err)
		}
		fmt.Println("All collections deleted.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	collectionsCmd.AddCommand(collectionsClearCmd)
	collectionsClearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion of all collections")
}
