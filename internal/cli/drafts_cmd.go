package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/store"
)

func newDraftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Inspect and clear locally persisted drafts",
	}

	cmd.AddCommand(newDraftsListCmd())
	cmd.AddCommand(newDraftsClearCmd())

	return cmd
}

// openDraftDB opens the on-disk draft database. Commands that only read
// drafts still go through the migration path so a fresh install works.
func openDraftDB() (*store.DB, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("preparing data directories: %w", err)
	}
	return store.Open(paths.DraftDB(), log)
}

func newDraftsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unsent drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDraftDB()
			if err != nil {
				return err
			}
			defer db.Close()

			drafts, err := store.NewSQLiteDraftStore(db).List()
			if err != nil {
				return err
			}

			if len(drafts) == 0 {
				fmt.Println("No drafts.")
				return nil
			}

			for _, d := range drafts {
				fmt.Printf("%s  (%s)\n", d.ConversationID, d.UpdatedAt.Format("2006-01-02 15:04"))
				if d.Content != "" {
					fmt.Printf("    %s\n", d.Content)
				}
				if len(d.Attachments) > 0 {
					fmt.Printf("    %d attachment(s)\n", len(d.Attachments))
				}
				if len(d.ProductRefs) > 0 {
					fmt.Printf("    products: %v\n", d.ProductRefs)
				}
			}
			fmt.Printf("%d draft(s)\n", len(drafts))
			return nil
		},
	}
}

func newDraftsClearCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear [conversation-id]",
		Short: "Remove a draft, or all drafts with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("provide a conversation id or --all")
			}

			db, err := openDraftDB()
			if err != nil {
				return err
			}
			defer db.Close()

			drafts := store.NewSQLiteDraftStore(db)

			if all {
				list, err := drafts.List()
				if err != nil {
					return err
				}
				for _, d := range list {
					if err := drafts.Clear(d.ConversationID); err != nil {
						return err
					}
				}
				fmt.Printf("Cleared %d draft(s)\n", len(list))
				return nil
			}

			if err := drafts.Clear(args[0]); err != nil {
				return err
			}
			fmt.Printf("Cleared draft for %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "clear every stored draft")

	return cmd
}
