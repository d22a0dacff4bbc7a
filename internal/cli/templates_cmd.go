package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/templates"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Manage quick-response templates",
	}

	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesAddCmd())
	cmd.AddCommand(newTemplatesEditCmd())
	cmd.AddCommand(newTemplatesRmCmd())
	cmd.AddCommand(newTemplatesUseCmd())

	return cmd
}

// newTemplateManager loads config, builds the API client, and returns a
// manager with a fresh cache.
func newTemplateManager(ctx context.Context) (*templates.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}

	mgr := templates.NewManager(client, log)
	if err := mgr.Refresh(ctx); err != nil {
		return nil, err
	}
	return mgr, nil
}

func newTemplatesListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quick-response templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr, err := newTemplateManager(ctx)
			if err != nil {
				return err
			}

			all := mgr.All()
			shown := 0
			for _, t := range all {
				if category != "" && !strings.EqualFold(t.Category, category) {
					continue
				}
				printTemplate(t)
				shown++
			}
			fmt.Printf("%d of %d template(s)\n", shown, len(all))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show templates in this category")

	return cmd
}

func printTemplate(t domain.Template) {
	shortcut := ""
	if t.Shortcut != "" {
		shortcut = fmt.Sprintf(" [%s]", t.Shortcut)
	}
	fmt.Printf("%s%s  %s (used %d times)\n", t.ID, shortcut, t.Name, t.UsageCount)
	fmt.Printf("    %s\n", t.Content)
}

func newTemplatesAddCmd() *cobra.Command {
	var (
		shortcut string
		category string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <content>",
		Short: "Create a quick-response template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr, err := newTemplateManager(ctx)
			if err != nil {
				return err
			}

			created, err := mgr.Create(ctx, domain.Template{
				Name:     args[0],
				Content:  args[1],
				Shortcut: shortcut,
				Category: category,
				Tags:     tags,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created template %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortcut, "shortcut", "", "composer shortcut, e.g. /ship")
	cmd.Flags().StringVar(&category, "category", "", "template category")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")

	return cmd
}

func newTemplatesEditCmd() *cobra.Command {
	var (
		name     string
		content  string
		shortcut string
		category string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a quick-response template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr, err := newTemplateManager(ctx)
			if err != nil {
				return err
			}

			existing := domain.Template{}
			for _, t := range mgr.All() {
				if t.ID == args[0] {
					existing = t
					break
				}
			}
			if existing.ID == "" {
				return fmt.Errorf("template %q not found", args[0])
			}

			if cmd.Flags().Changed("name") {
				existing.Name = name
			}
			if cmd.Flags().Changed("content") {
				existing.Content = content
			}
			if cmd.Flags().Changed("shortcut") {
				existing.Shortcut = shortcut
			}
			if cmd.Flags().Changed("category") {
				existing.Category = category
			}

			updated, err := mgr.Update(ctx, existing)
			if err != nil {
				return err
			}

			fmt.Printf("Updated template %s\n", updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&shortcut, "shortcut", "", "new shortcut")
	cmd.Flags().StringVar(&category, "category", "", "new category")

	return cmd
}

func newTemplatesRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a quick-response template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr, err := newTemplateManager(ctx)
			if err != nil {
				return err
			}

			if err := mgr.Delete(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("Deleted template %s\n", args[0])
			return nil
		},
	}
}

func newTemplatesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <shortcut>",
		Short: "Expand a template shortcut and print its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr, err := newTemplateManager(ctx)
			if err != nil {
				return err
			}

			t, ok := mgr.ByShortcut(args[0])
			if !ok {
				return fmt.Errorf("no template matches shortcut %q", args[0])
			}

			// Best effort: the expansion is the point, the counter can lag.
			if err := mgr.Use(ctx, t.ID); err != nil {
				log.Debug().Err(err).Msg("usage report dropped")
			}
			fmt.Println(t.Content)
			return nil
		},
	}
}
