package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/api"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/upload"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Read and send messages",
	}

	cmd.AddCommand(newMessagesHistoryCmd())
	cmd.AddCommand(newMessagesSendCmd())
	return cmd
}

func newMessagesHistoryCmd() *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "history <conversation-id>",
		Short: "Print a conversation's messages in backend order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			msgs, err := client.GetMessages(ctx, args[0])
			if err != nil {
				return describeAPIError(err, args[0])
			}
			if tail > 0 && len(msgs) > tail {
				msgs = msgs[len(msgs)-tail:]
			}

			if len(msgs) == 0 {
				fmt.Println("No messages.")
				return nil
			}
			for _, m := range msgs {
				printMessage(m, cfg.Actor.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 0, "only show the last N messages")
	return cmd
}

func printMessage(m domain.Message, actorID string) {
	who := m.SenderID
	if m.SenderID == actorID {
		who = "you"
	}

	line := fmt.Sprintf("[%s] %s: %s", m.CreatedAt.Format(time.Stamp), who, m.Content)
	for _, a := range m.Attachments {
		line += fmt.Sprintf(" <%s %s>", a.Kind, a.Name)
	}
	if len(m.ProductReferences) > 0 {
		line += fmt.Sprintf(" (products: %s)", strings.Join(m.ProductReferences, ", "))
	}
	fmt.Println(line)
}

func newMessagesSendCmd() *cobra.Command {
	var (
		files    []string
		products []string
	)

	cmd := &cobra.Command{
		Use:   "send <conversation-id> [text...]",
		Short: "Send a message, optionally with attachments or product references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			content := strings.Join(args[1:], " ")

			// Attachments are validated locally before anything goes out.
			var attachments []domain.Attachment
			for _, path := range files {
				att, err := upload.Inspect(path)
				if err != nil {
					return err
				}
				attachments = append(attachments, att)
			}

			candidate := domain.Message{
				Content:           content,
				Attachments:       attachments,
				ProductReferences: products,
			}
			if err := candidate.Validate(); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			msg, err := client.SendMessage(ctx, args[0], api.SendMessageRequest{
				Content:           content,
				Attachments:       attachments,
				ProductReferences: products,
			})
			if err != nil {
				return describeAPIError(err, args[0])
			}

			fmt.Printf("Sent %s\n", msg.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "file", nil, "attach a local file (repeatable)")
	cmd.Flags().StringSliceVar(&products, "product", nil, "reference a product id (repeatable)")
	return cmd
}
