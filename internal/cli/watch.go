package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/directory"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/presence"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/push"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/session"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/store"
	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/templates"
)

func newWatchCmd() *cobra.Command {
	var noPush bool

	cmd := &cobra.Command{
		Use:   "watch <conversation-id>",
		Short: "Open a conversation and stream it live",
		Long: `Open a conversation: new messages print as they arrive, typed lines are
sent as replies. Lines starting with "/" expand quick-response shortcuts;
/mute and /unmute toggle the new-message bell, /quit exits.`,
		Args: cobra.ExactArgs(1),
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

			// Draft store: SQLite survives restarts, memory is for throwaway runs.
			var drafts session.DraftStore
			if cfg.Drafts.Store == "memory" {
				drafts = store.NewMemoryDraftStore()
				log.Info().Msg("using in-memory draft store")
			} else {
				if err := paths.EnsureDirs(); err != nil {
					return fmt.Errorf("preparing data directories: %w", err)
				}
				db, err := store.Open(paths.DraftDB(), log)
				if err != nil {
					return fmt.Errorf("opening draft database: %w", err)
				}
				defer db.Close()
				drafts = store.NewSQLiteDraftStore(db)
			}

			// Resolve the conversation through the directory.
			dir := directory.New(client, cfg.Actor.ID, actorRole(cfg), log)
			if err := dir.Refresh(ctx); err != nil {
				return err
			}
			conv, ok := dir.Get(args[0])
			if !ok {
				return fmt.Errorf("conversation %q not found", args[0])
			}

			mgr := session.NewManager(client, cfg.Actor.ID, session.Config{
				PollInterval:     cfg.Sync.PollInterval(),
				PollPushInterval: cfg.Sync.PollPushInterval(),
			}, log)
			mgr.SetDraftStore(drafts)
			mgr.SetTypingIdle(session.TypingIdle{IdleTimeout: cfg.Sync.TypingIdle()})

			// Own presence: heartbeat while running, offline beacon on the way out.
			reporter := presence.NewReporter(client, cfg.Sync.HeartbeatInterval(), log)
			reporter.Start(ctx)
			defer reporter.Stop()

			// Counterpart presence.
			var watcher *presence.Watcher
			peer, hasPeer := conv.Counterpart(actorRole(cfg))
			if hasPeer && peer.ID != "" {
				watcher = presence.NewWatcher(client, peer.ID, cfg.Sync.PeerPollInterval(), log)
			}

			out := newWatchPrinter(cfg.Actor.ID, peerName(peer))

			// Push socket: accelerates delivery, never required for correctness.
			pushURL := pushEndpoint(cfg)
			if !noPush && pushURL != "" {
				listener := push.NewListener(push.ListenerConfig{
					URL:   pushURL,
					Token: cfg.API.Token,
				}, log)
				listener.OnEvent(func(evt push.Event) {
					switch evt.Event {
					case push.EventNewMessage, push.EventMessagesRead, push.EventConversationUpdated:
						mgr.Nudge(evt.ConversationID)
					case push.EventPresence:
						if watcher == nil {
							return
						}
						if p, err := evt.Presence(); err == nil {
							watcher.Apply(p)
						}
					case push.EventTyping:
						if evt.ConversationID != conv.ID {
							return
						}
						if t, err := evt.Typing(); err == nil {
							out.typing(t.Typing)
						}
					}
				})
				listener.Start(ctx)
				defer listener.Stop()
				mgr.SetPush(listener, listener.Connected)
			}

			if watcher != nil {
				watcher.OnChange(out.presence)
				watcher.Start(ctx)
				defer watcher.Stop()
			}

			// Quick-response shortcuts; an empty cache just means no expansion.
			tpls := templates.NewManager(client, log)
			if err := tpls.Refresh(ctx); err != nil {
				log.Debug().Err(err).Msg("template shortcuts unavailable")
			}

			// Registered last so the session closes first: its typing-clear
			// frame needs the socket and its draft write needs the database.
			defer mgr.CloseActive()

			sess, err := mgr.Select(ctx, conv)
			if err != nil {
				// The session keeps polling and recovers on its own.
				log.Warn().Err(err).Msg("initial load failed, retrying in background")
			}

			sess.OnUpdate(func() { out.render(sess) })
			sess.OnScrollToLatest(out.bell)
			// A send reorders the listing; the cached one is stale from here.
			sess.OnSent(dir.Invalidate)
			out.render(sess)

			if d := sess.Draft(); d.Content != "" {
				fmt.Printf("(restored draft: %s)\n", d.Content)
			}

			return watchInputLoop(ctx, sess, tpls, out)
		},
	}

	cmd.Flags().BoolVar(&noPush, "no-push", false, "poll only, never dial the push socket")

	return cmd
}

func peerName(p domain.Participant) string {
	if p.Name != "" {
		return p.Name
	}
	if p.ID != "" {
		return p.ID
	}
	return "counterpart"
}

// watchInputLoop reads stdin lines and turns them into sends until EOF,
// /quit, or a signal.
func watchInputLoop(ctx context.Context, sess *session.Session, tpls *templates.Manager, out *watchPrinter) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if strings.HasPrefix(line, "/") {
				switch line {
				case "/quit":
					return nil
				case "/mute":
					sess.SetMinimized(true)
					continue
				case "/unmute":
					sess.SetMinimized(false)
					continue
				}
				if t, ok := tpls.ByShortcut(line); ok {
					line = tpls.Apply(t)
				} else {
					fmt.Printf("unknown command or shortcut %q\n", line)
					continue
				}
			}

			// Compose first so a failed send leaves the line in the draft.
			sess.Compose(line)
			if _, err := sess.Send(ctx, line, nil, nil); err != nil {
				fmt.Printf("send failed: %v (draft kept)\n", err)
			}
		}
	}
}

// watchPrinter serializes terminal output from the session, presence, and
// typing callbacks, which arrive on different goroutines.
type watchPrinter struct {
	actorID  string
	peerName string

	mu          sync.Mutex
	printed     int
	typingShown bool
	lastErr     string
}

func newWatchPrinter(actorID, peerName string) *watchPrinter {
	return &watchPrinter{actorID: actorID, peerName: peerName}
}

// render prints messages that arrived since the last call.
func (w *watchPrinter) render(sess *session.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msgs := sess.Messages()
	if w.printed > len(msgs) {
		w.printed = len(msgs)
	}
	for _, m := range msgs[w.printed:] {
		printMessage(m, w.actorID)
	}
	w.printed = len(msgs)

	// Report sync trouble once per distinct error, not once per poll.
	if err := sess.LastError(); err != nil {
		if msg := err.Error(); msg != w.lastErr {
			w.lastErr = msg
			fmt.Printf("(connection trouble: %v — showing last known messages)\n", err)
		}
	} else {
		w.lastErr = ""
	}
}

func (w *watchPrinter) typing(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if active && !w.typingShown {
		fmt.Printf("(%s is typing…)\n", w.peerName)
	}
	w.typingShown = active
}

func (w *watchPrinter) presence(p domain.Presence) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p.IsOnline {
		fmt.Printf("● %s is online\n", w.peerName)
	} else {
		fmt.Printf("○ %s is offline\n", w.peerName)
	}
}

// bell rings the terminal on live arrivals; muted sessions stay quiet.
func (w *watchPrinter) bell() {
	fmt.Print("\a")
}
