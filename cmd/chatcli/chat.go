package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s21platform/messenger-service/pkg/chatclient"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

var chatGroup bool

var chatCmd = &cobra.Command{
	Use:   "chat <user-id | group-id>",
	Short: "Open a live chat",
	Long: `Open a live chat with a user, or with a group when --group is set.
Type a line to send it. /react <message-id> <emoji> reacts to a message,
/typing shows you as typing and /quit leaves.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runChat(ctx, args[0])
	},
}

func runChat(ctx context.Context, target string) error {
	wsURL, err := realtimeURL()
	if err != nil {
		return err
	}

	token, _, err := client.RealtimeToken(ctx)
	if err != nil {
		return err
	}

	session := chatclient.NewSession(logger)
	if err := session.Dial(ctx, wsURL, token); err != nil {
		return err
	}
	defer session.Close()

	store := chatclient.NewStore(client, logger)
	defer store.Wait()

	view := chatclient.NewChatView(userID, chatclient.NewResolver(client, userID), store, session,
		chatclient.WithViewLogger(logger),
		chatclient.WithUsername(username),
	)
	defer view.Close()

	if chatGroup {
		err = view.OpenGroup(ctx, target)
	} else {
		err = view.OpenDirect(ctx, target)
	}
	if err != nil {
		return err
	}

	r := newRenderer(view.Thread(), target)
	view.Thread().OnChange(r.render)
	r.render()

	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-session.Done():
			return errors.New("realtime connection closed")
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(ctx, view, line); quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, view *chatclient.ChatView, line string) bool {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return false
	case line == "/quit":
		return true
	case line == "/typing":
		if err := view.NotifyTyping(ctx); err != nil {
			logger.Warn(fmt.Sprintf("typing signal failed: %v", err))
		}
		return false
	case strings.HasPrefix(line, "/react "):
		fields := strings.Fields(line)
		if len(fields) != 3 {
			notice.Println("usage: /react <message-id> <emoji>")
			return false
		}
		if err := view.React(ctx, fields[1], fields[2]); err != nil {
			notice.Println(err)
		}
		return false
	}

	if err := view.Send(ctx, line); err != nil {
		notice.Println(err)
	}
	return false
}

// renderer prints what changed in a thread since the last call.
type renderer struct {
	thread *chatclient.Thread
	peerID string

	mu       sync.Mutex
	printed  map[string]protocol.Status
	typing   string
	online   bool
	headered bool
}

func newRenderer(thread *chatclient.Thread, peerID string) *renderer {
	return &renderer{thread: thread, peerID: peerID, printed: make(map[string]protocol.Status)}
}

func (r *renderer) render() {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := r.thread.Messages()
	if !r.headered {
		r.headered = true
		dim.Printf("--- %s ---\n", r.thread.Room())
		if len(messages) == 0 {
			dim.Println("No messages yet. Say hi!")
		}
	}

	for _, msg := range messages {
		status, seen := r.printed[msg.ID]
		switch {
		case !seen:
			printMessage(msg)
		case msg.SenderID == userID && status != msg.Status:
			dim.Printf("  %s: %s\n", msg.ID, protocol.StatusText(msg.Status))
		}
		r.printed[msg.ID] = msg.Status
	}

	if r.thread.Kind() == protocol.KindDirect {
		if online := r.thread.IsOnline(r.peerID); online != r.online {
			r.online = online
			state := "offline"
			if online {
				state = "online"
			}
			notice.Printf("%s is %s\n", r.peerID, state)
		}
	}

	typing := strings.Join(r.thread.TypingUsers(), ", ")
	if typing != r.typing {
		r.typing = typing
		if typing != "" {
			dim.Printf("%s typing...\n", typing)
		}
	}
}

func init() {
	chatCmd.Flags().BoolVarP(&chatGroup, "group", "g", false, "Treat the argument as a group id")

	rootCmd.AddCommand(chatCmd)
}
