package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s21platform/messenger-service/pkg/chatclient"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"dm"},
	Short:   "List your direct conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		conversations, err := client.Conversations(cmd.Context())
		if err != nil {
			return err
		}

		if len(conversations) == 0 {
			dim.Println("No conversations yet")
			return nil
		}

		rows := make([][]string, 0, len(conversations))
		for _, c := range conversations {
			last := ""
			if c.LastMessageAt != nil {
				last = c.LastMessageAt.Local().Format("2006-01-02 15:04")
			}
			rows = append(rows, []string{c.ID, participantNames(c), deref(c.LastMessage), last, strconv.Itoa(c.UnreadCount)})
		}
		printTable([]string{"id", "with", "last message", "at", "unread"}, rows)
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <user-id>",
	Short: "Find or create the conversation with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := chatclient.NewResolver(client, userID).ResolveDirectConversation(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	},
}

var historyGroup bool

var historyCmd = &cobra.Command{
	Use:   "history <user-id | group-id>",
	Short: "Print the message history of a conversation or group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, roomID := protocol.KindGroup, args[0]
		if !historyGroup {
			id, err := chatclient.NewResolver(client, userID).ResolveDirectConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			kind, roomID = protocol.KindDirect, id
		}

		printHistory(chatclient.NewStore(client, logger).FetchHistory(cmd.Context(), roomID, kind))
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <user-id> <message...>",
	Short: "Send a direct message over REST",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := client.SendMessage(cmd.Context(), chatclient.SendMessageRequest{
			SenderID:    userID,
			RecipientID: args[0],
			Content:     strings.Join(args[1:], " "),
		})
		if err != nil {
			return err
		}

		success.Printf("sent %s to conversation %s\n", msg.ID, msg.ConversationID)
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVarP(&historyGroup, "group", "g", false, "Treat the argument as a group id")

	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sendCmd)
}
