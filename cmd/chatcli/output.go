package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/s21platform/messenger-service/pkg/chatclient"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

var (
	dim     = color.New(color.FgHiBlack)
	self    = color.New(color.FgCyan, color.Bold)
	peer    = color.New(color.FgGreen, color.Bold)
	notice  = color.New(color.FgYellow)
	success = color.New(color.FgGreen)
)

func printTable(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(header, "\t")))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func printMessage(msg protocol.Message) {
	ts := dim.Sprint(msg.CreatedAt.Local().Format("15:04:05"))

	sender := msg.SenderName
	if sender == "" {
		sender = msg.SenderID
	}

	name := peer.Sprint(sender)
	status := ""
	if msg.SenderID == userID {
		name = self.Sprint("you")
		status = dim.Sprintf(" [%s]", protocol.StatusText(msg.Status))
	}

	line := fmt.Sprintf("%s %s: %s%s", ts, name, msg.Content, status)
	if len(msg.Reactions) > 0 {
		emojis := make([]string, 0, len(msg.Reactions))
		for _, r := range msg.Reactions {
			emojis = append(emojis, r.Emoji)
		}
		line += " " + strings.Join(emojis, "")
	}
	fmt.Println(line)
}

func printHistory(messages []protocol.Message) {
	if len(messages) == 0 {
		dim.Println("No messages yet. Say hi!")
		return
	}
	for _, msg := range messages {
		printMessage(msg)
	}
}

func participantNames(c chatclient.Conversation) string {
	names := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.ID == userID {
			continue
		}
		if p.Username != "" {
			names = append(names, p.Username)
		} else {
			names = append(names, p.ID)
		}
	}
	return strings.Join(names, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
