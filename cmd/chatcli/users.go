package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a realtime connection token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, expiresAt, err := client.RealtimeToken(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(token)
		dim.Printf("expires at %s\n", expiresAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search users by username or email",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := client.SearchUsers(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if len(users) == 0 {
			dim.Println("No users found")
			return nil
		}

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			online := ""
			if u.IsOnline {
				online = "online"
			}
			rows = append(rows, []string{u.ID, u.Username, u.Email, online})
		}
		printTable([]string{"id", "username", "email", ""}, rows)
		return nil
	},
}
