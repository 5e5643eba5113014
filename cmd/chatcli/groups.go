package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage group chats",
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := client.Groups(cmd.Context())
		if err != nil {
			return err
		}

		if len(groups) == 0 {
			dim.Println("You are not in any group")
			return nil
		}

		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			role := ""
			if g.AdminID == userID {
				role = "admin"
			}
			rows = append(rows, []string{g.ID, g.Name, fmt.Sprint(len(g.MemberIDs)), role})
		}
		printTable([]string{"id", "name", "members", ""}, rows)
		return nil
	},
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name> [member-id...]",
	Short: "Create a group with you as admin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := client.CreateGroup(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}

		success.Printf("created group %s (%s)\n", group.Name, group.ID)
		return nil
	},
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Join a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := client.JoinGroup(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		success.Printf("joined %s\n", group.Name)
		return nil
	},
}

var groupLeaveCmd = &cobra.Command{
	Use:   "leave <group-id>",
	Short: "Leave a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		left, err := client.LeaveGroup(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !left {
			notice.Println("you were not a member")
			return nil
		}
		success.Println("left the group")
		return nil
	},
}

var groupMembersCmd = &cobra.Command{
	Use:   "members <group-id>",
	Short: "List the members of a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		members, err := client.GroupMembers(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		names := make([]string, 0, len(members))
		for _, m := range members {
			names = append(names, fmt.Sprintf("%s (%s)", m.Username, m.ID))
		}
		fmt.Println(strings.Join(names, "\n"))
		return nil
	},
}

func init() {
	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupJoinCmd)
	groupCmd.AddCommand(groupLeaveCmd)
	groupCmd.AddCommand(groupMembersCmd)

	rootCmd.AddCommand(groupCmd)
}
