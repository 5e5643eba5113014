package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s21platform/messenger-service/pkg/chatclient"
)

var (
	serverURL string
	userID    string
	username  string
	timeout   time.Duration
	verbose   bool

	logger charmLogger
	client *chatclient.Client
)

var rootCmd = &cobra.Command{
	Use:   "chatcli",
	Short: "Terminal client for the messenger service",
	Long: `chatcli talks to the messenger REST API and realtime channel
as a single user. It lists conversations and groups, reads history
and opens a live chat in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return errors.New("--user or MESSENGER_USER is required")
		}
		if username == "" {
			username = userID
		}

		logger = newLogger(verbose)
		client = chatclient.NewClient(serverURL, userID,
			chatclient.WithTimeout(timeout),
			chatclient.WithLogger(logger),
		)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realtimeURL turns the REST base url into the websocket endpoint.
func realtimeURL() (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"

	return u.String(), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("MESSENGER_SERVER", "http://localhost:8080"), "Messenger base url")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("MESSENGER_USER"), "Acting user uuid")
	rootCmd.PersistentFlags().StringVar(&username, "name", "", "Display name sent with group messages (default: user uuid)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "REST request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(searchCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
