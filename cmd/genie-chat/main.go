package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirotachi/genie-cli-chat/pkg/chat"
	"github.com/hirotachi/genie-cli-chat/pkg/client"
	"github.com/hirotachi/genie-cli-chat/pkg/config"
	"github.com/hirotachi/genie-cli-chat/pkg/utils"
)

func main() {
	var (
		serverURL string
		author    string
		title     string
		logPath   string
	)

	rootCmd := &cobra.Command{
		Use:           "genie-chat",
		Short:         "Terminal chat with a Genie verification control",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile, err := utils.OpenLogFile(logPath)
			if err != nil {
				return fmt.Errorf("could not open log file: %w", err)
			}
			defer logFile.Close()
			logger := utils.NewJSONLogger(logFile)
			logger.Info().Str("server", serverURL).Msg("starting chat")

			chatApp := client.NewChatApp(client.Options{
				ServerURL: serverURL,
				Author:    author,
				Title:     title,
				Logger:    logger,
			})
			return chatApp.Run()
		},
	}
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", config.ServerURL(), "genie server base URL")
	rootCmd.Flags().StringVarP(&author, "author", "a", chat.DefaultAuthor, "name shown on your messages")
	rootCmd.Flags().StringVarP(&title, "title", "t", "Basic Chat", "chat title")
	rootCmd.Flags().StringVar(&logPath, "log-file", "genie-chat.log", "where diagnostics are written")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
