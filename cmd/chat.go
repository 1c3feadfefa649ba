package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/jwhyun/finbot/internal/chat"
)

var chatUsername string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot from the terminal",
	Long: `Opens an interactive REPL against the chatbot without starting the
HTTP server. The conversation keeps one session for its whole lifetime, so
the profile dialogue behaves exactly as it does over the API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		ctx := context.Background()
		a, err := buildApp(ctx, cfg)
		exitOnError(err)
		defer a.Close()

		fmt.Println("finbot 대화를 시작합니다. (종료: exit 또는 Ctrl+C)")

		prompt := promptui.Prompt{Label: "나"}
		sessionID := ""
		for {
			text, err := prompt.Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				fmt.Println("대화를 종료합니다.")
				return
			}
			exitOnError(err)

			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if text == "exit" || text == "quit" || text == "종료" {
				fmt.Println("대화를 종료합니다.")
				return
			}

			resp := a.service.Turn(ctx, chat.TurnRequest{
				SessionID: sessionID,
				Username:  chatUsername,
				Message:   text,
			})
			sessionID = resp.SessionID
			fmt.Printf("봇: %s\n", resp.Response)
		}
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatUsername, "user", "u", "anonymous", "username for the durable profile")
	rootCmd.AddCommand(chatCmd)
}
