package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"loan-assistant/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive loan conversation",
	Long: `Start an interactive loan conversation in the terminal.

Type your replies at the prompt. The session ends when a sanction is
issued, the conversation is handed to a human, or you type "exit".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), assistant.Sessions, assistant.Extractor, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

const greeting = "Hi! I can help you with a personal loan. What's your name?"

func runChat(ctx context.Context, sessions *service.SessionManager, extractor service.Extractor, in io.Reader, out io.Writer) error {
	s := sessions.Create()
	defer sessions.End(s.ID)

	fmt.Fprintln(out, greeting)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		current, err := sessions.Get(s.ID)
		if err != nil {
			return err
		}
		turn, err := extractor.Extract(ctx, text, current.Gate)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		output, err := sessions.Turn(ctx, s.ID, turn)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, render(output))
		if output.Gate.Terminal() {
			return nil
		}
	}
}
