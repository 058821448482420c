package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"contractguard-web/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat [job] [question]",
	Short: "Ask the assistant about an audit",
	Long: `Asks the audit assistant about a job. With a question argument one answer
is printed; without one questions are read from stdin until EOF.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()
	jobID := args[0]
	svc := chat.NewService(api)

	ask := func(question string) error {
		reply, err := svc.Ask(ctx, "cli", jobID, question)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, reply)
		}
		return streamAnswer(ctx, out, reply.Answer.Content, svc)
	}

	if len(args) > 1 {
		return ask(strings.Join(args[1:], " "))
	}

	if !jsonOutput {
		fmt.Fprintln(out, chat.Greeting)
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if !jsonOutput {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if err := ask(question); err != nil {
			return err
		}
	}
}

// streamAnswer writes the answer as it grows, printing only the new suffix of
// each prefix.
func streamAnswer(ctx context.Context, w io.Writer, answer string, svc *chat.Service) error {
	written := 0
	err := chat.Stream(ctx, answer, svc.StreamDelay, func(prefix string) error {
		_, err := io.WriteString(w, prefix[written:])
		written = len(prefix)
		return err
	})
	fmt.Fprintln(w)
	return err
}
