package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
)

// RunChat starts an interactive conversation with the configured executor.
// When name is set, the rendered prompt is sent as the first turn.
// Lines read from in are sent verbatim; /reset, /history and /exit are handled locally.
func RunChat(ctx context.Context, opts Options, name string, in io.Reader, w io.Writer) error {
	logger := createLogger(opts.Debug)
	lib, err := OpenLibrary(opts, logger)
	if err != nil {
		return err
	}
	ex, err := NewExecutor(lib, opts)
	if err != nil {
		return err
	}
	render := createRenderer(opts.Markdown)

	printSystemMessage(w, "Chatting with '%s'. Type /exit to quit.", ex.Backend())

	if name != "" {
		vars, err := ParseVars(opts.Vars)
		if err != nil {
			return err
		}
		var reply string
		err = jar.Use(ctx, ex, func(ctx context.Context) error {
			reply, err = lib.Call(ctx, name, vars)
			return err
		})
		if err != nil {
			return handleExecutionError(err)
		}
		if err := printReply(w, render, reply); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return handleExecutionError(scanner.Err())
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			printSystemMessage(w, "Bye. %d messages, %d tokens.", ex.MessageCount(), ex.TotalTokens())
			return nil
		case "/reset":
			ex.ClearHistory()
			printSystemMessage(w, "History cleared.")
			continue
		case "/history":
			printHistory(w, ex.History())
			continue
		}

		line, err := SanitizeInput(line)
		if err != nil {
			printSystemMessage(w, "Error: %v", err)
			continue
		}

		reply, err := ex.Execute(ctx, line, domain.Metadata{})
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			// keep the session alive on backend failures
			logger.Warn("Turn failed", "err", err)
			printSystemMessage(w, "Error: %v", err)
			continue
		}
		if err := printReply(w, render, reply); err != nil {
			return err
		}
	}
}

func printHistory(w io.Writer, history []domain.Message) {
	if len(history) == 0 {
		printSystemMessage(w, "History is empty.")
		return
	}
	for i, msg := range history {
		fmt.Fprintf(w, "%3d %-9s %s\n", i+1, msg.Role, firstLine(msg.Content))
	}
}

func firstLine(s string) string {
	line, _, cut := strings.Cut(s, "\n")
	if cut {
		return line + " ..."
	}
	return line
}
