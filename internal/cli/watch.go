package cli

import (
	"context"
	"io"

	"github.com/cookie-jar-solutions/honey"
	"github.com/cookie-jar-solutions/honey/internal/presentation/tui"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
)

// RunWatch renders a prompt and renders it again every time the prompt directory changes.
// It is the prompt author's loop: edit a .hny file, see the result.
func RunWatch(ctx *SignalContext, opts Options, name string, w io.Writer) error {
	logger := createLogger(opts.Debug)
	tui.PrintBanner(w, honey.Version)

	lib, err := OpenLibrary(opts, logger)
	if err != nil {
		return err
	}
	vars, err := ParseVars(opts.Vars)
	if err != nil {
		return err
	}
	changes, err := lib.Watch(ctx)
	if err != nil {
		return err
	}
	render := createRenderer(opts.Markdown)

	printSystemMessage(w, "Watching '%s' for prompt '%s'.", opts.Dir, name)
	renderOnce(ctx, lib, name, vars, render, w)

	for {
		select {
		case <-ctx.Done():
			if ctx.Signal() != nil {
				printSystemMessage(w, "Stopped by %v.", ctx.Signal())
			}
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, rendering again", "prompt", name)
			printSystemMessage(w, "Change detected.")
			renderOnce(ctx, lib, name, vars, render, w)
		}
	}
}

// renderOnce reports render errors inline; a broken template is a normal state while editing.
func renderOnce(ctx context.Context, lib *honey.Library, name string, vars domain.Vars, render tui.Renderer, w io.Writer) {
	text, err := lib.Render(ctx, name, vars)
	if err != nil {
		printSystemMessage(w, "Error: %v", err)
		return
	}
	if err := printReply(w, render, text); err != nil {
		printSystemMessage(w, "Error: %v", err)
	}
}
