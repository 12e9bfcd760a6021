package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cookie-jar-solutions/honey/pkg/prompt"
)

// RunList prints every prompt name, and with withVars the variables each one expects.
func RunList(ctx context.Context, opts Options, withVars bool, w io.Writer) error {
	lib, err := OpenLibrary(opts, createLogger(opts.Debug))
	if err != nil {
		return err
	}

	if !withVars {
		names, err := lib.Names(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
		return nil
	}

	infos, err := prompt.Catalog(ctx, lib.Store())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROMPT\tVARIABLES")
	for _, info := range infos {
		names := make([]string, 0, len(info.Arguments))
		for _, arg := range info.Arguments {
			names = append(names, arg.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, strings.Join(names, ", "))
	}
	return tw.Flush()
}
