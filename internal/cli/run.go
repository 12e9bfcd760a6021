package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/task"
	"gopkg.in/yaml.v3"
)

// RunRender prints the rendered prompt without calling any executor.
func RunRender(ctx context.Context, opts Options, name string, w io.Writer) error {
	logger := createLogger(opts.Debug)
	lib, err := OpenLibrary(opts, logger)
	if err != nil {
		return err
	}
	vars, err := ParseVars(opts.Vars)
	if err != nil {
		return err
	}

	text, err := lib.Render(ctx, name, vars)
	if err != nil {
		return err
	}
	return printReply(w, createRenderer(opts.Markdown), text)
}

// RunOnce renders a prompt, sends it to the configured executor and prints the reply.
// With async set the prompt goes through the suspending path.
func RunOnce(ctx context.Context, opts Options, name string, async bool, w io.Writer) error {
	logger := createLogger(opts.Debug)
	lib, err := OpenLibrary(opts, logger)
	if err != nil {
		return err
	}
	vars, err := ParseVars(opts.Vars)
	if err != nil {
		return err
	}
	ex, err := NewExecutor(lib, opts)
	if err != nil {
		return err
	}

	var reply string
	if async {
		err = jar.UseAsync(ctx, ex, func(ctx context.Context) error {
			reply, err = lib.CallAsync(ctx, name, vars).Await(ctx)
			return err
		})
	} else {
		err = jar.Use(ctx, ex, func(ctx context.Context) error {
			reply, err = lib.Call(ctx, name, vars)
			return err
		})
	}
	if err != nil {
		return handleExecutionError(err)
	}

	logger.Debug("Run finished", "prompt", name, "backend", ex.Backend(), "tokens", ex.TotalTokens())
	return printReply(w, createRenderer(opts.Markdown), reply)
}

// BatchResult is one line of batch output.
type BatchResult struct {
	Vars   domain.Vars `yaml:"vars" json:"vars"`
	Reply  string      `yaml:"reply,omitempty" json:"reply,omitempty"`
	Tokens int         `yaml:"tokens" json:"tokens"`
}

// ReadBatch reads a YAML or JSON list of variable sets. "-" reads stdin.
func ReadBatch(path string) ([]domain.Vars, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch input: %w", err)
	}

	var items []domain.Vars
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse batch input: %w", err)
	}
	return items, nil
}

// RunBatch invokes the prompt once per variable set, concurrently on the suspending path.
// Every item gets its own executor so their conversations stay apart.
// Results are written as a YAML list in input order.
func RunBatch(ctx context.Context, opts Options, name string, items []domain.Vars, w io.Writer) error {
	logger := createLogger(opts.Debug)
	lib, err := OpenLibrary(opts, logger)
	if err != nil {
		return err
	}
	common, err := ParseVars(opts.Vars)
	if err != nil {
		return err
	}

	executors := make([]jar.Executor, len(items))
	futures := make([]*task.Future[string], len(items))
	for i, item := range items {
		vars := merge(common, item)
		items[i] = vars

		ex, err := NewExecutor(lib, opts)
		if err != nil {
			return err
		}
		executors[i] = ex

		itemCtx, tok := jar.EnterAsync(ctx, ex)
		futures[i] = lib.CallAsync(itemCtx, name, vars)
		_ = jar.ExitAsync(tok)
	}

	replies, err := task.Gather(ctx, futures...)
	if err != nil {
		return handleExecutionError(err)
	}

	results := make([]BatchResult, len(items))
	for i := range items {
		results[i] = BatchResult{Vars: items[i], Reply: replies[i], Tokens: executors[i].TotalTokens()}
	}
	logger.Debug("Batch finished", "prompt", name, "items", len(items))

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(results)
}

func merge(base, over domain.Vars) domain.Vars {
	out := make(domain.Vars, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
