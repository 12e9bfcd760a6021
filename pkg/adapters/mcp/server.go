// Package mcp serves a template store over the Model Context Protocol.
//
// Every template is published as an MCP prompt; prompts/get renders it with
// the client's arguments. Tools let the client render a prompt or run it as a
// turn of a server-side executor session.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cookie-jar-solutions/honey/internal/logging"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
	"github.com/cookie-jar-solutions/honey/pkg/prompt"
	"github.com/cookie-jar-solutions/honey/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource listing every prompt.
const CatalogURI = "honey://prompts"

// RenderArgs are the arguments of the render_prompt tool.
type RenderArgs struct {
	Name string      `json:"name"`
	Vars domain.Vars `json:"vars,omitempty"`
}

// InvokeArgs are the arguments of the invoke_prompt tool.
type InvokeArgs struct {
	Name      string      `json:"name"`
	Vars      domain.Vars `json:"vars,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
}

// InvokeResult aligns with the HTTP invoke response.
type InvokeResult struct {
	SessionID string `json:"session_id" jsonschema_description:"Session the turn was added to"`
	Reply     string `json:"reply" jsonschema_description:"The executor reply"`
	Messages  int    `json:"messages" jsonschema_description:"Messages in the session after the turn"`
	Tokens    int    `json:"tokens" jsonschema_description:"Tokens consumed by the session so far"`
}

// Server exposes a template store as an MCP Server.
type Server struct {
	store     ports.TemplateStore
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*options)

type options struct {
	version string
	logger  *slog.Logger
}

// WithVersion sets the version announced during initialization.
func WithVersion(v string) Option {
	return func(o *options) {
		o.version = v
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewServer creates an MCP server publishing every template in store.
// sessions backs the invoke_prompt tool.
func NewServer(ctx context.Context, store ports.TemplateStore, sessions *session.Manager, opts ...Option) (*Server, error) {
	o := options{version: "dev", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		store:    store,
		sessions: sessions,
		mcpServer: server.NewMCPServer("honey-mcp", o.version,
			server.WithPromptCapabilities(true),
			server.WithRecovery(),
		),
		logger: o.logger,
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer exposes the underlying server, for in-process transports and tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Refresh republishes the prompt list from the store.
func (s *Server) Refresh(ctx context.Context) error {
	infos, err := prompt.Catalog(ctx, s.store)
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}

	prompts := make([]server.ServerPrompt, 0, len(infos))
	for _, info := range infos {
		prompts = append(prompts, server.ServerPrompt{
			Prompt:  toPrompt(info),
			Handler: s.promptHandler(info),
		})
	}
	s.mcpServer.SetPrompts(prompts...)
	s.logger.Debug("MCP prompts published", "count", len(prompts))
	return nil
}

// Watch refreshes the prompt list whenever a watchable store changes, until ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	w, ok := s.store.(ports.Watchable)
	if !ok {
		return nil
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range changes {
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("MCP prompt refresh failed", "err", err)
			}
		}
	}()
	return nil
}

func toPrompt(info domain.PromptInfo) mcp.Prompt {
	opts := []mcp.PromptOption{}
	if info.Description != "" {
		opts = append(opts, mcp.WithPromptDescription(info.Description))
	}
	for _, arg := range info.Arguments {
		argOpts := []mcp.ArgumentOption{}
		if arg.Description != "" {
			argOpts = append(argOpts, mcp.ArgumentDescription(arg.Description))
		}
		if arg.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(arg.Name, argOpts...))
	}
	return mcp.NewPrompt(info.Name, opts...)
}

func (s *Server) promptHandler(info domain.PromptInfo) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		vars := make(domain.Vars, len(request.Params.Arguments))
		for k, v := range request.Params.Arguments {
			vars[k] = v
		}

		text, err := prompt.Bind(s.store, info.Name).Render(ctx, vars)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", info.Name, err)
		}
		return mcp.NewGetPromptResult(info.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}

func (s *Server) registerTools() {
	// TOOL: list_prompts
	s.mcpServer.AddTool(mcp.NewTool("list_prompts",
		mcp.WithDescription("List every prompt with its arguments."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		infos, err := prompt.Catalog(ctx, s.store)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("list failed", err), nil
		}
		jsonBytes, _ := json.Marshal(infos)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: render_prompt
	renderTool := mcp.NewTool("render_prompt",
		mcp.WithDescription("Render a prompt template with variables. No model is called."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Prompt name")),
		mcp.WithObject("vars", mcp.Description("Template variables"), mcp.AdditionalProperties(true)),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewTypedToolHandler(s.handleRender))

	// TOOL: invoke_prompt
	invokeTool := mcp.NewTool("invoke_prompt",
		mcp.WithDescription("Render a prompt and send it as a turn of a server-side conversation."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Prompt name")),
		mcp.WithObject("vars", mcp.Description("Template variables"), mcp.AdditionalProperties(true)),
		mcp.WithString("session_id", mcp.Description("Conversation to continue; a new one is started when omitted")),
		mcp.WithOutputSchema[InvokeResult](),
	)
	s.mcpServer.AddTool(invokeTool, mcp.NewStructuredToolHandler(s.handleInvoke))
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args RenderArgs) (*mcp.CallToolResult, error) {
	text, err := prompt.Bind(s.store, args.Name).Render(ctx, args.Vars)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("render failed", err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleInvoke(ctx context.Context, request mcp.CallToolRequest, args InvokeArgs) (InvokeResult, error) {
	if args.SessionID == "" {
		args.SessionID = uuid.NewString()
	}

	p := prompt.Bind(s.store, args.Name)
	if _, err := p.Template(ctx); err != nil {
		return InvokeResult{}, fmt.Errorf("invoke failed: %w", err)
	}

	var res InvokeResult
	err := s.sessions.Run(ctx, args.SessionID, func(ctx context.Context, ex jar.Executor) error {
		reply, err := p.Call(ctx, args.Vars)
		if err != nil {
			return err
		}
		res = InvokeResult{
			SessionID: args.SessionID,
			Reply:     reply,
			Messages:  ex.MessageCount(),
			Tokens:    ex.TotalTokens(),
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("MCP invoke failed", "prompt", args.Name, "session_id", args.SessionID, "err", err)
		return InvokeResult{}, fmt.Errorf("invoke failed: %w", err)
	}
	return res, nil
}

func (s *Server) registerResources() {
	// EXPOSE: honey://prompts
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Prompt Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		infos, err := prompt.Catalog(ctx, s.store)
		if err != nil {
			return nil, fmt.Errorf("failed to list prompts: %w", err)
		}
		jsonBytes, _ := json.Marshal(infos)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
