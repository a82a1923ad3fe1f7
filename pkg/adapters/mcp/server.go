package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionID is the session the MCP adapter dispatches against.
const SessionID = "mcp"

// Field describes one bound input of the app.
type Field struct {
	Key   string   `json:"key" jsonschema_description:"State key the input is bound to"`
	Form  string   `json:"form,omitempty" jsonschema_description:"Owning form, empty for top-level inputs"`
	Kind  string   `json:"kind" jsonschema_description:"Component kind, e.g. field or checkbox_group"`
	Label string   `json:"label,omitempty"`
	Items []string `json:"items,omitempty" jsonschema_description:"Allowed values for choice inputs"`
	Value any      `json:"value,omitempty" jsonschema_description:"Current value"`
}

// FormDescription lists the inputs an agent can fill.
type FormDescription struct {
	Fields []Field `json:"fields"`
}

// SubmitArgs is the input of the submit_form tool.
type SubmitArgs struct {
	Values map[string]any `json:"values"`
}

// SubmitResult is the filtered State handed to the waiting agent.
type SubmitResult struct {
	Values map[string]any `json:"values"`
}

// Server exposes a headless app as MCP tools.
type Server struct {
	dispatcher *runtime.Dispatcher
	sessions   *session.Manager
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server over d. State lives in sessions under
// SessionID.
func NewServer(d *runtime.Dispatcher, sessions *session.Manager, version string, opts ...Option) *Server {
	s := &Server{
		dispatcher: d,
		sessions:   sessions,
		mcpServer:  server.NewMCPServer("arbor-mcp", version),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	describe := mcp.NewTool("describe_form",
		mcp.WithDescription("List the inputs of the app with their kinds, allowed values and current values."),
		mcp.WithOutputSchema[FormDescription](),
	)
	s.mcpServer.AddTool(describe, mcp.NewStructuredToolHandler(s.handleDescribe))

	submit := mcp.NewTool("submit_form",
		mcp.WithDescription("Fill the app's inputs and complete the run. Values are coerced like browser input."),
		mcp.WithObject("values", mcp.Required(), mcp.Description("Input values keyed by state key")),
		mcp.WithOutputSchema[SubmitResult](),
	)
	s.mcpServer.AddTool(submit, mcp.NewStructuredToolHandler(s.handleSubmit))

	reset := mcp.NewTool("reset_form",
		mcp.WithDescription("Discard every value entered so far and start over from the defaults."),
		mcp.WithOutputSchema[FormDescription](),
	)
	s.mcpServer.AddTool(reset, mcp.NewStructuredToolHandler(s.handleReset))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("arbor://tree", "Current component tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var tree *domain.Tree
		err := s.sessions.Update(ctx, SessionID, func(ctx context.Context, state domain.State) (domain.State, error) {
			res, err := s.dispatcher.Dispatch(ctx, state, domain.Request{Kind: domain.RequestLoad})
			if err != nil {
				return nil, err
			}
			tree = res.Tree
			return res.State, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild tree: %w", err)
		}
		data, err := json.Marshal(tree.Roots)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://tree",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleDescribe(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (FormDescription, error) {
	var desc FormDescription
	err := s.sessions.Update(ctx, SessionID, func(ctx context.Context, state domain.State) (domain.State, error) {
		res, err := s.dispatcher.Dispatch(ctx, state, domain.Request{Kind: domain.RequestLoad})
		if err != nil {
			return nil, err
		}
		desc = Describe(res.Tree, res.State)
		return res.State, nil
	})
	return desc, err
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args SubmitArgs) (SubmitResult, error) {
	params, err := Params(args.Values)
	if err != nil {
		return SubmitResult{}, err
	}
	var out SubmitResult
	err = s.sessions.Update(ctx, SessionID, func(ctx context.Context, state domain.State) (domain.State, error) {
		res, err := s.dispatcher.Dispatch(ctx, state, domain.Request{Kind: domain.RequestSubmit, Params: params})
		if err != nil {
			return nil, err
		}
		if res.Err != nil {
			return nil, res.Err
		}
		out = SubmitResult{Values: res.Submitted}
		return res.State, nil
	})
	var cbErr *domain.CallbackError
	if errors.As(err, &cbErr) {
		s.logger.ErrorContext(ctx, "submit failed", "err", err)
	}
	return out, err
}

func (s *Server) handleReset(ctx context.Context, req mcp.CallToolRequest, args map[string]any) (FormDescription, error) {
	if err := s.sessions.Delete(ctx, SessionID); err != nil {
		return FormDescription{}, fmt.Errorf("failed to reset: %w", err)
	}
	return s.handleDescribe(ctx, req, args)
}

// Describe lists the inputs of tree in document order, form fields
// included. Form fields report their value from the form's nested map.
func Describe(tree *domain.Tree, state domain.State) FormDescription {
	desc := FormDescription{Fields: []Field{}}
	tree.Walk(func(n *domain.Node) bool {
		if !n.Bound() || !n.Kind.IsInput() {
			return true
		}
		scope := map[string]any(state)
		if n.Form != "" {
			scope, _ = domain.AsMap(state[n.Form])
		}
		desc.Fields = append(desc.Fields, Field{
			Key:   n.Key,
			Form:  n.Form,
			Kind:  string(n.Kind),
			Label: n.Props.Label,
			Items: n.Props.Items,
			Value: scope[n.Key],
		})
		return true
	})
	return desc
}

// Params turns a JSON object into request parameters the way a browser
// would send them: sequences become repeated "key[]" values, true becomes
// "on" and false is omitted so the checkbox absence rule applies.
func Params(values map[string]any) (url.Values, error) {
	params := url.Values{}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch t := values[k].(type) {
		case nil:
		case bool:
			if t {
				params.Add(k, "on")
			}
		case string:
			params.Add(k, t)
		case float64, int, int64:
			params.Add(k, fmt.Sprint(t))
		case []any:
			seq := make([]string, len(t))
			for i, v := range t {
				seq[i] = fmt.Sprint(v)
			}
			params[k+"[]"] = seq
		case []string:
			params[k+"[]"] = append([]string{}, t...)
		default:
			return nil, fmt.Errorf("value %q: unsupported type %T", k, t)
		}
	}
	return params, nil
}
