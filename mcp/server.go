// Package mcp exposes the parse, generate and verify operations of every
// blockchain variant as MCP (Model Context Protocol) tools.
package mcp

import (
	"context"
	"fmt"
	"net/http"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/validation"
)

// Server wraps an MCP server with one tool per variant operation.
type Server struct {
	mcpServer *mcpserver.MCPServer
	tools     []mcpserver.ServerTool
	logger    *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger tool calls are traced to.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server registering <variant>_parse,
// <variant>_generate and <variant>_verify for each variant.
func NewServer(name, version string, variants []authharness.Variant, opts ...Option) *Server {
	s := &Server{
		mcpServer: mcpserver.NewMCPServer(name, version, mcpserver.WithToolCapabilities(false)),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, v := range variants {
		s.addVariant(v)
	}
	s.mcpServer.AddTools(s.tools...)
	return s
}

func (s *Server) addVariant(v authharness.Variant) {
	name := v.Name()

	s.addTool(mcpproto.NewTool(
		name+"_parse",
		mcpproto.WithDescription(fmt.Sprintf("Derive the 20-byte %s account fingerprint of an address, as hex", name)),
		mcpproto.WithString("address", mcpproto.Required(), mcpproto.Description("Account address")),
	), s.parseHandler(v))

	s.addTool(mcpproto.NewTool(
		name+"_generate",
		mcpproto.WithDescription(fmt.Sprintf("Generate the %s message to sign for an address or fingerprint", name)),
		mcpproto.WithString("address", mcpproto.Description("Account address")),
		mcpproto.WithString("pubkeyhash", mcpproto.Description("Hex fingerprint; takes precedence over address")),
		mcpproto.WithString("encoding", mcpproto.Description("Output encoding: hex, base64 or base58 (default)")),
	), s.generateHandler(v))

	s.addTool(mcpproto.NewTool(
		name+"_verify",
		mcpproto.WithDescription(fmt.Sprintf("Verify a %s signature with the verification engine", name)),
		mcpproto.WithString("address", mcpproto.Required(), mcpproto.Description("Account address")),
		mcpproto.WithString("signature", mcpproto.Required(), mcpproto.Description("Signature")),
		mcpproto.WithString("message", mcpproto.Description("Signed message")),
	), s.verifyHandler(v))
}

func (s *Server) addTool(tool mcpproto.Tool, handler mcpserver.ToolHandlerFunc) {
	s.tools = append(s.tools, mcpserver.ServerTool{Tool: tool, Handler: handler})
}

// Tools returns the registered tools in registration order.
func (s *Server) Tools() []mcpserver.ServerTool {
	return s.tools
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin and stdout until the input closes.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer)
}

// arguments gives typed access to tool call arguments.
type arguments map[string]interface{}

func (a arguments) has(name string) bool {
	_, ok := a[name].(string)
	return ok
}

func (a arguments) str(name string) string {
	s, _ := a[name].(string)
	return s
}

func (s *Server) parseHandler(v authharness.Variant) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		args := arguments(req.GetArguments())
		if err := validation.Require(validation.Argument{Name: "address", Present: args.has("address")}); err != nil {
			return s.toolError(req, err), nil
		}
		fp, err := v.Parse(ctx, args.str("address"))
		if err != nil {
			return s.toolError(req, err), nil
		}
		return mcpproto.NewToolResultText(fp.String()), nil
	}
}

func (s *Server) generateHandler(v authharness.Variant) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		args := arguments(req.GetArguments())
		if err := validation.RequireOneOf(
			validation.Argument{Name: "address", Present: args.has("address")},
			validation.Argument{Name: "pubkeyhash", Present: args.has("pubkeyhash")},
		); err != nil {
			return s.toolError(req, err), nil
		}
		msg, err := v.Generate(ctx, authharness.GenerateRequest{
			Address:     args.str("address"),
			Fingerprint: args.str("pubkeyhash"),
			Encoding:    args.str("encoding"),
		})
		if err != nil {
			return s.toolError(req, err), nil
		}
		return mcpproto.NewToolResultText(msg), nil
	}
}

func (s *Server) verifyHandler(v authharness.Variant) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		args := arguments(req.GetArguments())
		if err := validation.Require(
			validation.Argument{Name: "address", Present: args.has("address")},
			validation.Argument{Name: "signature", Present: args.has("signature")},
		); err != nil {
			return s.toolError(req, err), nil
		}
		err := v.Verify(ctx, authharness.VerifyRequest{
			Address:   args.str("address"),
			Signature: args.str("signature"),
			Message:   args.str("message"),
		})
		if err != nil {
			return s.toolError(req, err), nil
		}
		return mcpproto.NewToolResultText("Signature verification succeeded!"), nil
	}
}

// toolError reports err as a tool-level failure tagged with its error code.
func (s *Server) toolError(req mcpproto.CallToolRequest, err error) *mcpproto.CallToolResult {
	code := authharness.CodeOf(err)
	if code == "" {
		code = authharness.ErrCodeInternal
	}
	s.logger.Debug("tool call failed",
		zap.String("tool", req.Params.Name),
		zap.String("code", string(code)),
		zap.Error(err))
	return mcpproto.NewToolResultError(fmt.Sprintf("%s: %v", code, err))
}
