// Package mcpserver exposes extracted command schemas to AI-agent
// consumers as MCP tools, generalizing the teacher's own internal/mcp
// server pattern from a code graph to a schema bundle.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/anthropics/cmdschema/internal/schema"
)

// DefaultTools is the default set of tools exposed by New.
var DefaultTools = []string{"lookup_command_schema", "search_flags", "list_known_commands"}

// Config controls which tools a Server exposes.
type Config struct {
	Tools []string
}

// Server wraps an MCP server over an in-memory SchemaPackage.
type Server struct {
	mcpServer *server.MCPServer
	mu        sync.RWMutex
	pkg       schema.SchemaPackage
	tools     map[string]bool
}

// New creates an MCP server exposing pkg's commands through the
// configured tools.
func New(pkg schema.SchemaPackage, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer("cmdschema", "1.0.0", server.WithToolCapabilities(false))

	s := &Server{
		mcpServer: mcpServer,
		pkg:       pkg,
		tools:     make(map[string]bool),
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, name := range toolsToRegister {
		if err := s.registerTool(name); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", name, err)
		}
		s.tools[name] = true
	}

	return s, nil
}

func (s *Server) registerTool(name string) error {
	switch name {
	case "lookup_command_schema":
		return s.registerLookupTool()
	case "search_flags":
		return s.registerSearchFlagsTool()
	case "list_known_commands":
		return s.registerListTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ListTools returns the registered tool names.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tools))
	for t := range s.tools {
		names = append(names, t)
	}
	return names
}

func (s *Server) registerLookupTool() error {
	tool := mcp.NewTool("lookup_command_schema",
		mcp.WithDescription("Look up the full extracted schema for a command by name."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command name, e.g. 'git' or 'git commit'")),
	)
	s.mcpServer.AddTool(tool, s.handleLookup)
	return nil
}

func (s *Server) handleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	command, _ := args["command"].(string)
	if command == "" {
		return mcp.NewToolResultError("command parameter is required"), nil
	}

	result, err := s.executeLookup(command)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) executeLookup(command string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return "", fmt.Errorf("command must not be blank")
	}

	root, ok := findCommand(s.pkg, parts[0])
	if !ok {
		return "", fmt.Errorf("unknown command: %s", parts[0])
	}

	if len(parts) == 1 {
		return toJSON(root)
	}

	sub, ok := findSubcommandPath(root.Subcommands, parts[1:])
	if !ok {
		return "", fmt.Errorf("unknown subcommand path: %s", command)
	}
	return toJSON(sub)
}

func (s *Server) registerSearchFlagsTool() error {
	tool := mcp.NewTool("search_flags",
		mcp.WithDescription("Search all known commands for flags whose long or short name contains a substring."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Substring to search for, e.g. 'verbose'")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default: 20)")),
	)
	s.mcpServer.AddTool(tool, s.handleSearchFlags)
	return nil
}

func (s *Server) handleSearchFlags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pattern, _ := args["pattern"].(string)
	if pattern == "" {
		return mcp.NewToolResultError("pattern parameter is required"), nil
	}
	limit := 20
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	result, err := s.executeSearchFlags(pattern, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

// flagMatch is one search_flags hit.
type flagMatch struct {
	Command string            `json:"command"`
	Flag    schema.FlagSchema `json:"flag"`
}

func (s *Server) executeSearchFlags(pattern string, limit int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(pattern)
	var matches []flagMatch

	for _, cmd := range s.pkg.Schemas {
		matches = appendMatchingFlags(matches, cmd.Command, cmd.GlobalFlags, lower, limit)
		if len(matches) >= limit {
			break
		}
		matches = appendSubcommandFlagMatches(matches, cmd.Command, cmd.Subcommands, lower, limit)
		if len(matches) >= limit {
			break
		}
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return toJSON(map[string]any{"pattern": pattern, "count": len(matches), "matches": matches})
}

func appendSubcommandFlagMatches(matches []flagMatch, commandLabel string, subs []schema.SubcommandSchema, lower string, limit int) []flagMatch {
	for _, sub := range subs {
		label := commandLabel + " " + sub.Name
		matches = appendMatchingFlags(matches, label, sub.Flags, lower, limit)
		if len(matches) >= limit {
			return matches
		}
		matches = appendSubcommandFlagMatches(matches, label, sub.Subcommands, lower, limit)
		if len(matches) >= limit {
			return matches
		}
	}
	return matches
}

func appendMatchingFlags(matches []flagMatch, label string, flags []schema.FlagSchema, lower string, limit int) []flagMatch {
	for _, f := range flags {
		if strings.Contains(strings.ToLower(f.Long), lower) || strings.Contains(strings.ToLower(f.Short), lower) {
			matches = append(matches, flagMatch{Command: label, Flag: f})
			if len(matches) >= limit {
				return matches
			}
		}
	}
	return matches
}

func (s *Server) registerListTool() error {
	tool := mcp.NewTool("list_known_commands",
		mcp.WithDescription("List every top-level command name in the loaded schema bundle."),
	)
	s.mcpServer.AddTool(tool, s.handleList)
	return nil
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.executeList()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) executeList() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.pkg.Schemas))
	for _, cmd := range s.pkg.Schemas {
		names = append(names, cmd.Command)
	}
	return toJSON(map[string]any{"count": len(names), "commands": names})
}

func findCommand(pkg schema.SchemaPackage, name string) (schema.CommandSchema, bool) {
	for _, cmd := range pkg.Schemas {
		if cmd.Command == name {
			return cmd, true
		}
	}
	return schema.CommandSchema{}, false
}

func findSubcommandPath(subs []schema.SubcommandSchema, path []string) (schema.SubcommandSchema, bool) {
	if len(path) == 0 {
		return schema.SubcommandSchema{}, false
	}
	for _, sub := range subs {
		if sub.Name != path[0] {
			continue
		}
		if len(path) == 1 {
			return sub, true
		}
		return findSubcommandPath(sub.Subcommands, path[1:])
	}
	return schema.SubcommandSchema{}, false
}

func toJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal mcp result: %w", err)
	}
	return string(raw), nil
}
