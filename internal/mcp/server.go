// Package mcp exposes the refactoring engine over the Model Context
// Protocol. The server speaks stdio, so all diagnostics go through a
// file-backed logger; stdout and stderr stay clean for the protocol.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/jsmorph/internal/config"
	"github.com/standardbeagle/jsmorph/internal/engine"
	"github.com/standardbeagle/jsmorph/internal/version"
)

// Server wires the engine's operations to MCP tools.
type Server struct {
	server *mcp.Server
	engine *engine.Engine
	cfg    *config.Config
	diag   *DiagnosticLogger
}

// NewServer builds the MCP server around one configuration.
func NewServer(cfg *config.Config) *Server {
	diag := NewDiagnosticLogger(true)

	s := &Server{
		cfg:    cfg,
		diag:   diag,
		engine: engine.New(cfg, diag),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "jsmorph",
		Version: version.Version,
	}, nil)

	s.registerTools()
	diag.Printf("server initialized, project root %s", cfg.Project.Root)
	return s
}

// Run serves MCP over stdio until the context is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	defer s.diag.Close()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	targetSchema := &jsonschema.Schema{
		Type:        "string",
		Description: "File or directory to operate on; defaults to the project root",
	}
	dryRunSchema := &jsonschema.Schema{
		Type:        "boolean",
		Description: "Report the planned edits without writing any file",
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_js",
		Description: "Summarize the structure of a JavaScript/TypeScript file: functions, classes, imports, exports",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_path": {
					Type:        "string",
					Description: "Path of the file to analyze",
				},
			},
			Required: []string{"file_path"},
		},
	}, s.handleAnalyze)

	s.server.AddTool(&mcp.Tool{
		Name:        "classify_references",
		Description: "Find every occurrence of a symbol and classify each by usage context (declaration, call, import, JSX, ...)",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema,
				"symbol": {
					Type:        "string",
					Description: "Symbol to look up; omit to report every symbol",
				},
				"kinds": {
					Type:        "array",
					Description: "Restrict the report to these context kinds",
					Items:       &jsonschema.Schema{Type: "string"},
				},
			},
		},
	}, s.handleClassify)

	s.server.AddTool(&mcp.Tool{
		Name:        "rename_symbol",
		Description: "Rename a symbol across files, rewriting declarations, calls, imports, exports and JSX tags",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema,
				"old_name": {
					Type:        "string",
					Description: "Current symbol name",
				},
				"new_name": {
					Type:        "string",
					Description: "Replacement name; must be a valid identifier",
				},
				"scope": {
					Type:        "string",
					Description: "Optional scope selector like 'function:processData' or 'class:Cache' to limit the rename",
				},
				"dry_run": dryRunSchema,
			},
			Required: []string{"old_name", "new_name"},
		},
	}, s.handleRename)

	s.server.AddTool(&mcp.Tool{
		Name:        "add_parameter",
		Description: "Add a parameter to a function signature, optionally inserting a default argument at every call site",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema,
				"function_name": {
					Type:        "string",
					Description: "Function to change",
				},
				"param_name": {
					Type:        "string",
					Description: "Name of the new parameter",
				},
				"param_type": {
					Type:        "string",
					Description: "TypeScript type annotation; ignored for plain JavaScript files",
				},
				"default_value": {
					Type:        "string",
					Description: "Default value expression; also used as the argument at updated call sites",
				},
				"position": {
					Type:        "integer",
					Description: "Zero-based position in the parameter list; -1 appends",
				},
				"update_calls": {
					Type:        "boolean",
					Description: "Insert the default value into existing call sites",
				},
				"dry_run": dryRunSchema,
			},
			Required: []string{"function_name", "param_name"},
		},
	}, s.handleAddParameter)

	s.server.AddTool(&mcp.Tool{
		Name:        "remove_unused_exports",
		Description: "Find exports no other file references and strip their export wrappers",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": targetSchema,
				"exclude_patterns": {
					Type:        "array",
					Description: "Glob patterns for files whose exports are kept regardless (entry points, published APIs)",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"dry_run": dryRunSchema,
			},
		},
	}, s.handleRemoveUnusedExports)
}
