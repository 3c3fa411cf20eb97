package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/jsmorph/internal/plan"
)

type analyzeParams struct {
	FilePath string `json:"file_path"`
}

type classifyParams struct {
	Target string   `json:"target"`
	Symbol string   `json:"symbol"`
	Kinds  []string `json:"kinds"`
}

type renameParams struct {
	Target  string `json:"target"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Scope   string `json:"scope"`
	DryRun  bool   `json:"dry_run"`
}

type addParameterParams struct {
	Target       string `json:"target"`
	FunctionName string `json:"function_name"`
	ParamName    string `json:"param_name"`
	ParamType    string `json:"param_type"`
	DefaultValue string `json:"default_value"`
	Position     *int   `json:"position"`
	UpdateCalls  bool   `json:"update_calls"`
	DryRun       bool   `json:"dry_run"`
}

type removeExportsParams struct {
	Target          string   `json:"target"`
	ExcludePatterns []string `json:"exclude_patterns"`
	DryRun          bool     `json:"dry_run"`
}

// targetOrRoot falls back to the configured project root.
func (s *Server) targetOrRoot(target string) string {
	if target != "" {
		return target
	}
	return s.cfg.Project.Root
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("analyze_js", err)
	}

	report, err := s.engine.AnalyzeFile(params.FilePath)
	if err != nil {
		s.diag.Errorf("analyze_js %s: %v", params.FilePath, err)
		return createErrorResponse("analyze_js", err)
	}
	return createJSONResponse(report)
}

func (s *Server) handleClassify(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params classifyParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("classify_references", err)
	}

	report, err := s.engine.ClassifyReferences(ctx, s.targetOrRoot(params.Target), params.Symbol, params.Kinds)
	if err != nil {
		s.diag.Errorf("classify_references %q: %v", params.Symbol, err)
		return createErrorResponse("classify_references", err)
	}
	return createJSONResponse(report)
}

func (s *Server) handleRename(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params renameParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("rename_symbol", err)
	}

	report, err := s.engine.RenameSymbol(ctx, s.targetOrRoot(params.Target),
		params.OldName, params.NewName, params.Scope, params.DryRun)
	if err != nil {
		s.diag.Errorf("rename_symbol %s -> %s: %v", params.OldName, params.NewName, err)
		return createErrorResponse("rename_symbol", err)
	}
	return createJSONResponse(report)
}

func (s *Server) handleAddParameter(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params addParameterParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("add_parameter", err)
	}

	position := -1
	if params.Position != nil {
		position = *params.Position
	}

	report, err := s.engine.AddParameter(ctx, s.targetOrRoot(params.Target),
		params.FunctionName,
		plan.Param{
			Name:    params.ParamName,
			Type:    params.ParamType,
			Default: params.DefaultValue,
		},
		position, params.UpdateCalls, params.DryRun)
	if err != nil {
		s.diag.Errorf("add_parameter %s(%s): %v", params.FunctionName, params.ParamName, err)
		return createErrorResponse("add_parameter", err)
	}
	return createJSONResponse(report)
}

func (s *Server) handleRemoveUnusedExports(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params removeExportsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("remove_unused_exports", err)
	}

	report, err := s.engine.RemoveUnusedExports(ctx, s.targetOrRoot(params.Target),
		params.ExcludePatterns, params.DryRun)
	if err != nil {
		s.diag.Errorf("remove_unused_exports: %v", err)
		return createErrorResponse("remove_unused_exports", err)
	}
	return createJSONResponse(report)
}
