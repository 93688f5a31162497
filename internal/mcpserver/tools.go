package mcpserver

import (
	"bytes"
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/lexscope/internal/output"
	"github.com/panbanda/lexscope/internal/report"
	"github.com/panbanda/lexscope/internal/service/analysis"
	scannerSvc "github.com/panbanda/lexscope/internal/service/scanner"
	"github.com/panbanda/lexscope/pkg/config"
	"github.com/panbanda/lexscope/pkg/models"
)

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Paths     []string `json:"paths,omitempty" jsonschema:"Directories or files to analyze. Defaults to the current directory."`
	Recursive bool     `json:"recursive,omitempty" jsonschema:"Descend into subdirectories."`
	Patterns  []string `json:"patterns,omitempty" jsonschema:"File name patterns to include. Defaults to the configured patterns (*.cs)."`
	Format    string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, markdown or xml."`
}

// FunctionsInput adds function-analysis options.
type FunctionsInput struct {
	AnalyzeInput
	Threshold        int  `json:"threshold,omitempty" jsonschema:"List functions whose complexity exceeds this value. Defaults to the configured threshold (10)."`
	ShowUnrecognized bool `json:"show_unrecognized,omitempty" jsonschema:"Include constructs no detector recognized."`
}

// RelationshipsInput adds relationship-analysis options.
type RelationshipsInput struct {
	AnalyzeInput
	Kinds []string `json:"kinds,omitempty" jsonschema:"Edge kinds to include in the graph: inheritance, association, using. Defaults to all."`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	if input.Format == "" {
		return output.FormatTOON
	}
	return output.ParseFormat(input.Format)
}

func loadConfig(input AnalyzeInput) *config.Config {
	cfg := config.LoadOrDefault()
	if len(input.Patterns) > 0 {
		cfg.Analysis.Patterns = input.Patterns
	}
	return cfg
}

func scanFiles(cfg *config.Config, input AnalyzeInput) ([]string, error) {
	result, err := scannerSvc.New(scannerSvc.WithConfig(cfg)).ScanPaths(getPaths(input), input.Recursive)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func handleAnalyzeFunctions(ctx context.Context, req *mcp.CallToolRequest, input FunctionsInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)
	cfg := loadConfig(input.AnalyzeInput)

	files, err := scanFiles(cfg, input.AnalyzeInput)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	result, err := analysis.New(analysis.WithConfig(cfg)).AnalyzeFunctions(ctx, files, analysis.Options{})
	if err != nil {
		return toolError(err.Error())
	}

	threshold := input.Threshold
	if threshold <= 0 {
		threshold = cfg.Thresholds.Complexity
	}
	rep := report.New(result.Analysis, nil, report.Options{
		Threshold:        threshold,
		ShowUnrecognized: input.ShowUnrecognized,
	})
	return toolResult(rep, format)
}

func handleAnalyzeRelationships(ctx context.Context, req *mcp.CallToolRequest, input RelationshipsInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)
	cfg := loadConfig(input.AnalyzeInput)

	kinds, err := models.ParseEdgeKinds(input.Kinds)
	if err != nil {
		return toolError(err.Error())
	}

	files, err := scanFiles(cfg, input.AnalyzeInput)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	result, err := analysis.New(analysis.WithConfig(cfg)).AnalyzeRelations(ctx, files, analysis.Options{EdgeKinds: kinds})
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(report.New(result.Analysis, result.Graph, report.Options{}), format)
}
