package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// PromptArgument is one named argument a prompt accepts.
type PromptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

// PromptDefinition is a prompt parsed from an embedded markdown file.
// Occurrences of {{name}} in the body are replaced by argument values.
type PromptDefinition struct {
	Name        string           `yaml:"-"`
	Description string           `yaml:"description"`
	Arguments   []PromptArgument `yaml:"arguments"`
	Body        string           `yaml:"-"`
}

// loadPrompts parses every embedded prompt file.
func loadPrompts() []PromptDefinition {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil
	}

	var defs []PromptDefinition
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}
		def := parsePrompt(content)
		def.Name = strings.TrimSuffix(entry.Name(), ".md")
		defs = append(defs, def)
	}
	return defs
}

func (s *Server) registerPrompts() {
	for _, def := range loadPrompts() {
		prompt := &mcp.Prompt{
			Name:        def.Name,
			Description: def.Description,
		}
		for _, arg := range def.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		s.server.AddPrompt(prompt, makePromptHandler(def))
	}
}

// parsePrompt splits YAML frontmatter from the markdown body. A file
// without valid frontmatter is all body.
func parsePrompt(content []byte) PromptDefinition {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return PromptDefinition{Body: string(content)}
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return PromptDefinition{Body: string(content)}
	}

	var def PromptDefinition
	if err := yaml.Unmarshal(rest[:end], &def); err != nil {
		return PromptDefinition{Body: string(content)}
	}
	def.Body = strings.TrimPrefix(string(rest[end+5:]), "\n")
	return def
}

// render substitutes argument values, falling back to defaults.
func (d PromptDefinition) render(args map[string]string) string {
	body := d.Body
	for _, arg := range d.Arguments {
		value, ok := args[arg.Name]
		if !ok || value == "" {
			value = arg.Default
		}
		body = strings.ReplaceAll(body, "{{"+arg.Name+"}}", value)
	}
	return body
}

func makePromptHandler(def PromptDefinition) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return &mcp.GetPromptResult{
			Description: def.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: def.render(args)},
				},
			},
		}, nil
	}
}
