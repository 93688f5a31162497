package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/lexscope/internal/report"
	"github.com/panbanda/lexscope/internal/testutil"
	"github.com/panbanda/lexscope/pkg/config"
	"github.com/panbanda/lexscope/pkg/models"
)

// runApp runs the CLI with args and returns what it wrote to its writer.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"lexscope"}, args...))
	return out.String(), err
}

func readData(t *testing.T, path string) report.Data {
	t.Helper()
	var data report.Data
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, path)), &data))
	return data
}

func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
		wantErr  error
	}{
		{
			name:    "no args is a configuration error",
			args:    []string{},
			wantErr: ErrMissingDirectory,
		},
		{
			name:     "single path",
			args:     []string{"/foo/bar"},
			expected: []string{"/foo/bar"},
		},
		{
			name:     "multiple paths",
			args:     []string{"/foo", "/bar"},
			expected: []string{"/foo", "/bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &cli.App{
				Action: func(c *cli.Context) error {
					result, err := getPaths(c)
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("getPaths() error = %v, want %v", err, tt.wantErr)
					}
					if strings.Join(result, ",") != strings.Join(tt.expected, ",") {
						t.Errorf("getPaths() = %v, want %v", result, tt.expected)
					}
					return nil
				},
			}
			_ = app.Run(append([]string{"test"}, tt.args...))
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		verbose   bool
		wantDebug bool
	}{
		{false, false},
		{true, true},
	}

	for _, tt := range tests {
		logger := newLogger(io.Discard, tt.verbose)
		if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
			t.Errorf("newLogger(verbose=%v) debug enabled = %v, want %v", tt.verbose, got, tt.wantDebug)
		}
		if !logger.Enabled(context.Background(), slog.LevelWarn) {
			t.Errorf("newLogger(verbose=%v) should log warnings", tt.verbose)
		}
	}
}

func TestMissingDirectoryIsFatal(t *testing.T) {
	for _, cmd := range []string{"functions", "relations", "analyze", "watch"} {
		t.Run(cmd, func(t *testing.T) {
			_, err := runApp(t, "--no-cache", cmd)
			assert.ErrorIs(t, err, ErrMissingDirectory)
		})
	}
}

func TestFunctionsCommand(t *testing.T) {
	dir := testutil.ZooDir(t)
	out := filepath.Join(t.TempDir(), "out.json")

	_, err := runApp(t, "--no-cache", "-f", "json", "-o", out, "functions", "--complexity-threshold", "1", dir)
	require.NoError(t, err)

	data := readData(t, out)
	assert.Equal(t, models.ModeFunctions, data.Mode)
	require.Len(t, data.Files, 1)
	assert.Equal(t, 1, data.Summary.TotalFiles)

	ns := data.Files[0].Namespace("Zoo")
	require.NotNil(t, ns)
	bark := ns.Class("Dog").Function("Bark")
	require.NotNil(t, bark)
	assert.Equal(t, 2, bark.Complexity)

	require.Len(t, data.OverThreshold, 1)
	assert.Equal(t, "Bark", data.OverThreshold[0].Name)
}

func TestRelationsCommand(t *testing.T) {
	dir := testutil.ZooDir(t)
	out := filepath.Join(t.TempDir(), "out.json")

	_, err := runApp(t, "--no-cache", "--format", "json", "--output", out, "relations", dir)
	require.NoError(t, err)

	data := readData(t, out)
	assert.Equal(t, models.ModeRelations, data.Mode)
	dog := data.Files[0].Namespace("Zoo").Class("Dog")
	require.NotNil(t, dog)
	assert.Equal(t, models.NameSet{"Animal"}, dog.Inheritance)
	assert.Equal(t, models.NameSet{"Bowl"}, dog.Association)

	require.NotNil(t, data.Graph)
	assert.True(t, data.Graph.IsCyclic(), "Dog and Bowl reference each other")
}

func TestAnalyzeRelationsFlag(t *testing.T) {
	dir := testutil.ZooDir(t)
	out := filepath.Join(t.TempDir(), "out.json")

	_, err := runApp(t, "--no-cache", "-f", "json", "-o", out, "analyze", "--relations", "--kinds", "inheritance", dir)
	require.NoError(t, err)

	data := readData(t, out)
	assert.Equal(t, models.ModeRelations, data.Mode)
	require.Len(t, data.Graph.Edges, 1)
	assert.Equal(t, models.RelationEdge{From: "Dog", To: "Animal", Kind: models.EdgeInheritance}, data.Graph.Edges[0])
	assert.False(t, data.Graph.IsCyclic())
}

func TestRelationsUnknownKind(t *testing.T) {
	dir := testutil.ZooDir(t)

	_, err := runApp(t, "--no-cache", "relations", "--kinds", "composition", dir)
	var ke *models.KindError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "composition", ke.Kind)
}

func TestTreeAndHTMLOutputs(t *testing.T) {
	dir := testutil.ZooDir(t)
	outDir := t.TempDir()
	xmlPath := filepath.Join(outDir, "tree.xml")
	htmlPath := filepath.Join(outDir, "report.html")

	_, err := runApp(t, "--no-cache", "-o", filepath.Join(outDir, "out.txt"),
		"functions", "--xml", "--xml-file", xmlPath, "--html", htmlPath, dir)
	require.NoError(t, err)

	tree := testutil.ReadFile(t, xmlPath)
	assert.Contains(t, tree, "<analysisResults>")
	assert.Contains(t, tree, `id="Bark"`)

	assert.Contains(t, testutil.ReadFile(t, htmlPath), "Functions Analysis")
	assert.Contains(t, testutil.ReadFile(t, filepath.Join(outDir, "out.txt")), "Bark")
}

func TestCustomPattern(t *testing.T) {
	dir := testutil.ZooDir(t)
	out := filepath.Join(t.TempDir(), "out.json")

	_, err := runApp(t, "--no-cache", "-f", "json", "-o", out, "functions", "-p", "*.txt", dir)
	require.NoError(t, err)

	data := readData(t, out)
	require.Len(t, data.Files, 1)
	assert.Equal(t, "notes.txt", filepath.Base(data.Files[0].Path))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexscope.toml")
	testutil.WriteFile(t, path, "[thresholds]\ncomplexity = 3\n")

	var got *config.Config
	app := newApp()
	app.ErrWriter = io.Discard
	app.Commands = []*cli.Command{{
		Name: "probe",
		Action: func(c *cli.Context) error {
			var err error
			got, err = loadConfig(c)
			return err
		},
	}}

	require.NoError(t, app.Run([]string{"lexscope", "--config", path, "probe"}))
	assert.Equal(t, 3, got.Thresholds.Complexity)
	assert.Equal(t, []string{"*.cs"}, got.Analysis.Patterns)

	err := app.Run([]string{"lexscope", "--config", filepath.Join(t.TempDir(), "missing.toml"), "probe"})
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexscope.toml")
	testutil.WriteFile(t, path, "[thresholds]\ncomplexity = 7\n")

	out, err := runApp(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Configuration from: "+path)
	assert.Contains(t, out, "complexity = 7")
}

func TestConfigValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexscope.toml")
	testutil.WriteFile(t, path, "[thresholds]\ncomplexity = \"high\"\n")

	_, err := runApp(t, "--config", path, "config", "validate")
	assert.Error(t, err)
}

func TestMCPManifest(t *testing.T) {
	out, err := runApp(t, "mcp", "manifest")
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	assert.Equal(t, "io.github.panbanda/lexscope", manifest["name"])
}
