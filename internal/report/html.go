package report

import (
	"embed"
	"html/template"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panbanda/lexscope/pkg/models"
)

//go:embed template.html
var templateFS embed.FS

// hotspotLimit caps the function list on the HTML page.
const hotspotLimit = 25

// Page holds everything the HTML template renders.
type Page struct {
	Root        string
	GeneratedAt time.Time
	Mode        models.Mode
	Threshold   int
	Summary     models.Summary
	Files       []FileRow
	Hotspots    []models.FunctionRef
	Graph       *models.RelationGraph
	Failures    []models.Failure
}

// FileRow is one line of the per-file table.
type FileRow struct {
	Path          string
	Counts        models.Counts
	MaxComplexity int
}

// NewPage collects the page data for an analysis of root.
func NewPage(root string, a *models.Analysis, graph *models.RelationGraph, threshold int) *Page {
	p := &Page{
		Root:        root,
		GeneratedAt: time.Now().UTC(),
		Mode:        a.Mode,
		Threshold:   threshold,
		Summary:     a.Summary,
		Graph:       graph,
		Failures:    a.Failures,
	}

	for _, f := range a.Tree.Files {
		row := FileRow{Path: f.Path, Counts: f.Counts()}
		for _, ns := range f.Namespaces {
			for _, c := range ns.Classes {
				for _, fn := range c.Functions {
					row.MaxComplexity = max(row.MaxComplexity, fn.Complexity)
				}
			}
		}
		p.Files = append(p.Files, row)
	}

	if a.Mode == models.ModeFunctions {
		p.Hotspots = a.Tree.FunctionsOver(0)
		sort.SliceStable(p.Hotspots, func(i, j int) bool {
			return p.Hotspots[i].Complexity > p.Hotspots[j].Complexity
		})
		if len(p.Hotspots) > hotspotLimit {
			p.Hotspots = p.Hotspots[:hotspotLimit]
		}
	}
	return p
}

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a new renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"complexityClass": func(complexity, threshold int) string {
			switch {
			case threshold <= 0:
				return "low"
			case complexity > threshold:
				return "danger"
			case complexity*2 >= threshold:
				return "warning"
			default:
				return "low"
			}
		},
		"title": cases.Title(language.English).String,
		"join":  strings.Join,
		"truncatePath": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			parts := strings.Split(s, "/")
			filename := parts[len(parts)-1]
			if len(parts) <= 2 || len(filename) >= n-3 {
				return "..." + s[len(s)-n+3:]
			}
			remaining := max(n-len(filename)-4, 0)
			prefix := strings.Join(parts[:len(parts)-1], "/")
			if len(prefix) > remaining {
				prefix = prefix[len(prefix)-remaining:]
			}
			return "..." + prefix + "/" + filename
		},
		"percent": func(a, b int) float64 {
			if b == 0 {
				return 0
			}
			return float64(a) / float64(b) * 100
		},
		"num": func(n any) string {
			switch v := n.(type) {
			case int:
				return printer.Sprintf("%d", v)
			case int64:
				return printer.Sprintf("%d", v)
			case float64:
				return printer.Sprintf("%.2f", v)
			default:
				return "0"
			}
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the page as HTML.
func (r *Renderer) Render(p *Page, w io.Writer) error {
	return r.tmpl.Execute(w, p)
}

// RenderToFile writes the page to outputPath.
func (r *Renderer) RenderToFile(p *Page, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := r.Render(p, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
