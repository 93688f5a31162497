// Package report renders analysis results for the console, markdown, the
// structured encodings and a standalone HTML page.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/lexscope/internal/output"
	"github.com/panbanda/lexscope/pkg/models"
)

// Options controls what a report includes.
type Options struct {
	// Threshold highlights functions whose complexity exceeds it. Zero
	// disables highlighting.
	Threshold int
	// ShowUnrecognized lists windows no detector recognized.
	ShowUnrecognized bool
}

// Data is the structured form of a report used by json, yaml and toon.
type Data struct {
	Mode          models.Mode           `json:"mode" yaml:"mode"`
	Summary       models.Summary        `json:"summary" yaml:"summary"`
	Files         []*models.File        `json:"files" yaml:"files"`
	OverThreshold []models.FunctionRef  `json:"over_threshold,omitempty" yaml:"over_threshold,omitempty"`
	Graph         *models.RelationGraph `json:"graph,omitempty" yaml:"graph,omitempty"`
	Failures      []models.Failure      `json:"failures,omitempty" yaml:"failures,omitempty"`
	Diagnostics   []models.Diagnostic   `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	tree          *models.ResultTree
}

// WriteXML writes the result tree document.
func (d *Data) WriteXML(w io.Writer) error {
	return d.tree.WriteXML(w)
}

// Report is a renderable analysis report.
type Report struct {
	analysis *models.Analysis
	graph    *models.RelationGraph
	opts     Options
}

// New creates a report for a function-mode or relationship-mode analysis.
// graph may be nil.
func New(a *models.Analysis, graph *models.RelationGraph, opts Options) *Report {
	return &Report{analysis: a, graph: graph, opts: opts}
}

func (r *Report) title() string {
	if r.analysis.Mode == models.ModeRelations {
		return "Relationship Analysis"
	}
	return "Function Analysis"
}

// RenderData returns the report's structured data.
func (r *Report) RenderData() any {
	d := &Data{
		Mode:     r.analysis.Mode,
		Summary:  r.analysis.Summary,
		Files:    r.analysis.Tree.Files,
		Graph:    r.graph,
		Failures: r.analysis.Failures,
		tree:     r.analysis.Tree,
	}
	if d.Files == nil {
		d.Files = []*models.File{}
	}
	if r.opts.Threshold > 0 {
		d.OverThreshold = r.analysis.Tree.FunctionsOver(r.opts.Threshold)
	}
	if r.opts.ShowUnrecognized {
		d.Diagnostics = r.analysis.Diagnostics
	}
	return d
}

// WriteXML writes the result tree document.
func (r *Report) WriteXML(w io.Writer) error {
	return r.analysis.Tree.WriteXML(w)
}

func (r *Report) compose(colored bool) *output.Report {
	rep := &output.Report{Title: r.title()}
	for _, f := range r.analysis.Tree.Files {
		if r.analysis.Mode == models.ModeRelations {
			rep.Sections = append(rep.Sections, r.classTable(f))
		} else {
			rep.Sections = append(rep.Sections, r.functionTable(f, colored))
		}
	}
	if r.graph != nil && len(r.graph.Coupling) > 0 {
		rep.Sections = append(rep.Sections, couplingTable(r.graph))
		if s := cycleSection(r.graph); s != nil {
			rep.Sections = append(rep.Sections, s)
		}
	}
	if over := r.overThreshold(); over != nil {
		rep.Sections = append(rep.Sections, over)
	}
	if len(r.analysis.Failures) > 0 {
		rep.Sections = append(rep.Sections, failureTable(r.analysis.Failures))
	}
	if r.opts.ShowUnrecognized && len(r.analysis.Diagnostics) > 0 {
		rep.Sections = append(rep.Sections, diagnosticTable(r.analysis.Diagnostics))
	}
	rep.Sections = append(rep.Sections, summaryTable(r.analysis.Mode, r.analysis.Summary))
	return rep
}

// RenderText renders the report as console tables.
func (r *Report) RenderText(w io.Writer, colored bool) error {
	if len(r.analysis.Tree.Files) == 0 && len(r.analysis.Failures) == 0 {
		if colored {
			color.New(color.FgYellow).Fprintln(w, "No source files found")
		} else {
			fmt.Fprintln(w, "No source files found")
		}
		return nil
	}
	return r.compose(colored).RenderText(w, colored)
}

// RenderMarkdown renders the report as markdown tables.
func (r *Report) RenderMarkdown(w io.Writer) error {
	return r.compose(false).RenderMarkdown(w)
}

func fileTitle(f *models.File) string {
	c := f.Counts()
	return fmt.Sprintf("%s (%s, %s, %s)", f.Path,
		plural(c.Namespaces, "namespace"), plural(c.Classes, "class"), plural(c.Functions, "function"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "s") {
		return fmt.Sprintf("%d %ses", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (r *Report) functionTable(f *models.File, colored bool) *output.Table {
	var rows [][]string
	for _, ns := range f.Namespaces {
		for _, c := range ns.Classes {
			for _, fn := range c.Functions {
				cx := strconv.Itoa(fn.Complexity)
				if colored {
					cx = output.ComplexityColor(fn.Complexity, r.opts.Threshold, cx)
				}
				rows = append(rows, []string{
					ns.Name, c.Name, fn.Name, cx,
					strconv.Itoa(fn.Lines), strconv.Itoa(fn.Statements),
				})
			}
		}
	}
	return output.NewTable(fileTitle(f),
		[]string{"Namespace", "Class", "Function", "Complexity", "Lines", "Statements"},
		rows, nil, f)
}

func (r *Report) classTable(f *models.File) *output.Table {
	var rows [][]string
	for _, ns := range f.Namespaces {
		for _, c := range ns.Classes {
			names := make([]string, len(c.Functions))
			for i, fn := range c.Functions {
				names[i] = fn.Name
			}
			rows = append(rows, []string{
				ns.Name, c.Name,
				c.Inheritance.String(), c.Association.String(), c.Using.String(),
				strings.Join(names, ","),
			})
		}
	}
	return output.NewTable(fileTitle(f),
		[]string{"Namespace", "Class", "Inheritance", "Association", "Using", "Functions"},
		rows, nil, f)
}

func couplingTable(g *models.RelationGraph) *output.Table {
	coupling := make([]models.ClassCoupling, len(g.Coupling))
	copy(coupling, g.Coupling)
	sort.SliceStable(coupling, func(i, j int) bool {
		if coupling[i].FanIn != coupling[j].FanIn {
			return coupling[i].FanIn > coupling[j].FanIn
		}
		return coupling[i].Class < coupling[j].Class
	})

	rows := make([][]string, len(coupling))
	for i, c := range coupling {
		rows[i] = []string{c.Class, strconv.Itoa(c.FanIn), strconv.Itoa(c.FanOut), fmt.Sprintf("%.3f", c.Rank)}
	}
	footer := []string{"Edges", strconv.Itoa(len(g.Edges)), "Components", strconv.Itoa(g.Components)}
	return output.NewTable("Class Coupling", []string{"Class", "Fan-in", "Fan-out", "Rank"}, rows, footer, g)
}

func cycleSection(g *models.RelationGraph) *output.Section {
	if !g.IsCyclic() {
		return nil
	}
	lines := make([]string, len(g.Cycles))
	for i, cycle := range g.Cycles {
		lines[i] = "- " + strings.Join(cycle, " -> ") + " -> " + cycle[0]
	}
	return &output.Section{
		Title:   fmt.Sprintf("Dependency Cycles (%d)", len(g.Cycles)),
		Content: strings.Join(lines, "\n"),
		Data:    g.Cycles,
	}
}

func (r *Report) overThreshold() *output.Table {
	if r.opts.Threshold <= 0 {
		return nil
	}
	over := r.analysis.Tree.FunctionsOver(r.opts.Threshold)
	if len(over) == 0 {
		return nil
	}
	sort.SliceStable(over, func(i, j int) bool { return over[i].Complexity > over[j].Complexity })
	rows := make([][]string, len(over))
	for i, fn := range over {
		rows[i] = []string{fn.File, fn.Class + "." + fn.Name, strconv.Itoa(fn.Complexity), strconv.Itoa(fn.Lines)}
	}
	return output.NewTable(fmt.Sprintf("Complexity Over %d", r.opts.Threshold),
		[]string{"File", "Function", "Complexity", "Lines"}, rows, nil, over)
}

func failureTable(failures []models.Failure) *output.Table {
	rows := make([][]string, len(failures))
	for i, f := range failures {
		rows[i] = []string{f.File, f.Pass, f.Error}
	}
	return output.NewTable("Failed Files", []string{"File", "Pass", "Error"}, rows, nil, failures)
}

func diagnosticTable(diags []models.Diagnostic) *output.Table {
	rows := make([][]string, len(diags))
	for i, d := range diags {
		rows[i] = []string{d.File, strconv.Itoa(d.Line), strconv.Itoa(d.Count), d.Tokens}
	}
	return output.NewTable("Unrecognized Input", []string{"File", "Line", "Count", "Tokens"}, rows, nil, diags)
}

func summaryTable(mode models.Mode, s models.Summary) *output.Table {
	rows := [][]string{
		{"Files", fmt.Sprintf("%d of %d", s.AnalyzedFiles, s.TotalFiles)},
		{"Namespaces", strconv.Itoa(s.Namespaces)},
		{"Classes", strconv.Itoa(s.Classes)},
		{"Functions", strconv.Itoa(s.Functions)},
	}
	if mode == models.ModeFunctions {
		rows = append(rows,
			[]string{"Total complexity", strconv.Itoa(s.TotalComplexity)},
			[]string{"Max complexity", strconv.Itoa(s.MaxComplexity)},
			[]string{"Avg complexity", fmt.Sprintf("%.2f", s.AvgComplexity)},
			[]string{"Total lines", strconv.Itoa(s.TotalLines)},
		)
	}
	if s.FailedFiles > 0 {
		rows = append(rows, []string{"Failed files", strconv.Itoa(s.FailedFiles)})
	}
	if s.Unrecognized > 0 {
		rows = append(rows, []string{"Unrecognized windows", strconv.Itoa(s.Unrecognized)})
	}
	return output.NewTable("Summary", []string{"Metric", "Value"}, rows, nil, s)
}
