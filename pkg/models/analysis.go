package models

// Mode selects which pipeline an analysis runs.
type Mode string

const (
	// ModeFunctions collects per-function complexity, lines and statements.
	ModeFunctions Mode = "functions"
	// ModeRelations runs a class scan over every file, then a relationship
	// pass that records inheritance, association and using.
	ModeRelations Mode = "relations"
)

// Failure records a file that could not be analyzed.
type Failure struct {
	File  string `json:"file" yaml:"file"`
	Pass  string `json:"pass,omitempty" yaml:"pass,omitempty"`
	Error string `json:"error" yaml:"error"`
}

// Diagnostic is a window no detector recognized. Identical windows in the
// same file are reported once with a count.
type Diagnostic struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Tokens string `json:"tokens" yaml:"tokens"`
	Count  int    `json:"count" yaml:"count"`
}

// Analysis is the outcome of one run over a set of files.
type Analysis struct {
	Mode        Mode         `json:"mode" yaml:"mode"`
	Tree        *ResultTree  `json:"tree" yaml:"tree"`
	Failures    []Failure    `json:"failures,omitempty" yaml:"failures,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Summary     Summary      `json:"summary" yaml:"summary"`
}

// Summary provides aggregate statistics for an analysis.
type Summary struct {
	TotalFiles      int     `json:"total_files" yaml:"total_files"`
	AnalyzedFiles   int     `json:"analyzed_files" yaml:"analyzed_files"`
	FailedFiles     int     `json:"failed_files" yaml:"failed_files"`
	Namespaces      int     `json:"namespaces" yaml:"namespaces"`
	Classes         int     `json:"classes" yaml:"classes"`
	Functions       int     `json:"functions" yaml:"functions"`
	TotalComplexity int     `json:"total_complexity" yaml:"total_complexity"`
	MaxComplexity   int     `json:"max_complexity" yaml:"max_complexity"`
	AvgComplexity   float64 `json:"avg_complexity" yaml:"avg_complexity"`
	TotalLines      int     `json:"total_lines" yaml:"total_lines"`
	Unrecognized    int     `json:"unrecognized" yaml:"unrecognized"`
}

// NewSummary computes the summary for a finished analysis.
func NewSummary(a *Analysis, totalFiles int) Summary {
	s := Summary{
		TotalFiles:  totalFiles,
		FailedFiles: len(a.Failures),
	}
	if a.Tree != nil {
		s.AnalyzedFiles = len(a.Tree.Files)
		c := a.Tree.Counts()
		s.Namespaces, s.Classes, s.Functions = c.Namespaces, c.Classes, c.Functions
		for _, f := range a.Tree.Files {
			for _, ns := range f.Namespaces {
				for _, cls := range ns.Classes {
					for _, fn := range cls.Functions {
						s.TotalComplexity += fn.Complexity
						s.TotalLines += fn.Lines
						if fn.Complexity > s.MaxComplexity {
							s.MaxComplexity = fn.Complexity
						}
					}
				}
			}
		}
	}
	if s.Functions > 0 {
		s.AvgComplexity = float64(s.TotalComplexity) / float64(s.Functions)
	}
	for _, d := range a.Diagnostics {
		s.Unrecognized += d.Count
	}
	return s
}

// FunctionRef locates a function for flat listings.
type FunctionRef struct {
	File      string `json:"file" yaml:"file"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Class     string `json:"class" yaml:"class"`
	Function
}

// FunctionsOver lists functions whose complexity exceeds threshold.
func (t *ResultTree) FunctionsOver(threshold int) []FunctionRef {
	var out []FunctionRef
	for _, f := range t.Files {
		for _, ns := range f.Namespaces {
			for _, c := range ns.Classes {
				for _, fn := range c.Functions {
					if fn.Complexity > threshold {
						out = append(out, FunctionRef{File: f.Path, Namespace: ns.Name, Class: c.Name, Function: *fn})
					}
				}
			}
		}
	}
	return out
}
