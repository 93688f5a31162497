package mcpserver

// Tool descriptions carry interpretation guidance for the calling model.

func describeFunctions() string {
	return `Measures per-function complexity, line count and statement count in C#-like source files (brace languages with namespace/class/function nesting).

USE WHEN:
- Finding functions that are hard to test or maintain
- Picking refactoring candidates before a review
- Comparing complexity across classes or namespaces

INTERPRETING RESULTS:
- Complexity is 1 plus the number of branch and loop constructs (if/else, for/foreach, while, switch, try/catch) and lambdas opened in the function
- Complexity > 10: many code paths, consider splitting
- Complexity > 20: high risk, strong refactoring candidate
- Lines counts newlines between the function's opening and closing brace
- failures lists files abandoned because of malformed nesting; the rest of the run is unaffected
- diagnostics (with show_unrecognized) are constructs the lexical detectors did not classify

METRICS RETURNED:
- Per-file tree: namespaces > classes > functions with complexity, lines, statements
- over_threshold: functions whose complexity exceeds the threshold
- Summary: files analyzed and failed, node counts, total/max/avg complexity`
}

func describeRelationships() string {
	return `Maps class relationships in C#-like source files: inheritance, association (class-level fields and properties) and using (parameters and locals inside functions).

USE WHEN:
- Understanding how classes depend on each other before a refactor
- Finding tightly coupled classes or dependency cycles
- Locating the central classes of an unfamiliar codebase

INTERPRETING RESULTS:
- Only classes declared somewhere in the analyzed files are matched; framework types are ignored
- Inheritance includes interfaces named after the class header's colon
- fan_in: number of classes that reference this class; high fan_in means changes ripple widely
- fan_out: number of classes this class references; high fan_out means many reasons to change
- rank: PageRank over the reference graph; higher means more central
- cycles: groups of classes that reference each other directly or transitively

METRICS RETURNED:
- Per-file tree: classes with inheritance, association, using and function names
- graph: edges, per-class coupling, connected components, cycles
- Summary: files analyzed and failed, node counts`
}
