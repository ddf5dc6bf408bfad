package graph

import "fmt"

// StructuralError reports a malformed graph: an unreachable leaf not
// declared as an input, a cycle, or an edge/parent-count mismatch
// (spec.md §7).
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string { return "graph: " + e.Msg }

func structuralf(format string, args ...any) *StructuralError {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// EvaluationError wraps a panic raised from inside an edge's Program,
// attributing it to the TreeNode being evaluated when it occurred
// (spec.md §7's failure semantics: "the driver surfaces any exception
// thrown inside an edge's generator as a computation failure attributed to
// that node").
type EvaluationError struct {
	Node  string
	Cause error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("graph: evaluation of %q failed: %v", e.Node, e.Cause)
}

func (e *EvaluationError) Unwrap() error { return e.Cause }
