package lox

// ResultStatus is the phase-tagged outcome of one Interpret call.
type ResultStatus int

const (
	ResultOK ResultStatus = iota
	ResultCompileError
	ResultRuntimeError
)

// Result is what Interpret hands back to its caller: which phase the run
// ended in, and — for a compile failure — every diagnostic that survived
// panic-mode suppression.
type Result struct {
	Status      ResultStatus
	Diagnostics error
}
