package lox

// Interpret compiles source into a fresh chunk and, on success, runs it
// against vm. The chunk is freed once execution finishes; vm's globals table
// (and therefore any variables the source defines) survives the call, which
// is what lets a REPL session share one VM across lines.
func (vm *VM) Interpret(source string, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	vm.SetDebug(o.debug)

	chunk := NewChunk()
	defer chunk.Free()

	ok, diagnostics := Compile(source, chunk, o.debug)
	if !ok {
		return Result{Status: ResultCompileError, Diagnostics: diagnostics}
	}

	if vm.Run(chunk) == StatusRuntimeError {
		return Result{Status: ResultRuntimeError}
	}
	return Result{Status: ResultOK}
}
