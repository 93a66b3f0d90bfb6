// Command lox runs Lox source files, or offers an interactive REPL when
// given no arguments.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chutichnuoc/lox/lox"
)

const (
	exitOK           = 0
	exitUsage        = 64
	exitCompileError = 65
	exitRuntimeError = 70
)

func main() {
	debug := flag.Bool("debug", false, "log bytecode disassembly and execution trace")
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()
	switch len(args) {
	case 0:
		runPrompt(*debug)
	case 1:
		runFile(args[0], *debug)
	default:
		fmt.Fprintln(os.Stderr, "Usage: lox [script]")
		os.Exit(exitUsage)
	}
}

func runFile(path string, debug bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not read file %q: %v\n", path, err)
		os.Exit(exitUsage)
	}

	vm := lox.NewVM()
	result := vm.Interpret(string(source), lox.WithDebug(debug))
	os.Exit(exitCodeFor(result))
}

func runPrompt(debug bool) {
	vm := lox.NewVM()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		line := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(line), "exit") {
			return
		}

		result := vm.Interpret(line, lox.WithDebug(debug))
		report(result)
	}
}

func report(result lox.Result) {
	switch result.Status {
	case lox.ResultCompileError:
		if result.Diagnostics != nil {
			fmt.Fprintln(os.Stderr, result.Diagnostics.Error())
		}
	case lox.ResultRuntimeError:
		// The VM already printed "Runtime error: ..." to stderr itself.
	}
}

func exitCodeFor(result lox.Result) int {
	switch result.Status {
	case lox.ResultCompileError:
		if result.Diagnostics != nil {
			fmt.Fprintln(os.Stderr, result.Diagnostics.Error())
		}
		return exitCompileError
	case lox.ResultRuntimeError:
		return exitRuntimeError
	default:
		return exitOK
	}
}
