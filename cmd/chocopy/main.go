// Command chocopy parses and type-checks a ChocoPy program.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smasher164/chocopy/ast"
	"github.com/smasher164/chocopy/check"
	"github.com/smasher164/chocopy/diag"
	"github.com/smasher164/chocopy/layout"
	"github.com/smasher164/chocopy/logger"
	"github.com/smasher164/chocopy/parser"
)

func main() {
	input := flag.String("i", "", "path to the ChocoPy source file (.py)")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, or error")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	printTree := flag.Bool("parse", false, "print the syntax tree")
	dump := flag.Bool("ast", false, "print the inferred types and class layouts")
	printLayout := flag.Bool("layout", false, "print the class layouts as LLVM IR")
	flag.Parse()
	if *input == "" {
		fmt.Fprintln(os.Stderr, "error: an input file is required, use -i <file.py>")
		flag.Usage()
		os.Exit(2)
	}
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.Format = *logFormat
	if err := logger.Init(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	os.Exit(run(*input, *printTree, *dump, *printLayout))
}

func run(path string, printTree, dump, printLayout bool) int {
	logger.LogFileProcessing(path)
	prog, err := parser.ParseFile(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if report(path, err) {
		return exitCode(err)
	}
	if printTree {
		ast.PrintAST(prog)
	}
	info, err := check.New(check.Config{Logger: logger.With("component", "check", "file", path)}).Check(prog)
	if report(path, err) {
		return exitCode(err)
	}
	logger.LogResult(path, 0)
	if dump {
		if err := info.Dump(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 2
		}
		fmt.Println()
	}
	if printLayout {
		fmt.Println(layout.Build(info.Classes))
	}
	return 0
}

// report prints err and reports whether there was one.
func report(path string, err error) bool {
	if err == nil {
		return false
	}
	var list diag.List
	if !errors.As(err, &list) {
		fmt.Fprintln(os.Stderr, "error:", err)
		return true
	}
	logger.LogResult(path, len(list))
	for _, d := range list {
		fmt.Fprintf(os.Stderr, "%s:%s\n", path, d.Error())
	}
	return true
}

func exitCode(err error) int {
	var list diag.List
	if errors.As(err, &list) {
		return 1
	}
	return 2
}
