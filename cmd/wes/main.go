package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wesleylang/wesley/config"
	"github.com/wesleylang/wesley/pkg/wesley/errors"
	"github.com/wesleylang/wesley/pkg/wesley/lexer"
	"github.com/wesleylang/wesley/pkg/wesley/parser"
	"github.com/wesleylang/wesley/pkg/wesley/repl"
	"github.com/wesleylang/wesley/pkg/wesley/wesley"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

var (
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	checkFlag    = flag.Bool("check", false, "Check syntax without executing")
	watchFlag    = flag.Bool("watch", false, "Re-run files when they change")
	configFlag   = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag || *versionLongFlag {
		fmt.Printf("wes version %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag, os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := *evalFlag
	if code == "" {
		code = *evalLongFlag
	}
	if code != "" {
		os.Exit(evalString(code))
	}

	files := flag.Args()
	if len(files) == 0 {
		repl.Start(os.Stdout, Version, repl.Options{
			Prompt:      cfg.Prompt,
			HistoryFile: cfg.HistoryFile,
		})
		return
	}

	if *checkFlag {
		os.Exit(checkFiles(files))
	}
	if *watchFlag {
		if err := watchFiles(files, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	os.Exit(runFiles(files))
}

func evalString(code string) int {
	interp := wesley.New(nil)
	if _, err := interp.EvaluateString(code, wesley.EvalFilename); err != nil {
		fmt.Println(report(err))
		return 1
	}
	return 0
}

// runFiles evaluates each file in order against one interpreter, printing
// errors in the batch format.
func runFiles(files []string) int {
	interp := wesley.New(nil)
	status := 0
	for _, file := range files {
		if _, err := interp.EvaluateFile(file); err != nil {
			fmt.Println(report(err))
			status = 1
		}
	}
	return status
}

// checkFiles parses each file without evaluating it.
func checkFiles(files []string) int {
	lex := lexer.New()
	rule := parser.Grammar()
	status := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Can not open %s\n", file)
			status = 1
			continue
		}
		tokens, err := lex.Lex(string(data), file)
		if err != nil {
			fmt.Println(report(err))
			status = 1
			continue
		}
		lexer.Dequote(tokens)
		if _, err := parser.Parse(rule, tokens, file); err != nil {
			fmt.Println(report(err))
			status = 1
		}
	}
	return status
}

func report(err error) string {
	if werr, ok := err.(*errors.Error); ok {
		return werr.Report()
	}
	if lerr, ok := err.(*lexer.Error); ok {
		return fmt.Sprintf("Parsing error: %q in '%s' line: %d", lerr.Message, lerr.Filename, lerr.Pos.Line)
	}
	return err.Error()
}

func printHelp() {
	fmt.Println(`wes - the Wesley language interpreter

Usage:
  wes                    Start interactive REPL
  wes file...            Evaluate script files in order
  wes -e 'code'          Evaluate a code string
  wes --check file...    Check syntax without executing
  wes --watch file...    Evaluate files, re-running on change

Flags:
  -e, --eval    Evaluate code string
  --check       Check syntax without executing
  --watch       Re-run files when they change
  --config      Path to config file (default: wes.yaml)
  -V, --version Show version information
  -h, --help    Show this help message`)
}
