// Package repl implements the interactive shell: read a line, evaluate it
// under the synthetic "__EVAL__" filename, and print non-empty results.
package repl

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/wesleylang/wesley/pkg/wesley/box"
	"github.com/wesleylang/wesley/pkg/wesley/errors"
	"github.com/wesleylang/wesley/pkg/wesley/wesley"
)

const Prompt = "eval> "

// Keywords for tab completion; registered function names are added at
// startup.
var keywords = []string{
	"var", "def", "if", "elseif", "else", "while", "for", "return", "break",
	"true", "false", "quit",
}

// Options configures the shell.
type Options struct {
	Prompt      string
	HistoryFile string
}

// Start runs the REPL until the user enters "quit" or closes the input.
func Start(out io.Writer, version string, opts Options) {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = Prompt
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	interp := wesley.New(wesley.WriterLogger(out))

	words := completionWords(interp)
	line.SetCompleter(func(input string) []string {
		return filterCompletions(words, input)
	})

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintf(out, "wesley v%s\n", version)
	fmt.Fprintln(out, "Type 'quit' or Ctrl+D to exit")

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "quit" {
			return
		}
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)

		val, err := interp.EvaluateString(input, wesley.EvalFilename)
		if err != nil {
			if werr, ok := err.(*errors.Error); ok {
				fmt.Fprintln(out, werr.Report())
			} else {
				fmt.Fprintln(out, err)
			}
			continue
		}
		printResult(out, interp, val)
	}
}

// printResult prints non-empty values as "result: <to_string>". Types with
// no to_string overload are silently skipped.
func printResult(out io.Writer, interp *wesley.Interp, val box.Value) {
	if val.IsEmpty() {
		return
	}
	str, err := interp.System().Dispatch("to_string", []box.Value{val})
	if err != nil {
		return
	}
	s, err := box.As[string](str)
	if err != nil {
		return
	}
	fmt.Fprintf(out, "result: %s\n", s)
}

func completionWords(interp *wesley.Interp) []string {
	words := append([]string{}, keywords...)
	words = append(words, interp.System().FunctionNames()...)
	sort.Strings(words)
	return words
}

// filterCompletions returns the words completing the final identifier on
// the line.
func filterCompletions(words []string, input string) []string {
	start := len(input)
	for start > 0 {
		c := input[start-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
			start--
			continue
		}
		break
	}
	partial := input[start:]
	if partial == "" {
		return nil
	}
	prefix := input[:start]

	var completions []string
	for _, w := range words {
		if strings.HasPrefix(w, partial) {
			completions = append(completions, prefix+w)
		}
	}
	return completions
}
