// Package inspect implements an interactive shell for exploring an action
// document and trying lint expressions against its linked actions.
package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/actionspec/pkg/lint"
	"github.com/ormasoftchile/actionspec/pkg/validate"
)

// Inspector holds one loaded document and the selected linked action.
type Inspector struct {
	path    string
	doc     any
	report  *validate.Report
	links   []any
	current int // -1 when no link is selected
	output  io.Writer
}

// New loads and validates path. Documents that fail to load are an error;
// documents that fail validation can still be inspected.
func New(path string, v *validate.Validator) (*Inspector, error) {
	doc, r := v.ValidateFile(path)
	if doc == nil {
		return nil, errors.New(r.Errors[0].Message)
	}
	in := &Inspector{path: path, doc: doc, report: r, current: -1, output: os.Stdout}
	if m, ok := doc.(map[string]any); ok {
		in.links, _ = m["links"].([]any)
	}
	if len(in.links) > 0 {
		in.current = 0
	}
	return in, nil
}

// SetOutput redirects command output.
func (in *Inspector) SetOutput(w io.Writer) { in.output = w }

var commands = []string{"links", "link", "report", "json", "eval", "help", "quit"}

// Run starts the interactive loop.
func (in *Inspector) Run() error {
	completer := readline.NewPrefixCompleter()
	for _, cmd := range commands {
		completer.Children = append(completer.Children, readline.PcItem(cmd))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          in.prompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(in.output, "actionspec inspect: %s, %d links, %s\n", in.path, len(in.links), in.status())
	fmt.Fprintf(in.output, "Type an expression to evaluate it, or 'help' for commands.\n\n")

	for {
		rl.SetPrompt(in.prompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if in.Execute(line) {
			return nil
		}
	}
}

// Execute runs one input line and reports whether the shell should exit.
// Lines that are not commands are evaluated as expressions.
func (in *Inspector) Execute(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "links", "l":
		in.handleLinks()
	case "link":
		in.handleSelect(arg)
	case "report", "r":
		in.handleReport()
	case "json", "j":
		in.handleJSON()
	case "eval", "=":
		in.handleEval(arg)
	case "help", "?":
		in.handleHelp()
	case "quit", "q", "exit":
		return true
	default:
		in.handleEval(line)
	}
	return false
}

func (in *Inspector) prompt() string {
	if in.current < 0 {
		return "actionspec[doc]> "
	}
	return fmt.Sprintf("actionspec[%d/%d | %s]> ", in.current+1, len(in.links), linkType(in.links[in.current]))
}

func (in *Inspector) status() string {
	if in.report.Valid() {
		return fmt.Sprintf("valid (%d warnings)", len(in.report.Warnings))
	}
	return fmt.Sprintf("invalid (%d errors)", len(in.report.Errors))
}

func (in *Inspector) handleLinks() {
	if len(in.links) == 0 {
		fmt.Fprintln(in.output, "No links.")
		return
	}
	for i, l := range in.links {
		marker := " "
		if i == in.current {
			marker = "*"
		}
		label := ""
		if m, ok := l.(map[string]any); ok {
			label, _ = m["label"].(string)
		}
		fmt.Fprintf(in.output, "%s %d. [%s] %s\n", marker, i+1, linkType(l), label)
	}
}

func (in *Inspector) handleSelect(arg string) {
	if arg == "-" {
		in.current = -1
		fmt.Fprintln(in.output, "No link selected.")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(in.links) {
		fmt.Fprintf(in.output, "Usage: link <1-%d> or link -\n", len(in.links))
		return
	}
	in.current = n - 1
	fmt.Fprintf(in.output, "Selected link %d [%s].\n", n, linkType(in.links[in.current]))
}

func (in *Inspector) handleReport() {
	fmt.Fprintf(in.output, "%s is %s\n", in.path, in.status())
	for i, e := range in.report.Errors {
		fmt.Fprintf(in.output, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(in.output, "     at: %s\n", e.Path)
		}
	}
	for _, w := range in.report.Warnings {
		fmt.Fprintf(in.output, "  ⚠ [%s] %s\n", w.Phase, w.Message)
		if w.Path != "" {
			fmt.Fprintf(in.output, "    at: %s\n", w.Path)
		}
	}
}

func (in *Inspector) handleJSON() {
	var v any = in.doc
	if in.current >= 0 {
		v = in.links[in.current]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(in.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(in.output, string(data))
}

func (in *Inspector) handleEval(expression string) {
	if expression == "" {
		fmt.Fprintln(in.output, "Usage: eval <expression>")
		return
	}
	env, err := lint.Env(in.doc, in.current)
	if err != nil {
		fmt.Fprintf(in.output, "Error: %v\n", err)
		return
	}
	out, err := lint.Eval(expression, env)
	if err != nil {
		fmt.Fprintf(in.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(in.output, "%v\n", out)
}

func (in *Inspector) handleHelp() {
	fmt.Fprint(in.output, `Commands:
  links (l)          list linked actions
  link <n> | link -  select a linked action, or none
  report (r)         show validation errors and warnings
  json (j)           print the selected link, or the document
  eval <expr> (=)    evaluate an expression; bare input does the same
  help (?)           show this help
  quit (q)           exit

Expressions see action, index and document, like lint rules.
`)
}

func linkType(l any) string {
	if m, ok := l.(map[string]any); ok {
		if t, ok := m["type"].(string); ok {
			return t
		}
	}
	return "?"
}
