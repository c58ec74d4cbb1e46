package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	gilgamesh "github.com/TheAlphaLeopard/gilgamesh"
)

const (
	promptMain = ">>> "
	promptCont = "... "
)

const banner = "Gilgamesh REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit."

const helpText = `REPL commands:
  :help    Show this help
  :quit    Exit the REPL
`

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func runREPL(cfg config) error {
	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.HistoryFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ip := newInterpreter(cfg, "")
	stop := watchInterrupt(ip)
	defer stop()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return nil
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return nil
			case ":help":
				fmt.Print(helpText)
			default:
				fmt.Println("unknown command. Type :help for a list.")
			}
			continue
		}

		ip.ClearInterrupt()
		v, err := ip.RunSource(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(gilgamesh.WrapErrorWithSource(err, code).Error()))
			continue
		}
		if v.Tag != gilgamesh.VTNull {
			fmt.Println(blue(gilgamesh.Stringify(v)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe gathers input one line at a time, re-parsing the
// accumulated text after each line. An incomplete-parse error (open block,
// unfinished expression at end of input) asks for a continuation line;
// anything else hands the text to the interpreter, which reports the error
// properly.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := gilgamesh.ParseInteractive(src); perr == nil {
			return src, true
		} else if gilgamesh.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
