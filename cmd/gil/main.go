// gil is the command-line front end for the Gilgamesh language:
//
//	gil run FILE      execute a script
//	gil repl          interactive session (default when no args)
//	gil tokens FILE   dump the token stream (debug aid)
//
// An optional YAML config (default ~/.gil.yaml, override with --config) sets
// the REPL history file, the cooperative yield cadence, and extra module
// search paths.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	gilgamesh "github.com/TheAlphaLeopard/gilgamesh"
)

type config struct {
	HistoryFile string   `yaml:"history_file"`
	YieldEvery  int      `yaml:"yield_every"`
	ModulePaths []string `yaml:"module_paths"`
}

func defaultConfig() config {
	home, _ := os.UserHomeDir()
	return config{
		HistoryFile: filepath.Join(home, ".gil_history"),
		YieldEvery:  gilgamesh.DefaultYieldEvery,
	}
}

// loadConfig reads cfgPath when set, otherwise ~/.gil.yaml. A missing file is
// not an error; a malformed one is.
func loadConfig(cfgPath string) (config, error) {
	cfg := defaultConfig()
	path := cfgPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".gil.yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && cfgPath == "" {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.YieldEvery <= 0 {
		cfg.YieldEvery = gilgamesh.DefaultYieldEvery
	}
	return cfg, nil
}

// newInterpreter builds an interpreter whose module search paths are the
// configured ones plus the directory of the script being run (when any).
func newInterpreter(cfg config, scriptDir string) *gilgamesh.Interpreter {
	host := gilgamesh.NewStdHost()
	if scriptDir != "" {
		host.SearchPaths = append([]string{scriptDir}, host.SearchPaths...)
	}
	host.SearchPaths = append(host.SearchPaths, cfg.ModulePaths...)
	ip := gilgamesh.NewInterpreter(host)
	ip.YieldEvery = cfg.YieldEvery
	return ip
}

// watchInterrupt forwards Ctrl+C to the interpreter's interrupt flag. The
// returned func stops watching.
func watchInterrupt(ip *gilgamesh.Interpreter) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				ip.Interrupt()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "gil",
		Short:         "Gilgamesh scripting language",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			return runREPL(cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ~/.gil.yaml)")

	runCmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			return runFile(cfg, args[0])
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			return runREPL(cfg)
		},
	}

	tokensCmd := &cobra.Command{
		Use:   "tokens FILE",
		Short: "Dump the token stream of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpTokens(args[0])
		},
	}

	root.AddCommand(runCmd, replCmd, tokensCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFile(cfg config, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ip := newInterpreter(cfg, filepath.Dir(path))
	stop := watchInterrupt(ip)
	defer stop()

	if _, err := ip.RunSource(string(src)); err != nil {
		return gilgamesh.WrapErrorWithSource(err, string(src))
	}
	return nil
}

func dumpTokens(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	toks, err := gilgamesh.NewLexer(string(src)).Scan()
	if err != nil {
		return gilgamesh.WrapErrorWithSource(err, string(src))
	}
	for _, t := range toks {
		if t.Literal != nil {
			fmt.Printf("%3d:%-3d %-10s %v\n", t.Line, t.Col, t.Type, t.Literal)
			continue
		}
		fmt.Printf("%3d:%-3d %-10s %s\n", t.Line, t.Col, t.Type, t.Lexeme)
	}
	return nil
}
