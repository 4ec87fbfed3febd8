// cmd/rulectl/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mgr01/openhab-js/internal/compile"
	"github.com/mgr01/openhab-js/internal/config"
	"github.com/mgr01/openhab-js/internal/daemon"
	"github.com/mgr01/openhab-js/internal/engine"
	"github.com/mgr01/openhab-js/internal/logging"
	"github.com/mgr01/openhab-js/internal/mcp"
	"github.com/mgr01/openhab-js/internal/state"
	"github.com/mgr01/openhab-js/internal/template"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = cmdInit()
	case "validate":
		err = cmdValidate(args)
	case "describe":
		err = cmdDescribe(args)
	case "compile":
		err = cmdCompile(args)
	case "list":
		err = cmdList()
	case "watch":
		err = cmdWatch()
	case "mcp-server":
		err = cmdMCPServer()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rulectl - Compile and inspect declarative automation rules

Usage: rulectl <command> [options]

Commands:
  init                      Create the config file and rules directory
  validate [file...]        Validate rule files (default: the rules directory)
  describe <file>           Show a rule's triggers and the next cron fire times
  compile [-o json|yaml] <file>
                            Print the compiled engine rule
  list                      List rules stored in the registry
  watch                     Compile the rules directory and recompile on change
  mcp-server                Serve the registry over MCP on stdio

Environment:
  RULECTL_CONFIG            Config file path
  RULECTL_RULES_DIR         Rules directory`)
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "rulectl")
}

func configPath() string {
	if p := os.Getenv("RULECTL_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.yaml")
}

func rulesDir() string {
	if d := os.Getenv("RULECTL_RULES_DIR"); d != "" {
		return d
	}
	return filepath.Join(configDir(), "rules")
}

// loadGlobal falls back to defaults when the config file does not exist
func loadGlobal() (*config.Global, error) {
	path := configPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.DefaultGlobal(), nil
	}
	return config.LoadGlobal(path)
}

func cmdInit() error {
	dir := rulesDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	fmt.Printf("Created %s\n", dir)

	path := configPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := yaml.Marshal(config.DefaultGlobal())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Created %s\n", path)
	}

	fmt.Println("\nInitialization complete. Add rules to:", dir)
	return nil
}

func compileFile(path string) (*config.Rule, *engine.Rule, error) {
	decl, err := config.LoadRule(path)
	if err != nil {
		return nil, nil, err
	}
	rule, err := compile.Rule(decl, nil)
	return decl, rule, err
}

func cmdValidate(args []string) error {
	paths := args
	if len(paths) == 0 {
		files, err := config.LoadRulesDir(rulesDir())
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}

	failed := 0
	for _, path := range paths {
		_, rule, err := compileFile(path)
		if err != nil {
			failed++
			fmt.Printf("FAIL %s\n", path)
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Printf("     %s\n", line)
			}
			continue
		}
		fmt.Printf("ok   %s (%s)\n", path, rule.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rules invalid", failed, len(paths))
	}
	fmt.Printf("Validated %d rules\n", len(paths))
	return nil
}

func cmdDescribe(args []string) error {
	flags := flag.NewFlagSet("describe", flag.ExitOnError)
	next := flags.Int("n", 3, "number of upcoming cron fire times to show")
	flags.Parse(args)

	if flags.NArg() < 1 {
		return fmt.Errorf("usage: rulectl describe [-n count] <file>")
	}

	decl, rule, err := compileFile(flags.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("Rule:        %s\n", rule.Name)
	fmt.Printf("UID:         %s\n", rule.UID)
	fmt.Printf("Description: %s\n", rule.Description)
	if len(rule.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(rule.Tags, ", "))
	}
	fmt.Println("Triggers:")
	for i, t := range rule.Triggers {
		label := ""
		if i < len(rule.Labels) {
			label = rule.Labels[i]
		}
		fmt.Printf("  %-30s %s\n", label, t.TypeUID)

		if t.TypeUID != engine.TypeGenericCron {
			continue
		}
		expr, _ := t.Configuration["cronExpression"].(string)
		sched, err := engine.ParseCron(expr)
		if err != nil {
			return err
		}
		at := time.Now()
		for range *next {
			at, err = sched.Next(at)
			if err != nil {
				fmt.Printf("    next: none (%v)\n", err)
				break
			}
			fmt.Printf("    next: %s\n", at.Format(time.RFC3339))
		}
	}
	if rule.Hold != nil {
		fmt.Printf("Hold:        %s stays %s for %s\n", rule.Hold.Item, rule.Hold.State, rule.Hold.For)
	}
	fmt.Printf("Action:      %s %q\n", logging.ParseLevel(decl.Action.Level), decl.Action.Log)
	if vars := template.Vars(decl.Action.Log); len(vars) > 0 {
		fmt.Printf("Variables:   %s\n", strings.Join(vars, ", "))
	}
	return nil
}

func cmdCompile(args []string) error {
	flags := flag.NewFlagSet("compile", flag.ExitOnError)
	output := flags.String("o", "json", "output format: json or yaml")
	flags.Parse(args)

	if flags.NArg() < 1 {
		return fmt.Errorf("usage: rulectl compile [-o json|yaml] <file>")
	}

	_, rule, err := compileFile(flags.Arg(0))
	if err != nil {
		return err
	}

	switch *output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rule)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rule)
	default:
		return fmt.Errorf("unknown output format: %s", *output)
	}
}

func cmdList() error {
	cfg, err := loadGlobal()
	if err != nil {
		return err
	}
	registry, err := state.Open(cfg.Registry.Path)
	if err != nil {
		return err
	}
	defer registry.Close()

	records, err := registry.ListRules()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No rules found")
		return nil
	}

	fmt.Printf("%-20s %-38s %s\n", "NAME", "UID", "TRIGGERS")
	fmt.Println(strings.Repeat("-", 80))
	for _, r := range records {
		fmt.Printf("%-20s %-38s %s\n", r.Name, r.UID, strings.Join(r.Labels, " | "))
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal")
		cancel()
	}()
	return ctx, cancel
}

func cmdWatch() error {
	cfg, err := loadGlobal()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Logging.Format, cfg.Logging.Level, nil)

	registry, err := state.Open(cfg.Registry.Path)
	if err != nil {
		return err
	}
	defer registry.Close()

	dir := cfg.Watch.RulesDir
	if env := os.Getenv("RULECTL_RULES_DIR"); env != "" || dir == "" {
		dir = rulesDir()
	}

	ctx, cancel := signalContext()
	defer cancel()

	return daemon.New(cfg, dir, registry, logger).Run(ctx)
}

func cmdMCPServer() error {
	cfg, err := loadGlobal()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	defer server.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}
