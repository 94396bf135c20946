// Command rulebuilder works with condition languages declared in YAML:
// it prints language schemas, and validates, evaluates and describes rules.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ezachrisen/rulebuilder"
	"github.com/ezachrisen/rulebuilder/config"
	json "github.com/goccy/go-json"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "rulebuilder - nested condition rules with JSON Schema languages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  rulebuilder languages -config languages.yaml")
	fmt.Fprintln(w, "  rulebuilder schema    -config languages.yaml -language L")
	fmt.Fprintln(w, "  rulebuilder validate  -config languages.yaml -language L -rule rule.json")
	fmt.Fprintln(w, "  rulebuilder eval      -config languages.yaml -language L -rule rule.json -data data.json [-trace]")
	fmt.Fprintln(w, "  rulebuilder describe  -config languages.yaml -language L -rule rule.json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use - to read the rule or the data from stdin.")
}

// command holds the flags shared by the subcommands.
type command struct {
	fs       *flag.FlagSet
	config   string
	language string
	rule     string
	data     string
	trace    bool
	verbose  bool
}

func newCommand(name string, stderr io.Writer) *command {
	c := &command{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.SetOutput(stderr)
	c.fs.StringVar(&c.config, "config", "", "YAML file declaring the languages (required)")
	c.fs.BoolVar(&c.verbose, "v", false, "log debug messages")
	if name == "languages" {
		return c
	}
	c.fs.StringVar(&c.language, "language", "", "language name (required)")
	if name == "schema" {
		return c
	}
	c.fs.StringVar(&c.rule, "rule", "", "JSON rule file, or - for stdin (required)")
	if name == "eval" {
		c.fs.StringVar(&c.data, "data", "", "JSON data file, or - for stdin (required)")
		c.fs.BoolVar(&c.trace, "trace", false, "print the conditions evaluated")
	}
	return c
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	name := args[0]
	switch name {
	case "languages", "schema", "validate", "eval", "describe":
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return 2
	}

	c := newCommand(name, stderr)
	if err := c.fs.Parse(args[1:]); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := c.execute(ctx, stdin, stdout, logger); err != nil {
		logger.Error(name+" failed", "error", err)
		if errors.Is(err, rulebuilder.ErrInvalidRule) {
			return 1
		}
		return 2
	}
	return 0
}

func (c *command) execute(ctx context.Context, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if err := c.required(); err != nil {
		return err
	}

	f, err := config.Load(c.config)
	if err != nil {
		return err
	}
	r := rulebuilder.NewRegistry(rulebuilder.WithLogger(logger))
	if err := f.Register(r); err != nil {
		return err
	}
	logger.Debug("loaded languages", "config", c.config, "languages", strings.Join(r.Languages(), ","))

	switch c.fs.Name() {
	case "languages":
		fmt.Fprintln(stdout, r.String())
		return nil
	case "schema":
		doc, err := r.Schema(c.language)
		if err != nil {
			return err
		}
		b, err := doc.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(b))
		return nil
	}

	rule, err := c.readRule(stdin)
	if err != nil {
		return err
	}

	switch c.fs.Name() {
	case "validate":
		if err := r.Validate(c.language, rule); err != nil {
			var ve *rulebuilder.ValidationError
			if errors.As(err, &ve) {
				for _, iss := range ve.Issues {
					fmt.Fprintf(stdout, "%s: %s\n", iss.Path, iss.Message)
				}
			}
			return err
		}
		fmt.Fprintln(stdout, "valid")
	case "describe":
		s, err := r.Describe(c.language, rule)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, s)
	case "eval":
		data, err := c.readData(stdin)
		if err != nil {
			return err
		}
		var tr *rulebuilder.Trace
		if c.trace {
			tr = &rulebuilder.Trace{}
			ctx = rulebuilder.WithTrace(ctx, tr)
		}
		ok, err := r.Evaluate(ctx, c.language, data, rule)
		if err != nil {
			return err
		}
		if tr != nil {
			fmt.Fprintln(stdout, tr.String())
		}
		fmt.Fprintln(stdout, ok)
	}
	return nil
}

func (c *command) required() error {
	missing := []string{}
	c.fs.VisitAll(func(f *flag.Flag) {
		if f.Name != "v" && f.Name != "trace" && f.Value.String() == "" {
			missing = append(missing, "-"+f.Name)
		}
	})
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	if c.rule == "-" && c.data == "-" {
		return fmt.Errorf("only one of -rule and -data can read stdin")
	}
	return nil
}

func (c *command) readRule(stdin io.Reader) (rulebuilder.Node, error) {
	b, err := readInput(c.rule, stdin)
	if err != nil {
		return nil, fmt.Errorf("reading rule: %w", err)
	}
	return rulebuilder.ParseNode(b)
}

func (c *command) readData(stdin io.Reader) (any, error) {
	b, err := readInput(c.data, stdin)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	return data, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
