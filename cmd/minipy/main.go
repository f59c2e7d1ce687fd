package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/mxvl/minipy/internal/config"
	"github.com/mxvl/minipy/internal/evaluator"
	"github.com/mxvl/minipy/internal/lexer"
	"github.com/mxvl/minipy/internal/parser"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// readSource loads path and normalizes \r\n and bare \r to \n, the only
// line-ending form the lexer understands, per the front-end/lexer contract.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return lineEndings.Replace(string(data)), nil
}

func loadSettings(c *cli.Context) (config.Settings, error) {
	return config.Load(c.String("config"))
}

func lexFile(c *cli.Context, path string) ([]lexer.Token, error) {
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	return lexer.New(src, lexer.WithSpacesPerIndentLevel(settings.SpacesPerIndentLevel)).Lex()
}

func parseFile(c *cli.Context, path string) (*parser.Program, error) {
	toks, err := lexFile(c, path)
	if err != nil {
		return nil, err
	}
	return parser.New(toks).ParseProgram()
}

func runTokens(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return usageError(c)
	}
	toks, err := lexFile(c, path)
	if err != nil {
		return err
	}
	for _, t := range toks {
		fmt.Fprintf(c.App.Writer, "%-12s %q\n", t.Kind, t.Text)
	}
	return nil
}

func runAST(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return usageError(c)
	}
	prog, err := parseFile(c, path)
	if err != nil {
		return err
	}
	repr.New(c.App.Writer).Println(prog)
	return nil
}

func runProgram(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return usageError(c)
	}
	prog, err := parseFile(c, path)
	if err != nil {
		return err
	}
	if c.Bool("dump-ast") {
		repr.New(c.App.ErrWriter).Println(prog)
	}
	ev := evaluator.New(func(s string) { fmt.Fprint(c.App.Writer, s) })
	return ev.Run(prog)
}

// usageError reports the single fixed usage line the CLI contract requires;
// wrapped in frontendError so run's printing never double-prefixes it.
func usageError(c *cli.Context) error {
	return frontendError{msg: fmt.Sprintf("Usage: %s <source_file>", filepath.Base(c.App.Name))}
}

// frontendError is printed verbatim (no "Error: " prefix) because it is
// already the usage-mismatch message the CLI contract specifies.
type frontendError struct{ msg string }

func (e frontendError) Error() string { return e.msg }

// newApp builds the cli.App wired to stdout/stderr, so tests can supply
// buffers instead of the process's real standard streams.
func newApp(stdout, stderr io.Writer) *cli.App {
	debugEnabled := false

	app := &cli.App{
		Name:                 "minipy",
		Usage:                "a small indentation-based interpreter",
		UsageText:            "minipy [global options] <source_file>",
		ArgsUsage:            "<source_file>",
		EnableBashCompletion: true,
		Writer:               stdout,
		ErrWriter:            stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML settings file"},
			&cli.BoolFlag{Name: "dump-ast", Usage: "print the parsed AST before running"},
			&cli.BoolFlag{Name: "debug", Usage: "print a source-annotated stack trace on failure"},
			&cli.BoolFlag{Name: "verbose", Usage: "log the start of the run to stderr"},
		},
		Before: func(c *cli.Context) error {
			debugEnabled = c.Bool("debug")
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetOutput(stderr)
				log.SetPrefix("minipy: ")
				log.Println("starting run")
			}
			return runProgram(c)
		},
		Commands: []*cli.Command{
			{
				Name:      "tokens",
				Usage:     "print the lexer's token stream",
				ArgsUsage: "<source_file>",
				Action:    runTokens,
			},
			{
				Name:      "ast",
				Usage:     "print the parsed abstract syntax tree",
				ArgsUsage: "<source_file>",
				Action:    runAST,
			},
			{
				Name:      "run",
				Usage:     "execute a source file (the default action)",
				ArgsUsage: "<source_file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dump-ast", Usage: "print the parsed AST before running"},
				},
				Action: runProgram,
			},
		},
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Fprintf(stderr, "Usage: %s <source_file>\n", filepath.Base(c.App.Name))
		},
	}
	app.Metadata = map[string]interface{}{"debugEnabled": &debugEnabled}
	return app
}

// run executes the CLI for args (including args[0], the program name) and
// returns the process exit code, writing all output to stdout/stderr instead
// of touching the real standard streams directly. main is a thin wrapper
// around this so tests can drive the whole front-end without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintf(stderr, "Usage: %s <source_file>\n", filepath.Base(programName(args)))
		return 1
	}

	app := newApp(stdout, stderr)
	err := app.Run(args)
	if err == nil {
		return 0
	}

	if fe, ok := err.(frontendError); ok {
		fmt.Fprintln(stderr, fe.msg)
		return 1
	}
	if ce, ok := err.(cli.ExitCoder); ok {
		fmt.Fprintln(stderr, "Error:", ce.Error())
		return ce.ExitCode()
	}
	if debugEnabled, ok := app.Metadata["debugEnabled"].(*bool); ok && *debugEnabled {
		fmt.Fprint(stderr, tracerr.SprintSourceColor(tracerr.Wrap(err)))
	}
	fmt.Fprintln(stderr, "Error:", err.Error())
	return 1
}

func programName(args []string) string {
	if len(args) == 0 {
		return "minipy"
	}
	return args[0]
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
