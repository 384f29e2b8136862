package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/devgony/stc/pkg/builtins"
	"github.com/devgony/stc/pkg/driver"
	"github.com/devgony/stc/pkg/parser"
)

const cliToolVersion = "stc 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "parse":
		return runParse(args[1:], stdout, stderr)
	case "libs":
		for _, name := range builtins.Names() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: stc <command> [options]

commands:
  check [-c stc.yaml] [--rev REV --repo DIR] [--url URL] [--log-level LVL] files...
  parse FILE        print the syntax tree of FILE as JSON
  libs              list builtin declaration libraries
  version           print the tool version
`)
}

// parseFlags parses command options. When ok is false the command is done
// and exits with code: requested help prints to stdout and exits 0.
func parseFlags(opts any, name string, args []string, stdout, stderr io.Writer) (rest []string, code int, ok bool) {
	p := flags.NewParser(opts, flags.Default&^flags.PrintErrors)
	p.Name = "stc " + name
	rest, err := p.ParseArgs(args)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, ferr.Message)
			return nil, 0, false
		}
		fmt.Fprintf(stderr, "%s: %v\n", p.Name, err)
		return nil, 1, false
	}
	return rest, 0, true
}

type parseOptions struct {
	Compact bool `long:"compact" description:"print JSON on one line"`
}

func runParse(args []string, stdout, stderr io.Writer) int {
	var opts parseOptions
	rest, code, ok := parseFlags(&opts, "parse", args, stdout, stderr)
	if !ok {
		return code
	}
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "stc parse: expected exactly one file")
		return 1
	}
	path := rest[0]
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "read source: %v\n", err)
		return 1
	}
	p, err := parser.NewModuleParser()
	if err != nil {
		fmt.Fprintf(stderr, "init parser: %v\n", err)
		return 1
	}
	defer p.Close()

	mod, err := p.ParseModule(path, content)
	if err != nil {
		fmt.Fprintln(stderr, driver.DescribeError(err))
		return 1
	}
	var out []byte
	if opts.Compact {
		out, err = json.Marshal(mod)
	} else {
		out, err = json.MarshalIndent(mod, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(stderr, "encode module: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}
