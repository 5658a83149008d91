// Command lint-api checks an OpenAPI document against the flexidb API
// conventions.
//
// Usage:
//
//	go run ./cmd/lint-api [-config .apilint.yaml] [-severity warning] [-list] internal/api/openapi.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"flexidb/pkg/apilint"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("lint-api", flag.ContinueOnError)
	severity := fs.String("severity", "", "minimum severity to report: error, warning, info")
	configPath := fs.String("config", "", "path to an .apilint.yaml rule override file")
	list := fs.Bool("list", false, "list rules and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *list {
		for _, r := range apilint.Rules() {
			fmt.Printf("%s  %-7s  %s\n", r.ID, r.Severity, r.Description)
		}
		return 0
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: lint-api [flags] <openapi.yaml>")
		return 2
	}
	path := fs.Arg(0)

	var cfg *apilint.Config
	if *configPath != "" {
		var err error
		if cfg, err = apilint.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
	}

	linter, err := apilint.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	violations, err := linter.RunWithConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if *severity != "" {
		sev := apilint.Severity(*severity)
		switch sev {
		case apilint.SeverityError, apilint.SeverityWarning, apilint.SeverityInfo:
			violations = apilint.Filter(violations, sev)
		default:
			fmt.Fprintf(os.Stderr, "error: unknown severity %q\n", *severity)
			return 2
		}
	}

	for _, v := range violations {
		fmt.Println(v)
	}
	if len(violations) == 0 {
		fmt.Printf("%s: ok\n", path)
	} else {
		fmt.Printf("\n%d violation(s)\n", len(violations))
	}
	if apilint.HasErrors(violations) {
		return 1
	}
	return 0
}
