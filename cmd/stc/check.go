package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/viant/afs"

	"github.com/devgony/stc/pkg/analyzer"
	"github.com/devgony/stc/pkg/driver"
	"github.com/devgony/stc/pkg/logging"
)

type checkOptions struct {
	Config   string `short:"c" long:"config" description:"project configuration file (default: ./stc.yaml when present)"`
	Rev      string `long:"rev" description:"check files as they were at a git revision"`
	Repo     string `long:"repo" default:"." description:"repository read with --rev"`
	URL      string `long:"url" description:"read sources below a URL (file://, mem://, s3://, gs://)"`
	LogLevel string `long:"log-level" default:"WARN" description:"DEBUG, INFO, WARN or ERROR"`
	Jobs     int    `short:"j" long:"jobs" description:"files checked concurrently (default: GOMAXPROCS)"`
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	var opts checkOptions
	files, code, ok := parseFlags(&opts, "check", args, stdout, stderr)
	if !ok {
		return code
	}
	if opts.Rev != "" && opts.URL != "" {
		fmt.Fprintln(stderr, "stc check: --rev and --url are exclusive")
		return 1
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(files) == 0 {
		if files, err = cfg.Files(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(stderr, "stc check: no input files")
		return 1
	}

	src, err := openSource(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := logging.New(opts.LogLevel, stderr)
	checker, err := driver.NewChecker(cfg, src, logger, driver.WithConcurrency(opts.Jobs))
	if err != nil {
		fmt.Fprintf(stderr, "stc check: %v\n", err)
		return 1
	}
	defer checker.Close()

	results, err := checker.CheckFiles(context.Background(), files)
	if err != nil {
		fmt.Fprintln(stderr, driver.DescribeError(err))
		return 1
	}

	errorCount := 0
	for _, res := range results {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(stdout, driver.DescribeWithSource(d, checker.Loader().Sources()))
			if d.Severity == analyzer.SeverityError {
				errorCount++
			}
		}
	}
	if errorCount > 0 {
		fmt.Fprintf(stderr, "found %d error(s) in %d file(s)\n", errorCount, len(results))
		return 1
	}
	return 0
}

// loadConfig reads the named configuration, or ./stc.yaml when present.
func loadConfig(path string) (*driver.Config, error) {
	if path != "" {
		return driver.LoadConfig(path)
	}
	if _, err := os.Stat(driver.ConfigFileName); err == nil {
		return driver.LoadConfig(driver.ConfigFileName)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return driver.DefaultConfig(), nil
}

func openSource(opts checkOptions) (driver.Source, error) {
	switch {
	case opts.Rev != "":
		return driver.OpenGitSource(opts.Repo, opts.Rev)
	case opts.URL != "":
		return driver.NewURLSource(afs.New(), opts.URL), nil
	}
	return driver.NewDirSource(""), nil
}
