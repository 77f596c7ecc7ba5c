package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/oamg/c2r-test-harness/config"
	"github.com/oamg/c2r-test-harness/framework/suite"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

type commandParams struct {
	configFile     string
	overrides      config.Overrides
	filters        suite.RegexFilters
	skipFile       string
	recordFailures string
	jUnitFile      string
	transcriptDir  string
	colorMode      string
	debug          bool
	debugAll       bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.StringVar(&c.configFile, "config", "", "session config file (.yaml, .yml or .toml)")
	fs.StringVar(&c.overrides.ToolPath, "tool", "", "path of the conversion tool, overriding the config and "+config.EnvTool)
	fs.StringVar(&c.overrides.Release, "release", "", "release identifier such as centos-7, overriding the config and "+config.EnvRelease)
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.skipFile, "skip-from", "", "file listing full names of tests not to run, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write the names of failed tests to this file, for use with -skip-from")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.transcriptDir, "transcripts", "", "save the output of every run of the tool under this directory")
	fs.BoolVar(&c.overrides.StrictCleanup, "strict-cleanup", false, "fail when entitlement certificates cannot be found or removed")
	fs.StringVar(&c.colorMode, "color", colorAuto, "colorize console output: auto, always or never")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false
	}
	switch c.colorMode {
	case colorAuto, colorAlways, colorNever:
	default:
		fmt.Fprintf(os.Stderr, "-color must be %s, %s or %s\n", colorAuto, colorAlways, colorNever)
		fs.Usage()
		return false
	}
	return true
}
