// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the czi CLI: analyze a repository for dead,
// orphaned and unreachable code, and query the resulting dependency
// graph.
//
// Usage:
//
//	czi analyze [path]                 Find zombie code in a repository
//	czi deps <symbol> [path]           Show a symbol's dependencies
//	czi dependents <symbol> [path]     Show a symbol's dependents
//	czi path <from> <to> [path]        Shortest path between two symbols
//	czi isolate <symbol> [path]        Isolation boundary from active code
//	czi info <symbol> [path]           Symbol details and edge counts
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/c2j/czi/internal/ui"
)

// GlobalFlags are the options every subcommand recognises.
type GlobalFlags struct {
	JSON     bool
	Quiet    bool
	NoColor  bool
	Verbose  int
	RepoID   string
	Language string
}

var version = "dev"

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output as JSON")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		repoID      = flag.String("repo-id", "local", "Repository identifier embedded in symbol fingerprints")
		language    = flag.String("language", "", "Restrict analysis to a single language (java, javascript, python, shell)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `czi - zombie code analyzer

Usage:
  czi <command> [options] [path]

Commands:
  analyze            Find dead, orphaned and unreachable code
  deps <symbol>       Show a symbol's dependencies
  dependents <symbol>  Show a symbol's dependents
  path <from> <to>    Shortest path between two symbols
  isolate <symbol>     Isolation boundary from the nearest active root
  info <symbol>        Symbol details and edge counts

Global Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  czi analyze .
  czi analyze --json .
  czi deps app.services.UserService
  czi path app.main.handler app.db.connect
`)
	}

	flag.Parse()
	ui.InitColors(*noColor)

	if *showVersion {
		fmt.Printf("czi version %s\n", version)
		os.Exit(0)
	}

	globals := GlobalFlags{JSON: *jsonOutput, Quiet: *quiet, NoColor: *noColor, RepoID: *repoID, Language: *language}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "analyze":
		runAnalyze(cmdArgs, globals)
	case "deps":
		runDependencyQuery(cmdArgs, globals, queryDependencies)
	case "dependents":
		runDependencyQuery(cmdArgs, globals, queryDependents)
	case "path":
		runPathQuery(cmdArgs, globals)
	case "isolate":
		runIsolateQuery(cmdArgs, globals)
	case "info":
		runInfoQuery(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
