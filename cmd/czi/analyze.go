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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/c2j/czi/internal/output"
	"github.com/c2j/czi/internal/ui"
	"github.com/c2j/czi/pkg/analysis"
	"github.com/c2j/czi/pkg/config"
	"github.com/c2j/czi/pkg/zombie"
)

// findingJSON is the --json shape for one ZombieFinding.
type findingJSON struct {
	Symbol            string  `json:"symbol"`
	Kind              string  `json:"kind"`
	FilePath          string  `json:"file_path"`
	Line              int     `json:"line"`
	Confidence        float64 `json:"confidence"`
	IsolationDistance *int    `json:"isolation_distance,omitempty"`
}

// analyzeResultJSON is the --json shape for the whole analyze command.
type analyzeResultJSON struct {
	FilesParsed     int           `json:"files_parsed"`
	FilesSkipped    int           `json:"files_skipped"`
	SymbolsTotal    int           `json:"symbols_total"`
	RootsDetected   int           `json:"roots_detected"`
	ReachableCount  int           `json:"reachable_count"`
	FindingCount    int           `json:"finding_count"`
	TotalDurationMS int64         `json:"total_duration_ms"`
	Findings        []findingJSON `json:"findings"`
}

func runAnalyze(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	minConfidence := fs.Float64("min-confidence", 0, "Only show findings at or above this confidence")
	kindFilter := fs.String("kind", "", "Only show findings of this kind (DeadCode, Orphaned, Unreachable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: czi analyze [options] [path]

Finds dead, orphaned and unreachable code in the repository at path
(default: current directory).

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	report, err := runPipeline(ctx, root, globals)
	if err != nil {
		fatal(err, globals)
	}

	findings := report.Findings
	if *kindFilter != "" {
		findings = filterByKind(findings, zombie.Kind(*kindFilter))
	}
	if *minConfidence > 0 {
		findings = filterByConfidence(findings, *minConfidence)
	}

	if globals.JSON {
		printAnalyzeJSON(report, findings)
		return
	}
	printAnalyzeHuman(report, findings)
}

// runPipeline builds an analysis.Config from the default on-disk shape and
// runs the pipeline, showing a spinner while it works (analyze's file count
// is unknown until discovery completes, so a spinner rather than a bar).
func runPipeline(ctx context.Context, root string, globals GlobalFlags) (*analysis.Report, error) {
	cfg := analysis.FromConfig(config.Default(), root, globals.RepoID)
	if globals.Language != "" {
		cfg.Languages = []string{globals.Language}
	}
	p := analysis.NewPipeline(cfg, nil)

	progress := NewProgressConfig(globals)
	spinner := NewSpinner(progress, "analyzing")
	done := make(chan struct{})
	if spinner != nil {
		go func() {
			ticker := time.NewTicker(80 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					_ = spinner.Finish()
					return
				case <-ticker.C:
					_ = spinner.Add(1)
				}
			}
		}()
	}

	report, err := p.RunDir(ctx)
	close(done)
	return report, err
}

func filterByKind(findings []zombie.Finding, kind zombie.Kind) []zombie.Finding {
	var out []zombie.Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func filterByConfidence(findings []zombie.Finding, min float64) []zombie.Finding {
	var out []zombie.Finding
	for _, f := range findings {
		if f.Confidence >= min {
			out = append(out, f)
		}
	}
	return out
}

func printAnalyzeJSON(report *analysis.Report, findings []zombie.Finding) {
	result := analyzeResultJSON{
		FilesParsed:     report.Stats.FilesParsed,
		FilesSkipped:    report.Stats.FilesSkipped,
		SymbolsTotal:    report.Graph.NumSymbols(),
		RootsDetected:   report.Stats.RootsDetected,
		ReachableCount:  report.Stats.ReachableCount,
		FindingCount:    len(findings),
		TotalDurationMS: report.Stats.TotalDuration.Milliseconds(),
	}
	for _, f := range findings {
		dist := f.IsolationDistance
		entry := findingJSON{
			Symbol:     f.Symbol.QualifiedName,
			Kind:       string(f.Kind),
			FilePath:   f.Symbol.FilePath,
			Line:       f.Symbol.Line,
			Confidence: f.Confidence,
		}
		if dist != zombie.Infinite {
			entry.IsolationDistance = &dist
		}
		result.Findings = append(result.Findings, entry)
	}
	if err := output.JSON(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printAnalyzeHuman(report *analysis.Report, findings []zombie.Finding) {
	ui.Header("Zombie Code Analysis")
	fmt.Printf("%s %s   %s %s   %s %s\n",
		ui.Label("Files parsed:"), ui.CountText(report.Stats.FilesParsed),
		ui.Label("Symbols:"), ui.CountText(report.Graph.NumSymbols()),
		ui.Label("Roots:"), ui.CountText(report.Stats.RootsDetected))
	fmt.Printf("%s %s   %s %s\n\n",
		ui.Label("Reachable:"), ui.CountText(report.Stats.ReachableCount),
		ui.Label("Findings:"), ui.CountText(len(findings)))

	if len(findings) == 0 {
		ui.Success("No zombie code found")
		return
	}

	for _, f := range findings {
		dist := "∞"
		if f.IsolationDistance != zombie.Infinite {
			dist = fmt.Sprintf("%d", f.IsolationDistance)
		}
		fmt.Printf("  [%s] %s %s (%s) confidence=%s isolation=%s\n",
			ui.DimText(f.Symbol.Location()), ui.KindText(string(f.Kind)), f.Symbol.QualifiedName, f.Symbol.Kind, ui.ConfidenceText(f.Confidence), dist)
	}
}

func fatal(err error, globals GlobalFlags) {
	if globals.JSON {
		_ = output.JSONError(err)
	} else {
		ui.Error(err.Error())
	}
	os.Exit(1)
}
