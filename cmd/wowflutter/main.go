package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/wowflutter/internal/cli"
	"github.com/linuxmatters/wowflutter/internal/logging"
	"github.com/linuxmatters/wowflutter/internal/processor"
	"github.com/linuxmatters/wowflutter/internal/ui"
	"github.com/linuxmatters/wowflutter/internal/wfmeter"
)

var version = "0.0.1"

// CLI defines the command-line interface.
type CLI struct {
	Version  bool     `short:"v" help:"Show version information"`
	Freq     float64  `short:"f" default:"3150" help:"Test tone frequency in Hz"`
	Filter   string   `short:"w" default:"unweighted" enum:"unweighted,din,wow,flutter" help:"Weighting filter applied to the timing-error signal"`
	Tips     bool     `help:"Print diagnostic tips after each file"`
	Spectrum bool     `help:"Print the weighted-error spectrum diagnostic after each file"`
	TUI      bool     `help:"Show a live terminal UI while measuring"`
	Files    []string `arg:"" name:"files" help:"WAV files to measure" type:"existingfile" optional:""`
}

func parseFilterType(name string) wfmeter.FilterType {
	switch strings.ToLower(name) {
	case "din":
		return wfmeter.FilterDIN
	case "wow":
		return wfmeter.FilterWow
	case "flutter":
		return wfmeter.FilterFlutter
	default:
		return wfmeter.FilterUnweighted
	}
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("wowflutter"),
		kong.Description("Wow-and-flutter measurement for recorded test tones"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	filterType := parseFilterType(cliArgs.Filter)
	opts := logging.ReportOptions{IncludeTips: cliArgs.Tips, IncludeSpectrum: cliArgs.Spectrum}

	if cliArgs.TUI {
		runWithTUI(cliArgs.Files, cliArgs.Freq, filterType, opts)
		return
	}
	runHeadless(cliArgs.Files, cliArgs.Freq, filterType, opts)
}

func runHeadless(files []string, testFreq float64, filterType wfmeter.FilterType, opts logging.ReportOptions) {
	failed := 0
	for _, path := range files {
		summary, err := processor.MeasureFile(path, testFreq, filterType, nil)
		if err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", path, err))
			failed++
			continue
		}
		if err := logging.WriteReport(os.Stdout, path, summary, testFreq, filterType, opts); err != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", path, err))
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runWithTUI(files []string, testFreq float64, filterType wfmeter.FilterType, opts logging.ReportOptions) {
	model := ui.NewModel(files)
	p := tea.NewProgram(model, tea.WithAltScreen())

	summaries := make([]*processor.Summary, len(files))

	go func() {
		for i, path := range files {
			p.Send(ui.FileStartMsg{FileIndex: i, FileName: path})

			summary, err := processor.MeasureFile(path, testFreq, filterType, func(w processor.Window) {
				p.Send(ui.WindowMsg{WindowIndex: w.Index, Results: w.Results})
			})
			if err != nil {
				p.Send(ui.FileCompleteMsg{FileIndex: i, Error: err})
				continue
			}

			summaries[i] = summary
			p.Send(ui.FileCompleteMsg{FileIndex: i, Final: summary.Final})
		}
		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}

	for i, summary := range summaries {
		if summary == nil {
			continue
		}
		fmt.Println()
		logging.WriteReport(os.Stdout, files[i], summary, testFreq, filterType, opts)
	}
}
