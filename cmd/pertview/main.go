package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dvermeulen86/pertview/internal/datasource"
	"github.com/dvermeulen86/pertview/pkg/config"
	"github.com/dvermeulen86/pertview/pkg/debug"
	"github.com/dvermeulen86/pertview/pkg/export"
	"github.com/dvermeulen86/pertview/pkg/loader"
	"github.com/dvermeulen86/pertview/pkg/model"
	"github.com/dvermeulen86/pertview/pkg/schedule"
	"github.com/dvermeulen86/pertview/pkg/ui"
	"github.com/dvermeulen86/pertview/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	repoPath := flag.String("repo", "", "Repository path (defaults to current directory)")
	snapshot := flag.String("snapshot", "", "Render a schedule snapshot to the given path (svg or png) and exit")
	snapshotFormat := flag.String("format", "", "Snapshot format: svg or png (inferred from extension when empty)")
	title := flag.String("title", "", "Snapshot title")
	debugFlag := flag.Bool("debug", false, "Enable debug logging (same as PERTVIEW_DEBUG=1)")
	flag.Parse()

	if *debugFlag {
		debug.SetEnabled(true)
	}

	if *help {
		fmt.Println("Usage: pertview [options]")
		fmt.Println("\nA PERT/CPM schedule viewer for issue trackers.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	issues, err := datasource.LoadIssues(*repoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading issues: %v\n", err)
		fmt.Fprintln(os.Stderr, "Make sure the repository has a .issues directory or set PERTVIEW_ISSUES_DIR.")
		os.Exit(1)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		debug.Log("config load: %v", cfgErr)
	}

	if *snapshot != "" {
		if err := writeSnapshot(issues, cfg, *snapshot, *snapshotFormat, *title); err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshot)
		os.Exit(0)
	}

	if err := runTUI(issues, cfg, *repoPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error running pertview: %v\n", err)
		os.Exit(1)
	}
}

func writeSnapshot(issues []model.Issue, cfg config.Config, path, format, title string) error {
	opts := schedule.DefaultOptions()
	if cfg.Schedule.DefaultDurationHours > 0 {
		opts.DefaultDurationHours = cfg.Schedule.DefaultDurationHours
	}
	g := schedule.BuildIssues(issues, opts)
	return export.SaveSnapshot(export.SnapshotOptions{
		Path:   path,
		Format: format,
		Title:  title,
		Graph:  g,
		Issues: issues,
	})
}

func runTUI(issues []model.Issue, cfg config.Config, repoPath string) error {
	reload := func() ([]model.Issue, error) {
		var fresh []model.Issue
		var err error
		debug.Timed("reload issues", func() {
			fresh, err = datasource.LoadIssues(repoPath)
		})
		return fresh, err
	}

	m := ui.NewModel(issues, &cfg, reload)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithoutSignalHandler())

	// Live reload on snapshot changes.
	var w *watcher.Watcher
	if dir, err := loader.GetIssuesDir(repoPath); err == nil {
		if path, err := loader.FindJSONLPath(dir); err == nil {
			w = watcher.New(path, watcher.WithOnChange(func() {
				fresh, err := reload()
				p.Send(ui.IssuesReloadedMsg{Issues: fresh, Err: err})
			}))
			if err := w.Start(); err != nil {
				debug.Log("watcher start: %v", err)
			}
		}
	}
	if w != nil {
		defer w.Stop()
	}

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
		case <-sigCh:
			p.Quit()
		}
	}()

	_, err := p.Run()
	return err
}
