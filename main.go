package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dotflip/internal/config"
	"dotflip/internal/index"
	"dotflip/internal/logger"
	"dotflip/internal/model"
	"dotflip/internal/toggle"
	"dotflip/internal/tui"
	"dotflip/internal/watch"
	"dotflip/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "spencerwmiles",
		Repository: "dotflip",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/spencerwmiles/dotflip/releases")
	} else if pflag.Lookup("update").Changed {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dotflip [options] [directory]\n\n")
		fmt.Fprintf(os.Stderr, "dotflip finds KEY=VALUE dotfiles (.env, .flags, .config) in a project\n")
		fmt.Fprintf(os.Stderr, "tree and cycles toggleable values (true/false, on/off, ...) in place.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dotflip                      # Start TUI mode in the current directory\n")
		fmt.Fprintf(os.Stderr, "  dotflip --report             # Print all entries and diagnostics\n")
		fmt.Fprintf(os.Stderr, "  dotflip --json               # Output the parsed index as JSON\n")
		fmt.Fprintf(os.Stderr, "  dotflip --toggle .env:3      # Flip the value on line 3 of .env\n")
		fmt.Fprintf(os.Stderr, "  dotflip -t .env:3 -y --quiet # Same, scriptable: no prompt, no context\n")
	}

	jsonFlag := pflag.BoolP("json", "j", false, "Output the parsed index as JSON")
	reportFlag := pflag.BoolP("report", "r", false, "Generate a detailed diagnostic report (CLI mode)")
	outputFlag := pflag.StringP("output", "o", "", "Save report to the specified file (combined with --report)")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Include value spans and raw lines in the report")
	toggleFlag := pflag.StringP("toggle", "t", "", "Toggle a value at FILE:LINE (0-based line) and exit")
	quietFlag := pflag.BoolP("quiet", "q", false, "Suppress line-context output after --toggle")
	yesFlag := pflag.BoolP("yes", "y", false, "Skip the not-git-ignored confirmation prompt")
	configFlag := pflag.StringP("config", "c", "", "Path to a dotflip.toml config file")
	webFlag := pflag.BoolP("web", "w", false, "Start Web Mode on http://localhost:8080")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("dotflip version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	// Settings like DEBUG or DOTFLIP_CONFIG may live in a local .env —
	// which is, after all, the kind of file this tool is about.
	_ = godotenv.Load()
	logger.Init()

	root := "."
	if pflag.NArg() > 0 {
		root = pflag.Arg(0)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving directory: %v\n", err)
		os.Exit(1)
	}

	cfg, cfgPath, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfgPath != "" {
		logger.Debug("loaded config from %s", cfgPath)
	}

	ix := index.New(root, cfg.Table(), cfg.Patterns)
	engine := toggle.NewEngine(root, cfg.Table(), toggle.NewGitIgnoreChecker(root), ix)

	if *toggleFlag != "" {
		runToggleMode(engine, root, *toggleFlag, *quietFlag, *yesFlag)
		return
	}

	if *jsonFlag {
		runJsonMode(ix)
		return
	}

	if *reportFlag {
		runReportMode(ix, *outputFlag, *verboseFlag)
		return
	}

	if *webFlag {
		runWebMode(ix, engine)
		return
	}

	// Default: TUI. 'R' re-loads configuration and rebuilds everything
	// derived from it.
	reconfigure := func() error {
		fresh, _, err := config.Load(*configFlag)
		if err != nil {
			return err
		}
		engine.SetTable(fresh.Table())
		return ix.Reconfigure(fresh.Table(), fresh.Patterns)
	}
	runTuiMode(ix, engine, reconfigure)
}

func runReportMode(ix *index.Index, outputFile string, verbose bool) {
	if err := ix.RefreshAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning: %v\n", err)
		os.Exit(1)
	}

	report := index.GenerateReport(ix.All(), verbose)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(report), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report to %s: %v\n", outputFile, err)
			os.Exit(1)
		}
		fmt.Printf("Report saved to %s\n", outputFile)
	} else {
		fmt.Println(report)
	}
}

func runJsonMode(ix *index.Index) {
	if err := ix.RefreshAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(ix.All())
}

// runToggleMode performs a one-shot toggle. Without --quiet this is the
// interactive variant: the toggled line is shown in context afterwards.
func runToggleMode(engine *toggle.Engine, root, target string, quiet, yes bool) {
	path, line, err := parseTarget(root, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if yes {
		engine.Acknowledge(path)
	}
	engine.SetConfirmer(func(p string) bool {
		fmt.Printf("%s is not listed in .gitignore. Edit anyway? [y/N] ", p)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})

	var outcome model.ToggleOutcome
	if quiet {
		outcome = engine.ToggleSilently(path, line)
	} else {
		outcome = engine.Toggle(path, line, printLineContext)
	}

	if !outcome.Success {
		fmt.Fprintf(os.Stderr, "✗ %s (%s)\n", outcome.Message, outcome.Kind)
		os.Exit(1)
	}
	fmt.Printf("✓ %s\n", outcome.Message)
}

// printLineContext is the CLI's "bring the file into view".
func printLineContext(path string, line int) {
	ctx := model.GetLineContext(path, line)
	if ctx.ErrorMsg != "" {
		return
	}
	if ctx.HasBefore2 {
		fmt.Printf("  %3d  %s\n", line-2, ctx.Before2)
	}
	if ctx.HasBefore1 {
		fmt.Printf("  %3d  %s\n", line-1, ctx.Before1)
	}
	fmt.Printf("> %3d  %s\n", line, ctx.Target)
	if ctx.HasAfter1 {
		fmt.Printf("  %3d  %s\n", line+1, ctx.After1)
	}
	if ctx.HasAfter2 {
		fmt.Printf("  %3d  %s\n", line+2, ctx.After2)
	}
}

// parseTarget splits "FILE:LINE". The colon split is from the right so
// relative paths with colons in directory names still work.
func parseTarget(root, target string) (string, int, error) {
	idx := strings.LastIndex(target, ":")
	if idx <= 0 || idx == len(target)-1 {
		return "", 0, fmt.Errorf("expected FILE:LINE, got %q", target)
	}
	line, err := strconv.Atoi(target[idx+1:])
	if err != nil || line < 0 {
		return "", 0, fmt.Errorf("invalid line number in %q", target)
	}
	path := target[:idx]
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return path, line, nil
}

func runWebMode(ix *index.Index, engine *toggle.Engine) {
	if err := ix.RefreshAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning: %v\n", err)
		os.Exit(1)
	}
	w := startWatcher(ix)
	if w != nil {
		defer w.Stop()
	}
	web.StartServer(ix, engine, os.Getenv("DOTFLIP_PORT"))
}

func runTuiMode(ix *index.Index, engine *toggle.Engine, reconfigure func() error) {
	w := startWatcher(ix)
	if w != nil {
		defer w.Stop()
	}

	m := tui.InitialModel(ix, engine)
	m.Reconfigure = reconfigure
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

// startWatcher keeps the index live. A watcher failure degrades to
// manual refreshes rather than aborting.
func startWatcher(ix *index.Index) *watch.Watcher {
	w, err := watch.New(ix.Root(), ix.Patterns(), watch.DefaultDebounce, func(events []model.FileEvent) {
		for _, ev := range events {
			ix.Apply(ev)
		}
	})
	if err != nil {
		logger.Debug("watcher unavailable: %v", err)
		return nil
	}
	if err := w.Start(); err != nil {
		logger.Debug("watcher failed to start: %v", err)
		w.Stop()
		return nil
	}
	return w
}
