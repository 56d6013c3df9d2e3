package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"patch_monitor/analyzer"
	"patch_monitor/monitor"
	"patch_monitor/patchwork"
	"patch_monitor/server"
)

const usage = `Rust for Linux patch monitor.

Usage: patch_monitor <command> [flags]

Commands:
  projects   list all projects on the tracker
  list       list recent pending patch series
  analyze    analyze one series and print or save the report
  bulk       analyze multiple recent series in batch
  export     export series engagement data as JSON (no text generation)
  serve      browse generated reports over HTTP

Run 'patch_monitor <command> -h' for command flags.
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env next to the binary; the real environment always wins.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "projects":
		err = cmdProjects(os.Args[2:])
	case "list":
		err = cmdList(os.Args[2:])
	case "analyze":
		err = cmdAnalyze(os.Args[2:])
	case "bulk":
		err = cmdBulk(os.Args[2:])
	case "export":
		err = cmdExport(os.Args[2:])
	case "serve":
		err = cmdServe(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// trackerFlags are the flags shared by every command that reaches the tracker.
type trackerFlags struct {
	baseURL string
	config  string
	verbose bool
}

func (t *trackerFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&t.baseURL, "api", patchwork.DefaultBaseURL, "patchwork API base URL")
	fs.StringVar(&t.config, "config", "config.yaml", "path to config file")
	fs.BoolVar(&t.verbose, "v", false, "enable info logs")
}

func (t *trackerFlags) client(cfg monitor.Config) *patchwork.Client {
	client := patchwork.NewClient(t.baseURL)
	client.Policy = cfg.Classifier
	client.Verbose = t.verbose
	return client
}

func buildLLM(cfg monitor.Config, dryRun bool) (analyzer.LLMClient, error) {
	if dryRun {
		return analyzer.MockLLM{}, nil
	}
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set; set it or use -dry-run")
	}
	return analyzer.NewOpenAILLMFromConfig(&analyzer.LLMSettings{
		Model:   cfg.LLM.Model,
		APIKey:  key,
		BaseURL: cfg.LLM.BaseURL,
	})
}

func cmdProjects(args []string) error {
	fs := flag.NewFlagSet("projects", flag.ExitOnError)
	var tf trackerFlags
	tf.register(fs)
	fs.Parse(args)

	cfg, err := monitor.LoadConfig(tf.config)
	if err != nil {
		return err
	}
	projects, err := tf.client(cfg).ListProjects(context.Background())
	if err != nil {
		return err
	}
	for i, p := range projects {
		fmt.Printf("%3d. %s\n     Link: %s\n\n", i+1, p.Name, p.LinkName)
	}
	return nil
}

func listSeries(ctx context.Context, client *patchwork.Client, days int, includeResolved bool) ([]patchwork.Series, error) {
	project, err := client.ProjectID(ctx)
	if err != nil {
		return nil, err
	}
	series, excluded, err := client.RecentSeries(ctx, project, days, includeResolved)
	if err != nil {
		return nil, err
	}
	if !includeResolved && excluded > 0 {
		fmt.Printf("Excluded %d applied patch series\n", excluded)
	}
	return series, nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var tf trackerFlags
	tf.register(fs)
	days := fs.Int("days", 90, "days to look back for patches")
	includeResolved := fs.Bool("include-applied", false, "include already applied patch series")
	fs.Parse(args)

	cfg, err := monitor.LoadConfig(tf.config)
	if err != nil {
		return err
	}
	series, err := listSeries(context.Background(), tf.client(cfg), *days, *includeResolved)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d patch series in the last %d days:\n\n", len(series), *days)
	printSeriesList(series)
	return nil
}

func printSeriesList(series []patchwork.Series) {
	for i, s := range series {
		fmt.Printf("%2d. %s\n", i+1, s.Name)
		name := s.Submitter.Name
		if name == "" {
			name = "Unknown"
		}
		fmt.Printf("    By: %s on %s\n", name, s.Date.UTC().Format("2006-01-02"))
		fmt.Printf("    Patches: %d | URL: %s\n\n", s.Total, s.WebURL)
	}
}

func cmdAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	var tf trackerFlags
	tf.register(fs)
	days := fs.Int("days", 90, "days to look back for patches")
	includeResolved := fs.Bool("include-applied", false, "include already applied patch series")
	noComments := fs.Bool("no-comments", false, "skip fetching community comments (faster)")
	maxPatches := fs.Int("max-patches", 0, "maximum number of patches to analyze (0 = config default)")
	seriesID := fs.Int("series", 0, "series ID to analyze (0 = choose interactively)")
	output := fs.String("o", "", "output file for the report")
	dryRun := fs.Bool("dry-run", false, "use the mock model instead of calling the API")
	fs.Parse(args)

	cfg, err := monitor.LoadConfig(tf.config)
	if err != nil {
		return err
	}
	if *maxPatches > 0 {
		cfg.Context.MaxPatches = *maxPatches
	}
	llm, err := buildLLM(cfg, *dryRun)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := tf.client(cfg)
	series, err := listSeries(ctx, client, *days, *includeResolved)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		fmt.Println("No recent patch series found")
		return nil
	}

	selected, err := pickSeries(series, *seriesID)
	if err != nil {
		return err
	}

	an, err := analyzer.NewAnalyzer(llm)
	if err != nil {
		return err
	}
	runner := &monitor.Runner{
		Tracker:  client,
		Analyzer: an,
		Opts:     cfg.ContextOptions(!*noComments),
		Out:      os.Stdout,
	}

	fmt.Printf("Fetching patches for: %s\n", selected.Name)
	rep, err := runner.AnalyzeSeries(ctx, selected)
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rep.Analysis), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Analysis saved to %s\n", *output)
	} else {
		fmt.Println("\n" + strings.Repeat("=", 80) + "\n")
		fmt.Println(rep.Analysis)
	}
	fmt.Printf("Tokens: %d in / %d out\n", rep.Usage.InputTokens, rep.Usage.OutputTokens)
	return nil
}

// pickSeries resolves -series by ID, or prompts on stdin when none is given.
func pickSeries(series []patchwork.Series, id int) (patchwork.Series, error) {
	if id != 0 {
		for _, s := range series {
			if s.ID == id {
				return s, nil
			}
		}
		return patchwork.Series{}, fmt.Errorf("series %d not found in the listed range", id)
	}

	fmt.Println("Select a patch series to analyze:")
	fmt.Println()
	printSeriesList(series)
	fmt.Print("Enter series number: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return patchwork.Series{}, fmt.Errorf("read selection: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(series) {
		return patchwork.Series{}, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}
	return series[n-1], nil
}

func cmdBulk(args []string) error {
	fs := flag.NewFlagSet("bulk", flag.ExitOnError)
	var tf trackerFlags
	tf.register(fs)
	days := fs.Int("days", 14, "days to look back for patches")
	maxSeries := fs.Int("max-series", 10, "maximum number of series to analyze")
	outputDir := fs.String("output-dir", "reports", "output directory for reports")
	noComments := fs.Bool("no-comments", false, "skip community comments (faster)")
	summary := fs.Bool("summary", false, "generate combined summary report")
	maxPatches := fs.Int("max-patches", 0, "maximum patches per series (0 = config default)")
	exportPath := fs.String("export", "", "path for the JSON export (default <run dir>/patches.json)")
	dryRun := fs.Bool("dry-run", false, "use the mock model instead of calling the API")
	fs.Parse(args)

	cfg, err := monitor.LoadConfig(tf.config)
	if err != nil {
		return err
	}
	if *maxPatches > 0 {
		cfg.Context.MaxPatches = *maxPatches
	}
	llm, err := buildLLM(cfg, *dryRun)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := tf.client(cfg)
	series, err := listSeries(ctx, client, *days, false)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		fmt.Println("No recent patch series found")
		return nil
	}
	if len(series) > *maxSeries {
		series = series[:*maxSeries]
	}
	fmt.Printf("Analyzing %d series from the last %d days\n", len(series), *days)

	an, err := analyzer.NewAnalyzer(llm)
	if err != nil {
		return err
	}
	runner := &monitor.Runner{
		Tracker:  client,
		Analyzer: an,
		Opts:     cfg.ContextOptions(!*noComments),
		Out:      os.Stdout,
	}

	now := time.Now()
	dir, err := monitor.ReportDir(*outputDir, now)
	if err != nil {
		return err
	}

	report := runner.Run(ctx, series)
	for i := range report.Reports {
		if err := monitor.WriteSeriesReport(dir, &report.Reports[i], now); err != nil {
			log.Printf("[bulk] %v", err)
		}
	}

	if *summary {
		path, err := monitor.WriteSummary(dir, *days, report, now)
		if err != nil {
			return err
		}
		fmt.Printf("Summary saved to %s\n", path)
	}

	exp := monitor.BuildExport(report, *days, cfg.LLM.Model, now)
	target := *exportPath
	if target == "" {
		target = filepath.Join(dir, "patches.json")
	}
	if err := monitor.WriteExport(target, exp); err != nil {
		return err
	}
	fmt.Printf("Export saved to %s\n", target)

	fmt.Printf("\nAnalyzed: %d/%d series, failed: %d\n",
		len(report.Reports), len(series), len(report.Failures))
	fmt.Printf("Tokens: %d in / %d out\n", report.TotalInputTokens, report.TotalOutputTokens)
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var tf trackerFlags
	tf.register(fs)
	days := fs.Int("days", 90, "days to look back for patches")
	includeResolved := fs.Bool("include-applied", false, "include already applied patch series")
	output := fs.String("o", "", "output JSON file (required)")
	fs.Parse(args)

	if *output == "" {
		return fmt.Errorf("-o is required")
	}
	cfg, err := monitor.LoadConfig(tf.config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := tf.client(cfg)
	series, err := listSeries(ctx, client, *days, *includeResolved)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		fmt.Println("No recent patch series found")
		return nil
	}

	an := &analyzer.Analyzer{LLM: analyzer.MockLLM{}}
	fmt.Printf("Exporting %d patch series...\n", len(series))

	entries := make([]monitor.ExportSeries, 0, len(series))
	for _, s := range series {
		// The first few patches carry enough engagement signal; failed
		// fetches just reduce the evidence, they never block the export.
		refs := s.Patches
		if len(refs) > 3 {
			refs = refs[:3]
		}
		var patches []patchwork.Patch
		for _, ref := range refs {
			patch, err := client.PatchContent(ctx, ref.ID)
			if err != nil {
				continue
			}
			patches = append(patches, patch)
		}
		eng := an.AnalyzeEngagement(s, patches, nil)
		entries = append(entries, monitor.EngagementEntry(s, eng))
	}

	exp := monitor.BuildEngagementExport(entries, *days, *includeResolved, time.Now())
	if err := monitor.WriteExport(*output, exp); err != nil {
		return err
	}
	fmt.Printf("Data exported to %s\n", *output)
	return nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "http listen address")
	dir := fs.String("dir", "reports", "reports directory to serve")
	fs.Parse(args)

	srv, err := server.New(*dir)
	if err != nil {
		return err
	}
	log.Printf("Serving reports from %s on %s", *dir, *addr)
	return http.ListenAndServe(*addr, srv.Routes())
}
