package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"threadscraper/internal/downloader"
	"threadscraper/pkg/auth"
	"threadscraper/pkg/authgate"
	"threadscraper/pkg/browser"
	"threadscraper/pkg/config"
	"threadscraper/pkg/fetch"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/scraper"
	"threadscraper/pkg/sink"
	"threadscraper/pkg/ui"
	"threadscraper/pkg/ui/tui"
)

var (
	// Scrape command flags
	targetURL    string
	storageMode  string
	maxPosts     int
	headless     bool
	attach       bool
	debugAddress string
	noProfile    bool
	outputDir    string
	imagesDir    string
	accountName  string
	workers      int
	writeJSON    bool
	accumulate   bool
	useTUI       bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Export the saved posts of the logged-in account",
	Long: `Open the saved posts page, log in if asked, scroll until no new posts
appear and export every post with its caption and images.

Login details are taken from the config file, the environment
(THREADS_ID / THREADS_PASSWORD), an account stored with
'threadscraper auth login', or an interactive prompt, in that order.

Images go to Cloudinary (--storage remote, the default) or to a local
folder (--storage local). The table is written as CSV and XLSX.`,
	Example: `  # Scrape with the defaults from the config file
  threadscraper scrape

  # Keep images on disk and stop after 50 posts
  threadscraper scrape --storage local --max-posts 50

  # Drive a Chrome started with --remote-debugging-port=9222
  threadscraper scrape --attach --debug-address http://127.0.0.1:9222

  # Full-screen dashboard once scrolling is done
  threadscraper scrape --tui`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addScrapeFlags(scrapeCmd)

	// scrape is the default command
	addScrapeFlags(rootCmd)
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = runScrape
}

func addScrapeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&targetURL, "url", "", "saved posts URL (default https://www.threads.com/saved)")
	f.StringVar(&storageMode, "storage", "", "image storage: remote (Cloudinary) or local")
	f.IntVar(&maxPosts, "max-posts", 0, "maximum number of posts to process (0 = no limit)")
	f.BoolVar(&headless, "headless", false, "run Chrome without a window")
	f.BoolVar(&attach, "attach", false, "attach to a running Chrome instead of starting one")
	f.StringVar(&debugAddress, "debug-address", "", "DevTools address used with --attach")
	f.BoolVar(&noProfile, "no-profile", false, "start with a fresh profile instead of your Chrome profile")
	f.StringVarP(&outputDir, "output", "o", "", "directory for the CSV/XLSX files")
	f.StringVar(&imagesDir, "images-dir", "", "directory for images with --storage local")
	f.StringVarP(&accountName, "account", "a", "", "stored account to log in with")
	f.IntVar(&workers, "workers", 0, "number of posts whose images are stored in parallel")
	f.BoolVar(&writeJSON, "json", false, "also write a JSON sidecar with run metadata")
	f.BoolVar(&accumulate, "accumulate", false, "keep posts that scroll out of the page")
	f.BoolVar(&useTUI, "tui", false, "show a full-screen dashboard while posts are processed")
}

// scrapeFlags maps the flags the user set onto config keys
func scrapeFlags(cmd *cobra.Command) map[string]interface{} {
	flags := globalFlags(cmd)
	changed := cmd.Flags().Changed

	if targetURL != "" {
		flags["target-url"] = targetURL
	}
	if storageMode != "" {
		flags["storage-mode"] = storageMode
	}
	if changed("max-posts") {
		flags["max-posts"] = maxPosts
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("attach") {
		flags["attach"] = attach
	}
	if debugAddress != "" {
		flags["debug-address"] = debugAddress
	}
	if noProfile {
		flags["no-profile"] = true
	}
	if outputDir != "" {
		flags["output-dir"] = outputDir
	}
	if imagesDir != "" {
		flags["images-dir"] = imagesDir
	}
	if accountName != "" {
		flags["account"] = accountName
	}
	if workers > 0 {
		flags["workers"] = workers
	}
	if changed("json") {
		flags["json"] = writeJSON
	}
	if changed("accumulate") {
		flags["accumulate"] = accumulate
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(scrapeFlags(cmd))
	if err != nil {
		return err
	}
	log := logger.GetLogger()
	logger.LogComponentStart(log, "cli", map[string]interface{}{"version": version, "command": "scrape"})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress, runLog := newProgress(cfg, log, stop)

	storer, err := newStorer(cfg, runLog)
	if err != nil {
		return err
	}

	session, err := browser.Launch(ctx, cfg.Browser, runLog)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close browser")
		}
	}()

	page, err := session.NewPage(ctx)
	if err != nil {
		return err
	}

	notifier := ui.NewNotifier(cfg.Notifications)
	prompter := authgate.NewTerminalPrompter()
	defer func() { _ = prompter.Restore() }()
	gate := authgate.New(page, cfg.Auth, gateOptions(prompter, notifier, runLog)...)

	if !quiet && !useTUI {
		ui.PrintInfo("Target", cfg.Target.URL)
		ui.PrintInfo("Storage", cfg.Storage.Mode)
	}

	s := scraper.New(cfg, scraper.Deps{
		Page:     page,
		Storer:   storer,
		Gate:     gate,
		Progress: progress,
		Logger:   runLog,
	})
	sum, err := s.Run(ctx)
	report(sum, err, notifier)
	return err
}

// gateOptions wires credential lookup, the terminal prompt and notifications
func gateOptions(prompter authgate.Prompter, notifier *ui.Notifier, log logger.Logger) []authgate.Option {
	opts := []authgate.Option{
		authgate.WithPrompter(prompter),
		authgate.WithNotifier(notifier),
		authgate.WithLogger(log),
	}
	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Credential store unavailable, stored accounts will not be used")
		return opts
	}
	return append(opts, authgate.WithCredentials(manager))
}

// newStorer builds the fetch + sink pipeline for the configured storage mode
func newStorer(cfg *config.Config, log logger.Logger) (downloader.PostStorer, error) {
	s, err := sink.FromConfig(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return sink.NewPipeline(fetch.NewClient(cfg.Download, log), s, log), nil
}

// newProgress picks the progress view. With --tui, logs are routed into the
// dashboard so they do not scribble over it; the returned logger is the one
// the run should use.
func newProgress(cfg *config.Config, log logger.Logger, cancel context.CancelFunc) (scraper.Progress, logger.Logger) {
	label := targetLabel(cfg.Target.URL)

	switch {
	case useTUI && !quiet:
		dash := tui.New(label, tui.WithAltScreen(), tui.WithQuitHandler(cancel))
		dlog, err := logger.NewWithWriter(dash, cfg.Logging.Level)
		if err != nil {
			return dash, log
		}
		return dash, dlog
	case quiet:
		return nil, log
	default:
		return ui.NewProgressDisplay(label, verbose), log
	}
}

// targetLabel shortens a URL to host + path for display
func targetLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.") + strings.TrimSuffix(u.Path, "/")
}

// report prints the run summary and raises the completion notification
func report(sum *scraper.Summary, err error, notifier *ui.Notifier) {
	if err != nil {
		notifier.SendError("Scrape failed", err.Error())
		if sum == nil || len(sum.Records) == 0 {
			return
		}
	}
	if sum == nil {
		return
	}

	if !quiet {
		fmt.Fprintln(ui.Output)
		ui.PrintInfo("Posts found", fmt.Sprint(sum.PostsFound))
		ui.PrintInfo("Posts exported", fmt.Sprint(sum.PostsExported))
		if sum.PostsDropped > 0 {
			ui.PrintWarning(fmt.Sprintf("%d posts dropped", sum.PostsDropped))
		}
		ui.PrintInfo("Images stored", fmt.Sprint(sum.ImagesStored))
		if sum.ImagesFailed > 0 {
			ui.PrintWarning(fmt.Sprintf("%d images failed", sum.ImagesFailed))
		}
		if sum.Auth.Challenged {
			ui.PrintInfo("Login", string(sum.Auth.Final))
		}
		ui.PrintInfo("Stopped because", string(sum.StopReason))
		for _, f := range sum.Files {
			ui.PrintInfo("Wrote", f)
		}
	}

	if err == nil {
		notifier.SendSuccess("Scrape complete", fmt.Sprintf("%d posts exported, %d images stored", sum.PostsExported, sum.ImagesStored))
	}
}
