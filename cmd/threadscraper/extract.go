package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"threadscraper/pkg/browser"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/scraper"
	"threadscraper/pkg/ui"
)

var (
	htmlFile       string
	baseURL        string
	extractStorage string
)

// extractCmd runs the pipeline over a saved page instead of a live browser
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Export posts from a saved HTML copy of the saved posts page",
	Long: `Run extraction, image storage and export over an HTML file saved from
the browser (File > Save Page As, "Webpage, HTML only").

No browser is started and no login is attempted. Relative image URLs are
resolved against --base-url. Images are stored locally unless --storage
says otherwise.`,
	Example: `  # Export a saved page with images on disk
  threadscraper extract --html saved.html

  # Upload the images to Cloudinary instead
  threadscraper extract --html saved.html --storage remote`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	f := extractCmd.Flags()
	f.StringVar(&htmlFile, "html", "", "saved HTML page to read (required)")
	f.StringVar(&baseURL, "base-url", "https://www.threads.com/saved", "URL the page was saved from")
	f.StringVar(&extractStorage, "storage", "local", "image storage: remote (Cloudinary) or local")
	f.IntVar(&maxPosts, "max-posts", 0, "maximum number of posts to process (0 = no limit)")
	f.StringVarP(&outputDir, "output", "o", "", "directory for the CSV/XLSX files")
	f.StringVar(&imagesDir, "images-dir", "", "directory for images with --storage local")
	f.IntVar(&workers, "workers", 0, "number of posts whose images are stored in parallel")
	f.BoolVar(&writeJSON, "json", false, "also write a JSON sidecar with run metadata")
	_ = extractCmd.MarkFlagRequired("html")
}

func extractFlags(cmd *cobra.Command) map[string]interface{} {
	flags := globalFlags(cmd)
	flags["target-url"] = baseURL
	flags["storage-mode"] = extractStorage
	flags["static-page"] = true
	if cmd.Flags().Changed("max-posts") {
		flags["max-posts"] = maxPosts
	}
	if outputDir != "" {
		flags["output-dir"] = outputDir
	}
	if imagesDir != "" {
		flags["images-dir"] = imagesDir
	}
	if workers > 0 {
		flags["workers"] = workers
	}
	if cmd.Flags().Changed("json") {
		flags["json"] = writeJSON
	}
	return flags
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(extractFlags(cmd))
	if err != nil {
		return err
	}
	log := logger.GetLogger().WithField("source", htmlFile)

	f, err := os.Open(htmlFile)
	if err != nil {
		return apperrors.Fatal("extract", "failed to open HTML file", err)
	}
	defer f.Close()

	page, err := browser.NewSnapshot(f, baseURL)
	if err != nil {
		return apperrors.Fatal("extract", "failed to parse HTML file", err)
	}

	storer, err := newStorer(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress scraper.Progress
	if !quiet {
		progress = ui.NewProgressDisplay(htmlFile, verbose)
	}

	s := scraper.New(cfg, scraper.Deps{
		Page:     page,
		Storer:   storer,
		Progress: progress,
		Logger:   log,
	})
	sum, err := s.Run(ctx)
	report(sum, err, ui.NewNotifier(cfg.Notifications))
	return err
}
