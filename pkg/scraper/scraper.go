package scraper

import (
	"context"
	"fmt"
	"time"

	"threadscraper/internal/downloader"
	"threadscraper/pkg/authgate"
	"threadscraper/pkg/browser"
	"threadscraper/pkg/caption"
	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/export"
	"threadscraper/pkg/locator"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/media"
	"threadscraper/pkg/models"
	"threadscraper/pkg/paginator"
	"threadscraper/pkg/ratelimit"
)

// Gate resolves a login wall; *authgate.Gate satisfies it
type Gate interface {
	Run(ctx context.Context) authgate.Outcome
}

// CaptionExtractor pulls the caption out of a post container
type CaptionExtractor interface {
	Extract(ctx context.Context, el browser.Element) string
}

// Deps are the collaborators of a Scraper. Page and Storer are required;
// a nil Gate skips the login check.
type Deps struct {
	Page      browser.Page
	Storer    downloader.PostStorer
	Gate      Gate
	Locator   paginator.Locator
	Extractor CaptionExtractor
	Progress  Progress
	Logger    logger.Logger
}

// Summary reports what a run did
type Summary struct {
	PostsFound     int
	PostsExported  int
	PostsDropped   int
	ImagesStored   int
	ImagesFailed   int
	Files          []string
	Auth           authgate.Outcome
	StopReason     paginator.StopReason
	ScrollAttempts int
	Records        []models.PostRecord
	StartedAt      time.Time
	Duration       time.Duration
}

// Scraper runs the saved-posts pipeline against one page.
//
// Posts are handled in two phases rather than strictly one at a time: every
// container is read on the browser goroutine first, then image storage fans
// out to the worker pool. Records still come out in discovery order, and
// with one worker storage itself is sequential.
type Scraper struct {
	cfg       *config.Config
	page      browser.Page
	storer    downloader.PostStorer
	gate      Gate
	locator   paginator.Locator
	extractor CaptionExtractor
	progress  Progress
	pacer     ratelimit.Limiter
	logger    logger.Logger
	now       func() time.Time
}

// New wires a Scraper; missing optional collaborators get their defaults
func New(cfg *config.Config, deps Deps) *Scraper {
	log := logger.OrGlobal(deps.Logger).WithField("component", "scraper")

	s := &Scraper{
		cfg:       cfg,
		page:      deps.Page,
		storer:    deps.Storer,
		gate:      deps.Gate,
		locator:   deps.Locator,
		extractor: deps.Extractor,
		progress:  deps.Progress,
		pacer:     ratelimit.NewPacer(cfg.Download.PostDelay),
		logger:    log,
		now:       time.Now,
	}
	if s.locator == nil {
		s.locator = locator.New(cfg.Extract.PostSelectors, log)
	}
	if s.extractor == nil {
		s.extractor = caption.New(cfg.Extract, log)
	}
	if s.progress == nil {
		s.progress = nopProgress{}
	}
	return s
}

// extracted is a post read from the page, waiting for its images
type extracted struct {
	index     int
	sourceURL string
	caption   string
}

// Run executes one scrape and exports the result. The returned error is
// always fatal; per-post and per-image problems only show up in the Summary.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{StartedAt: s.now()}
	target := s.cfg.Target.URL

	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"target":    target,
		"max_posts": s.cfg.Target.MaxPosts,
		"storage":   s.cfg.Storage.Mode,
		"workers":   s.cfg.Download.Workers,
	})

	s.logger.WithField("url", target).Info("Opening target page")
	if err := s.page.Navigate(target); err != nil {
		return sum, apperrors.Fatal("scraper.navigate", "failed to open "+target, err)
	}
	_ = ratelimit.Sleep(ctx, s.cfg.Pagination.InitialWait)

	if s.gate != nil {
		sum.Auth = s.gate.Run(ctx)
		s.logger.WithFields(map[string]interface{}{
			"final":      string(sum.Auth.Final),
			"challenged": sum.Auth.Challenged,
		}).Info("Auth gate finished")

		if sum.Auth.Challenged {
			if err := s.page.Navigate(target); err != nil {
				s.logger.WithError(err).Warn("Failed to return to target page after login")
			}
			_ = ratelimit.Sleep(ctx, s.cfg.Pagination.ReturnWait)
		}
	}

	pg := paginator.Paginate(ctx, s.page, s.locator, paginator.Options{
		TargetCount: s.cfg.Target.MaxPosts,
		MaxScrolls:  s.cfg.Pagination.MaxScrolls,
		ScrollPause: s.cfg.Pagination.ScrollPause,
		Accumulate:  s.cfg.Pagination.Accumulate,
	}, s.logger)
	sum.StopReason = pg.StopReason
	sum.ScrollAttempts = pg.ScrollAttempts
	sum.PostsFound = len(pg.Elements)

	s.progress.Start(len(pg.Elements))

	posts, jobs := s.extractAll(ctx, pg.Elements, sum)
	results := downloader.StoreAll(ctx, s.cfg.Download.Workers, s.storer, jobs, s.logger, func(r downloader.StoreResult) {
		s.progress.PostStored(r.Job.PostIndex, len(r.Result.Assets), r.Result.Failed)
	})

	for _, r := range results {
		post := posts[r.Job.Seq]
		sum.ImagesStored += len(r.Result.Assets)
		sum.ImagesFailed += r.Result.Failed
		sum.Records = append(sum.Records, models.NewPostRecord(post.index, post.sourceURL, post.caption, r.Result.Assets, r.FinishedAt))
	}
	sum.PostsExported = len(sum.Records)
	s.progress.Complete()

	files, err := export.Write(sum.Records, export.OptionsFromConfig(s.cfg), export.RunInfo{
		TargetURL:      target,
		StorageMode:    s.cfg.Storage.Mode,
		StartedAt:      sum.StartedAt.UTC(),
		FinishedAt:     s.now().UTC(),
		AuthOutcome:    string(sum.Auth.Final),
		StopReason:     string(sum.StopReason),
		ScrollAttempts: sum.ScrollAttempts,
		PostsFound:     sum.PostsFound,
		ImagesStored:   sum.ImagesStored,
		ImagesFailed:   sum.ImagesFailed,
	})
	sum.Files = files
	sum.Duration = s.now().Sub(sum.StartedAt)
	if err != nil {
		return sum, err
	}

	s.logger.InfoWithFields("Scrape complete", map[string]interface{}{
		"posts_found":    sum.PostsFound,
		"posts_exported": sum.PostsExported,
		"images_stored":  sum.ImagesStored,
		"images_failed":  sum.ImagesFailed,
		"files":          sum.Files,
	})
	return sum, nil
}

// extractAll reads every post sequentially on the calling goroutine. It
// returns the posts that survived together with one storage job each.
func (s *Scraper) extractAll(ctx context.Context, elements []browser.Element, sum *Summary) ([]extracted, []downloader.StoreJob) {
	var posts []extracted
	var jobs []downloader.StoreJob

	for i, el := range elements {
		index := i + 1
		if ctx.Err() != nil || s.pacer.WaitContext(ctx) != nil {
			s.logger.WithField("post_index", index).Warn("Run cancelled, skipping remaining posts")
			break
		}
		logger.LogScrapeProgress(s.logger, i, len(elements))

		post, urls, raw, err := s.extractPost(ctx, index, el)
		if err != nil {
			logger.LogPostDropped(s.logger, index, err)
			sum.PostsDropped++
			s.progress.PostDropped(index, err)
			continue
		}

		jobs = append(jobs, downloader.StoreJob{
			Seq:        len(posts),
			PostIndex:  index,
			URLs:       urls,
			RawSources: raw,
		})
		posts = append(posts, post)
	}
	return posts, jobs
}

// extractPost reads one container. A panicking driver call becomes a post error.
func (s *Scraper) extractPost(ctx context.Context, index int, el browser.Element) (post extracted, urls, raw []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Post("scraper.extract", fmt.Sprintf("post %d", index), fmt.Errorf("panic: %v", r))
		}
	}()

	post = extracted{index: index, sourceURL: s.sourceURL(el)}
	post.caption = s.extractor.Extract(ctx, el)

	if urls, err = media.Resolve(el); err != nil {
		return post, nil, nil, err
	}
	if raw, err = media.RawImageSources(el); err != nil {
		return post, nil, nil, err
	}

	s.logger.DebugWithFields("Post extracted", map[string]interface{}{
		"post_index": index,
		"source_url": post.sourceURL,
		"images":     len(urls),
	})
	return post, urls, raw, nil
}

// sourceURL is the post's first link, or the page URL when it has none
func (s *Scraper) sourceURL(el browser.Element) string {
	if links, err := el.FindAll("a[href]"); err == nil && len(links) > 0 {
		if href, ok, err := links[0].Attribute("href"); err == nil && ok && href != "" {
			return href
		}
	}
	u, _ := s.page.CurrentURL()
	return u
}
