package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"threadscraper/pkg/fetch"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/models"
)

// prefixLayout is the UTC timestamp at the start of every stored name
const prefixLayout = "20060102_150405"

// Fetcher downloads image bytes
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// PostResult is what StorePost managed to persist for one post
type PostResult struct {
	Assets []models.MediaAsset
	Failed int
}

// Pipeline fetches and stores the images of one post at a time
type Pipeline struct {
	fetcher Fetcher
	sink    Sink
	log     logger.Logger
	now     func() time.Time
}

// NewPipeline creates a Pipeline
func NewPipeline(f Fetcher, s Sink, log logger.Logger) *Pipeline {
	return &Pipeline{fetcher: f, sink: s, log: logger.OrGlobal(log), now: time.Now}
}

// StorePost persists urls in order, skipping anything that is not http(s).
// A failed image is logged and skipped. If nothing at all was stored, the
// raw img sources get one more pass with the same rules.
func (p *Pipeline) StorePost(ctx context.Context, postIndex int, urls, rawSources []string) PostResult {
	var res PostResult
	p.storeAll(ctx, postIndex, urls, &res)

	if len(res.Assets) == 0 && len(rawSources) > 0 && ctx.Err() == nil {
		p.log.WithField("post_index", postIndex).Debug("No images stored, retrying with raw image sources")
		p.storeAll(ctx, postIndex, rawSources, &res)
	}
	return res
}

func (p *Pipeline) storeAll(ctx context.Context, postIndex int, urls []string, res *PostResult) {
	for i, u := range urls {
		if ctx.Err() != nil {
			return
		}
		if !isHTTP(u) {
			continue
		}

		asset, err := p.storeOne(ctx, postIndex, i, u)
		if err != nil {
			res.Failed++
			logger.LogAssetFailed(p.log, postIndex, u, err)
			continue
		}
		logger.LogAssetStored(p.log, postIndex, u, asset.StoredLocation)
		res.Assets = append(res.Assets, asset)
	}
}

func (p *Pipeline) storeOne(ctx context.Context, postIndex, i int, u string) (models.MediaAsset, error) {
	resp, err := p.fetcher.Get(ctx, u)
	if err != nil {
		return models.MediaAsset{}, apperrors.Asset("sink.fetch", "download failed", err)
	}

	prefix := fmt.Sprintf("%s_%d_%d", p.now().UTC().Format(prefixLayout), postIndex, i)
	asset, err := p.sink.Store(ctx, resp.Body, Hint{URL: u, ContentType: resp.ContentType}, prefix)
	if err != nil {
		return models.MediaAsset{}, apperrors.Asset("sink."+p.sink.Name(), "store failed", err)
	}
	return asset, nil
}

func isHTTP(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
