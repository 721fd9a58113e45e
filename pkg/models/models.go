package models

import "time"

// MediaAsset is one persisted image. Extension and ContentType are only
// set by the local sink.
type MediaAsset struct {
	OriginalURL    string `json:"original_url"`
	StoredLocation string `json:"stored_location"`
	Extension      string `json:"extension,omitempty"`
	ContentType    string `json:"content_type,omitempty"`
}

// PostRecord is the exported row for one post.
// MediaCount always equals len(Media).
type PostRecord struct {
	Index      int          `json:"index"`
	SourceURL  string       `json:"source_url"`
	Caption    string       `json:"text"`
	Media      []MediaAsset `json:"media"`
	MediaCount int          `json:"num_images"`
	ScrapedAt  time.Time    `json:"scraped_at"`
}

// NewPostRecord builds a record stamped with the completion time
func NewPostRecord(index int, sourceURL, caption string, media []MediaAsset, at time.Time) PostRecord {
	if media == nil {
		media = []MediaAsset{}
	}
	return PostRecord{
		Index:      index,
		SourceURL:  sourceURL,
		Caption:    caption,
		Media:      media,
		MediaCount: len(media),
		ScrapedAt:  at.UTC(),
	}
}

// Locations returns the stored location of every asset in order
func (p PostRecord) Locations() []string {
	locs := make([]string, len(p.Media))
	for i, m := range p.Media {
		locs[i] = m.StoredLocation
	}
	return locs
}
