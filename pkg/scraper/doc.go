// Package scraper runs one saved-posts scrape end to end.
//
// A run opens the target page, lets the auth gate deal with any login wall,
// scrolls the feed until it stops growing, then walks the posts in discovery
// order. Each post yields a source link, a caption and its image URLs; the
// images are stored through the configured sink and the resulting records
// are exported as tables.
//
// Failures are contained by scope:
//
//   - a failed image is skipped and the post keeps its other images
//   - a failed post (resolver error or a panicking driver call) is dropped;
//     later posts keep their discovery index
//   - a navigation or export failure aborts the run
//
// The browser page is only touched from the goroutine calling Run. Image
// storage may fan out to workers, which only see already extracted URLs.
package scraper
