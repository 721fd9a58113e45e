// Package media collects the image URLs referenced by a post container.
package media

import (
	"regexp"
	"strings"

	"threadscraper/pkg/browser"
	apperrors "threadscraper/pkg/errors"
)

var backgroundURL = regexp.MustCompile(`url\(["']?(.*?)["']?\)`)

// Resolve returns the distinct image URLs inside el in first-seen order:
// every img src, then every CSS background-image url(). Duplicates collapse
// by exact string and no scheme filtering happens here. An error means the
// element itself could not be queried, for example because it went stale.
func Resolve(el browser.Element) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	srcs, err := RawImageSources(el)
	if err != nil {
		return nil, err
	}
	for _, src := range srcs {
		add(src)
	}

	styled, err := el.FindAll(`[style*="background-image"]`)
	if err != nil {
		return nil, apperrors.Post("media.resolve", "background lookup failed", err)
	}
	for _, node := range styled {
		style, ok, err := node.Attribute("style")
		if err != nil || !ok || !strings.Contains(style, "background-image") {
			continue
		}
		if m := backgroundURL.FindStringSubmatch(style); m != nil {
			add(m[1])
		}
	}

	return urls, nil
}

// RawImageSources returns the src of every descendant img, in document order.
// Images without a src yield "" so positions line up with the img elements.
func RawImageSources(el browser.Element) ([]string, error) {
	imgs, err := el.FindAll("img")
	if err != nil {
		return nil, apperrors.Post("media.resolve", "image lookup failed", err)
	}

	srcs := make([]string, 0, len(imgs))
	for _, img := range imgs {
		src, _, err := img.Attribute("src")
		if err != nil {
			src = ""
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}
