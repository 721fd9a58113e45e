package sink

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultExtension is used when neither the URL nor the content type say otherwise
const DefaultExtension = ".jpg"

// maxURLExtLen bounds a plausible extension taken from a URL path, dot included
const maxURLExtLen = 5

// ExtensionFor picks a file extension: the URL path's own extension if it
// looks like one, then the content type's, then DefaultExtension.
func ExtensionFor(hint Hint) string {
	if u, err := url.Parse(hint.URL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= maxURLExtLen {
			return ext
		}
	}

	if ct := baseMediaType(hint.ContentType); ct != "" {
		if m := mimetype.Lookup(ct); m != nil && m.Extension() != "" {
			return m.Extension()
		}
	}

	return DefaultExtension
}

func baseMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
}

// contentTypeOf returns the declared media type, sniffing data when none was sent
func contentTypeOf(hint Hint, data []byte) string {
	if ct := baseMediaType(hint.ContentType); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}
