// Package ratelimit paces the scrape loop.
//
// TokenBucket spaces out per-post work so the feed is not hammered while
// captions are expanded and images fetched:
//
//	pacer := ratelimit.NewPacer(300 * time.Millisecond)
//	for _, post := range posts {
//	    if err := pacer.WaitContext(ctx); err != nil {
//	        return err
//	    }
//	    // process post
//	}
//
// Sleep is the context-aware pause used for the fixed settle delays
// (scroll pause, login re-check, OTP polling).
package ratelimit
