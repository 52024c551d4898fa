package domain

// FeedPageSize is the fixed number of events returned by one page of the
// event feed. The feed exposes no total; an empty page marks the end.
const FeedPageSize = 10

// maxFeedPage keeps OFFSET arithmetic far from overflow.
const maxFeedPage = 1 << 24

// FeedWindow is the slice of the id-ordered event table that one feed page
// covers.
type FeedWindow struct {
	Page   int
	Limit  int
	Offset int
}

// WindowFor returns the window of feed page n. Pages start at 1 and anything
// lower reads page 1. Pages beyond any plausible table size still map to a
// window, which is simply empty.
func WindowFor(n int) FeedWindow {
	n = max(1, min(n, maxFeedPage))
	return FeedWindow{Page: n, Limit: FeedPageSize, Offset: (n - 1) * FeedPageSize}
}
