package domain

import "time"

// Paper is a core entity describing an arXiv paper fetched from the API.
type Paper struct {
	ArxivID    string    `json:"arxiv_id"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Authors    []string  `json:"authors"`
	Link       string    `json:"link"`
	Published  time.Time `json:"published"`
	Categories []string  `json:"categories"`
	// Matched holds canonical keyword labels assigned during collection.
	Matched []string `json:"matched_keywords,omitempty"`
}

// BlogPost describes one entry fetched from a tech-blog RSS feed.
type BlogPost struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary"`
	// ArxivIDs are paper ids mentioned in the post's text or links.
	ArxivIDs []string `json:"arxiv_ids,omitempty"`
}

// BlogRef records the blog post that first mentioned a paper id.
type BlogRef struct {
	BlogURL    string    `json:"blog_url"`
	BlogTitle  string    `json:"blog_title"`
	BlogSource string    `json:"blog_source"`
	AddedAt    time.Time `json:"added_at"`
}

// LinkedPaper pairs a collected paper with the blog post that covered it.
type LinkedPaper struct {
	Paper Paper   `json:"paper"`
	Blog  BlogRef `json:"blog_info"`
}

// Snapshot is the read-only view of one briefing day handed to delivery.
type Snapshot struct {
	BlogPosts    []BlogPost    `json:"blog_posts"`
	ArxivPapers  []Paper       `json:"arxiv_papers"`
	LinkedPapers []LinkedPaper `json:"linked_papers"`
}

// Total counts items across all sections.
func (s Snapshot) Total() int {
	return len(s.BlogPosts) + len(s.ArxivPapers) + len(s.LinkedPapers)
}
