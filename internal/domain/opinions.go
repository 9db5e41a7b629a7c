package domain

// DiscussionPost is a forum thread about a product (Reddit)
type DiscussionPost struct {
	Title     string `json:"title"`
	Subreddit string `json:"subreddit,omitempty"`
	Score     string `json:"score,omitempty"`
	URL       string `json:"url,omitempty"`
	Source    string `json:"source"`
}

// ArticleResult is a review article or video about a product (YouTube, Google)
type ArticleResult struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Channel string `json:"channel,omitempty"`
	Views   string `json:"views,omitempty"`
	Source  string `json:"source"`
}

// OpinionsResult holds normalized opinions for a product. Both slices are never nil.
type OpinionsResult struct {
	DiscussionPosts []DiscussionPost `json:"reddit"`
	ArticleResults  []ArticleResult  `json:"youtube"`
}

// Empty reports whether no opinion of any kind was found
func (o *OpinionsResult) Empty() bool {
	return o == nil || (len(o.DiscussionPosts) == 0 && len(o.ArticleResults) == 0)
}

// OpinionsRequest is the body sent to the opinions backend
type OpinionsRequest struct {
	ProductName string `json:"product_name" binding:"required"`
}
