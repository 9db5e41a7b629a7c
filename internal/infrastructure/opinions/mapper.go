package opinions

import (
	"encoding/json"
	"strconv"

	"github.com/productlens/backend/internal/domain"
)

// Keys of the opinions payload. The secondary source is "youtube"; "google" is
// read when "youtube" is absent.
const (
	keyDiscussions      = "reddit"
	keyArticles         = "youtube"
	keyArticlesFallback = "google"
)

// NormalizeOpinions converts the untrusted data object into an OpinionsResult.
// Absent or non-array lists become empty slices; non-object entries are skipped.
func NormalizeOpinions(data json.RawMessage) *domain.OpinionsResult {
	result := &domain.OpinionsResult{
		DiscussionPosts: []domain.DiscussionPost{},
		ArticleResults:  []domain.ArticleResult{},
	}

	var fields map[string]json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &fields) != nil {
		return result
	}

	for _, item := range objectList(fields[keyDiscussions]) {
		result.DiscussionPosts = append(result.DiscussionPosts, domain.DiscussionPost{
			Title:     stringField(item, "title"),
			Subreddit: stringField(item, "subreddit"),
			Score:     stringField(item, "score"),
			URL:       stringField(item, "url"),
			Source:    sourceOr(item, "Reddit"),
		})
	}

	articles, ok := fields[keyArticles]
	defaultSource := "YouTube"
	if !ok {
		articles = fields[keyArticlesFallback]
		defaultSource = "Google"
	}
	for _, item := range objectList(articles) {
		result.ArticleResults = append(result.ArticleResults, domain.ArticleResult{
			Title:   stringField(item, "title"),
			URL:     stringField(item, "url"),
			Snippet: stringField(item, "snippet"),
			Channel: stringField(item, "channel"),
			Views:   stringField(item, "views"),
			Source:  sourceOr(item, defaultSource),
		})
	}

	return result
}

// objectList decodes a JSON array, keeping only its object elements
func objectList(raw json.RawMessage) []map[string]interface{} {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	objects := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		var obj map[string]interface{}
		if json.Unmarshal(item, &obj) != nil || obj == nil {
			continue
		}
		objects = append(objects, obj)
	}
	return objects
}

// stringField reads a scalar field as a string; scores and view counts may arrive as numbers
func stringField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func sourceOr(obj map[string]interface{}, fallback string) string {
	if s := stringField(obj, "source"); s != "" {
		return s
	}
	return fallback
}
