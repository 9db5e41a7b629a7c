package usecase

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/productlens/backend/internal/domain"
)

// badgeTitleLimit is the number of title characters shown before the ellipsis
const badgeTitleLimit = 50

// Labels of the opinions action
const (
	LabelLoadOpinions  = "Load Reviews & Opinions"
	LabelLoading       = "Loading..."
	LabelLoadFailed    = "Error Loading Opinions"
	LabelNoOpinions    = "No reviews found for this product."
	badgeHeading       = "Product Detected!"
	discussionsHeading = "Reddit Discussions"
	articlesHeading    = "Review Articles"
)

// ErrActionBusy is returned when opinions are requested while a request is in flight
var ErrActionBusy = errors.New("opinions are already loading")

// OpinionsState is the state of a badge's opinions action
type OpinionsState int

const (
	OpinionsIdle OpinionsState = iota
	OpinionsLoading
	OpinionsLoaded
	OpinionsFailed
)

func (s OpinionsState) String() string {
	switch s {
	case OpinionsIdle:
		return "idle"
	case OpinionsLoading:
		return "loading"
	case OpinionsLoaded:
		return "loaded"
	case OpinionsFailed:
		return "failed"
	default:
		return fmt.Sprintf("OpinionsState(%d)", int(s))
	}
}

var badgeSeq atomic.Uint64

// Badge is a dismissible overlay summarizing a detected product.
// Every RenderBadge call yields a new badge; nothing is deduplicated by URL.
type Badge struct {
	ID     string
	Record *domain.ProductRecord

	mu        sync.Mutex
	dismissed bool
	state     OpinionsState
	label     string
	disabled  bool
	opinions  *domain.OpinionsResult
}

// RenderBadge creates the overlay handle for a record
func RenderBadge(record *domain.ProductRecord) *Badge {
	return &Badge{
		ID:     fmt.Sprintf("productlens-badge-%d", badgeSeq.Add(1)),
		Record: record,
		state:  OpinionsIdle,
		label:  LabelLoadOpinions,
	}
}

// TruncateTitle shortens a title to the badge limit, appending an ellipsis when cut
func TruncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= badgeTitleLimit {
		return title
	}
	runes := []rune(title)
	return string(runes[:badgeTitleLimit]) + "..."
}

// Dismiss removes the overlay. Later actions on the badge do nothing.
func (b *Badge) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dismissed = true
}

// Dismissed reports whether the overlay was removed
func (b *Badge) Dismissed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dismissed
}

// ActionState returns the opinions action state, its label and whether it is disabled
func (b *Badge) ActionState() (OpinionsState, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.label, b.disabled
}

// Opinions returns the loaded opinions, if any
func (b *Badge) Opinions() *domain.OpinionsResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opinions
}

// LoadOpinions runs the user-triggered opinions action:
// Idle -> Loading -> {Loaded, Failed}. A failed action can be triggered again.
// A badge dismissed while loading still records the outcome.
func (b *Badge) LoadOpinions(ctx context.Context, client domain.OpinionsClient) error {
	b.mu.Lock()
	if b.dismissed {
		b.mu.Unlock()
		return nil
	}
	if b.state == OpinionsLoading {
		b.mu.Unlock()
		return ErrActionBusy
	}
	b.state = OpinionsLoading
	b.label = LabelLoading
	b.disabled = true
	b.mu.Unlock()

	result, err := client.FetchOpinions(ctx, b.Record.Title)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.state = OpinionsFailed
		b.label = LabelLoadFailed
		b.disabled = false
		return err
	}
	b.state = OpinionsLoaded
	b.label = LabelLoadOpinions
	b.disabled = false
	b.opinions = result
	return nil
}

// badgeField is one summary line of the overlay
type badgeField struct {
	Label string
	Value string
}

type badgeView struct {
	ID              string
	Heading         string
	Fields          []badgeField
	ShowAction      bool
	ActionLabel     string
	ActionDisabled  bool
	ShowOpinions    bool
	NoOpinions      string
	Discussions     []domain.DiscussionPost
	Articles        []domain.ArticleResult
	DiscussionsHead string
	ArticlesHead    string
}

var badgeTemplate = template.Must(template.New("badge").Parse(`<div id="{{.ID}}" class="productlens-badge" style="position: fixed; top: 20px; right: 20px; padding: 16px; background: #f0f9ff; border: 1px solid #bae6fd; border-radius: 8px; z-index: 10000; font-family: system-ui; box-shadow: 0 2px 4px rgba(0,0,0,0.1); max-width: 300px;">
<div class="productlens-close" title="Close" data-action="dismiss" style="position: absolute; top: 8px; right: 8px; cursor: pointer; font-size: 18px; color: #64748b;">×</div>
<div style="position: relative; padding-right: 20px;">
<div style="font-weight: bold; color: #0369a1; margin-bottom: 8px;">{{.Heading}}</div>
<div style="font-size: 14px; color: #0c4a6e;">
{{- range .Fields}}
<div style="margin-bottom: 4px;"><strong>{{.Label}}:</strong> {{.Value}}</div>
{{- end}}
</div>
</div>
{{- if .ShowAction}}
<button data-action="load-opinions"{{if .ActionDisabled}} disabled{{end}} style="margin-top: 12px; padding: 8px 16px; background: #0ea5e9; color: white; border: none; border-radius: 4px; cursor: pointer; font-size: 14px;">{{.ActionLabel}}</button>
{{- end}}
{{- if .ShowOpinions}}
<div class="productlens-opinions" style="margin-top: 16px; padding-top: 16px; border-top: 1px solid #bae6fd;">
{{- if .NoOpinions}}
<div style="color: #64748b; text-align: center; padding: 12px;">{{.NoOpinions}}</div>
{{- end}}
{{- if .Discussions}}
<h3 style="color: #0369a1; margin-bottom: 8px;">{{.DiscussionsHead}}</h3>
{{- range .Discussions}}
<div style="margin-bottom: 12px; font-size: 12px;"><a href="{{.URL}}" target="_blank" style="font-weight: bold; color: #0369a1; text-decoration: none;">{{.Title}}</a><div style="color: #64748b;">r/{{.Subreddit}} • {{.Score}} points</div></div>
{{- end}}
{{- end}}
{{- if .Articles}}
<h3 style="color: #0369a1; margin-bottom: 8px;">{{.ArticlesHead}}</h3>
{{- range .Articles}}
<div style="margin-bottom: 12px; font-size: 12px;"><a href="{{.URL}}" target="_blank" style="font-weight: bold; color: #0369a1; text-decoration: none;">{{.Title}}</a>{{if .Snippet}}<div style="color: #64748b; margin-top: 4px;">{{.Snippet}}</div>{{end}}{{if .Channel}}<div style="color: #64748b;">{{.Channel}}{{if .Views}} • {{.Views}}{{end}}</div>{{end}}</div>
{{- end}}
{{- end}}
</div>
{{- end}}
</div>`))

// HTML renders the overlay markup. A dismissed badge renders nothing.
// Page-sourced text is escaped.
func (b *Badge) HTML() (string, error) {
	b.mu.Lock()
	if b.dismissed {
		b.mu.Unlock()
		return "", nil
	}
	view := badgeView{
		ID:              b.ID,
		Heading:         badgeHeading,
		Fields:          summaryFields(b.Record),
		ShowAction:      b.state != OpinionsLoaded,
		ActionLabel:     b.label,
		ActionDisabled:  b.disabled,
		ShowOpinions:    b.state == OpinionsLoaded,
		DiscussionsHead: discussionsHeading,
		ArticlesHead:    articlesHeading,
	}
	if b.opinions != nil {
		view.Discussions = b.opinions.DiscussionPosts
		view.Articles = b.opinions.ArticleResults
		if b.opinions.Empty() {
			view.NoOpinions = LabelNoOpinions
		}
	}
	b.mu.Unlock()

	var sb strings.Builder
	if err := badgeTemplate.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("render badge: %w", err)
	}
	return sb.String(), nil
}

func summaryFields(r *domain.ProductRecord) []badgeField {
	fields := []badgeField{
		{"Title", TruncateTitle(r.Title)},
		{"Price", r.Price},
	}
	if r.Rating != "" {
		fields = append(fields, badgeField{"Rating", r.Rating})
	}
	if r.Reviews != "" {
		fields = append(fields, badgeField{"Reviews", r.Reviews})
	}
	if r.Availability != "" {
		fields = append(fields, badgeField{"Availability", r.Availability})
	}
	return fields
}
