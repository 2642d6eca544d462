package seo

// State is the resolved page metadata. Empty strings mean absent.
type State struct {
	Title        string
	Description  string
	CanonicalURL string
	OpenGraph    OpenGraph
	Twitter      Twitter
	ExtraMeta    []MetaTag
}

// OpenGraph holds resolved og:* values.
type OpenGraph struct {
	Title       string
	Description string
	ImageURL    string
}

// Twitter holds resolved twitter:* values.
type Twitter struct {
	Title       string
	Description string
	ImageURL    string
	Card        string
}

// Partial is one sparse layer of metadata: defaults, the stored entry, or page overrides.
type Partial struct {
	Title        Field[string]    `json:"title"`
	Description  Field[string]    `json:"description"`
	CanonicalURL Field[string]    `json:"canonicalUrl"`
	OpenGraph    OpenGraphPartial `json:"openGraph"`
	Twitter      TwitterPartial   `json:"twitter"`
	ExtraMeta    Field[[]MetaTag] `json:"extraMeta"`
}

// OpenGraphPartial is the sparse form of OpenGraph.
type OpenGraphPartial struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	ImageURL    Field[string] `json:"imageUrl"`
}

// TwitterPartial is the sparse form of Twitter.
type TwitterPartial struct {
	Title       Field[string] `json:"title"`
	Description Field[string] `json:"description"`
	ImageURL    Field[string] `json:"imageUrl"`
	Card        Field[string] `json:"card"`
}

// Twitter card types accepted from callers.
const (
	CardSummary           = "summary"
	CardSummaryLargeImage = "summary_large_image"
	CardApp               = "app"
	CardPlayer            = "player"
)

// Merge folds next onto p the way repeated overrides accumulate: provided fields of next win,
// nested objects merge per field, and extra meta tags concatenate with de-duplication.
func (p Partial) Merge(next Partial) Partial {
	out := Partial{
		Title:        p.Title.Or(next.Title),
		Description:  p.Description.Or(next.Description),
		CanonicalURL: p.CanonicalURL.Or(next.CanonicalURL),
		OpenGraph: OpenGraphPartial{
			Title:       p.OpenGraph.Title.Or(next.OpenGraph.Title),
			Description: p.OpenGraph.Description.Or(next.OpenGraph.Description),
			ImageURL:    p.OpenGraph.ImageURL.Or(next.OpenGraph.ImageURL),
		},
		Twitter: TwitterPartial{
			Title:       p.Twitter.Title.Or(next.Twitter.Title),
			Description: p.Twitter.Description.Or(next.Twitter.Description),
			ImageURL:    p.Twitter.ImageURL.Or(next.Twitter.ImageURL),
			Card:        p.Twitter.Card.Or(next.Twitter.Card),
		},
		ExtraMeta: p.ExtraMeta,
	}
	switch {
	case next.ExtraMeta.IsNull():
		out.ExtraMeta = Null[[]MetaTag]()
	case next.ExtraMeta.Provided():
		base, _ := p.ExtraMeta.Get()
		add, _ := next.ExtraMeta.Get()
		out.ExtraMeta = Value(mergeMeta(base, add))
	}
	return out
}

// Merge applies layers in ascending precedence onto an empty State. A provided field overwrites
// the accumulator (null clears it) and an unset field leaves it alone. ExtraMeta concatenates
// with de-duplication; a null ExtraMeta clears the tags accumulated so far.
func Merge(layers ...Partial) State {
	var s State
	for _, layer := range layers {
		assign(&s.Title, layer.Title)
		assign(&s.Description, layer.Description)
		assign(&s.CanonicalURL, layer.CanonicalURL)
		assign(&s.OpenGraph.Title, layer.OpenGraph.Title)
		assign(&s.OpenGraph.Description, layer.OpenGraph.Description)
		assign(&s.OpenGraph.ImageURL, layer.OpenGraph.ImageURL)
		assign(&s.Twitter.Title, layer.Twitter.Title)
		assign(&s.Twitter.Description, layer.Twitter.Description)
		assign(&s.Twitter.ImageURL, layer.Twitter.ImageURL)
		assign(&s.Twitter.Card, layer.Twitter.Card)

		switch {
		case layer.ExtraMeta.IsNull():
			s.ExtraMeta = nil
		case layer.ExtraMeta.Provided():
			tags, _ := layer.ExtraMeta.Get()
			s.ExtraMeta = mergeMeta(s.ExtraMeta, tags)
		}
	}
	return s
}

func assign(dst *string, f Field[string]) {
	if !f.Provided() {
		return
	}
	v, _ := f.Get()
	*dst = v
}

// TwitterCard returns the explicit card when it is one of the known types, otherwise
// summary_large_image when any image is available and summary when none is.
func TwitterCard(s State) string {
	switch s.Twitter.Card {
	case CardSummary, CardSummaryLargeImage, CardApp, CardPlayer:
		return s.Twitter.Card
	}
	if s.Twitter.ImageURL != "" || s.OpenGraph.ImageURL != "" {
		return CardSummaryLargeImage
	}
	return CardSummary
}
