package seo

// Entry is the wire shape of GET /seo/{slug}. Null JSON values decode to nil pointers.
type Entry struct {
	Slug         string      `json:"slug"`
	Title        *string     `json:"title"`
	Description  *string     `json:"description"`
	CanonicalURL *string     `json:"canonical_url"`
	Meta         []EntryMeta `json:"meta"`
	OpenGraph    EntrySocial `json:"open_graph"`
	Twitter      EntrySocial `json:"twitter"`
}

// EntryMeta is one stored custom meta tag as the API returns it.
type EntryMeta struct {
	Name      *string `json:"name,omitempty"`
	Property  *string `json:"property,omitempty"`
	HTTPEquiv *string `json:"http_equiv,omitempty"`
	Content   *string `json:"content"`
}

// EntrySocial carries the Open Graph or Twitter block of an Entry.
type EntrySocial struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// Company is the part of GET /company the default layer reads.
type Company struct {
	SiteName string `json:"site_name"`
	LogoURL  string `json:"logo_url"`
}

// EntryLayer converts a stored entry into a layer. A nil entry is the all-unset layer.
// A found entry provides every field it carries: null or blank values clear the defaults.
// Meta tags lacking content or a discriminant are dropped.
func EntryLayer(entry *Entry) Partial {
	if entry == nil {
		return Partial{}
	}
	layer := Partial{
		Title:        stored(entry.Title),
		Description:  stored(entry.Description),
		CanonicalURL: stored(entry.CanonicalURL),
		OpenGraph: OpenGraphPartial{
			Title:       stored(entry.OpenGraph.Title),
			Description: stored(entry.OpenGraph.Description),
			ImageURL:    stored(entry.OpenGraph.ImageURL),
		},
		Twitter: TwitterPartial{
			Title:       stored(entry.Twitter.Title),
			Description: stored(entry.Twitter.Description),
			ImageURL:    stored(entry.Twitter.ImageURL),
		},
	}

	tags := make([]MetaTag, 0, len(entry.Meta))
	for _, m := range entry.Meta {
		tag, ok := NormalizeMetaTag(MetaTag{
			Name:      deref(m.Name),
			Property:  deref(m.Property),
			HTTPEquiv: deref(m.HTTPEquiv),
			Content:   deref(m.Content),
		})
		if ok {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 0 {
		layer.ExtraMeta = Value(tags)
	}
	return layer
}

func stored(v *string) Field[string] {
	if v == nil {
		return Null[string]()
	}
	return Text(*v)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
