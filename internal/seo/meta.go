package seo

import (
	"strconv"
	"strings"
)

// MetaTag is a generic <meta> element. A valid tag has exactly one of Name, Property or
// HTTPEquiv and non-empty Content.
type MetaTag struct {
	Name      string `json:"name,omitempty"`
	Property  string `json:"property,omitempty"`
	HTTPEquiv string `json:"httpEquiv,omitempty"`
	Content   string `json:"content"`
}

// Attribute returns the discriminant attribute name and its value as rendered in HTML.
func (t MetaTag) Attribute() (attr, value string) {
	switch {
	case t.Name != "":
		return "name", t.Name
	case t.Property != "":
		return "property", t.Property
	case t.HTTPEquiv != "":
		return "http-equiv", t.HTTPEquiv
	}
	return "", ""
}

// Valid reports whether the tag has a discriminant and content.
func (t MetaTag) Valid() bool {
	attr, _ := t.Attribute()
	return attr != "" && t.Content != ""
}

// NormalizeMetaTag trims every part and keeps only the first discriminant in the order
// name, property, http-equiv. It reports false for tags that end up invalid.
func NormalizeMetaTag(t MetaTag) (MetaTag, bool) {
	out := MetaTag{Content: strings.TrimSpace(t.Content)}
	switch {
	case strings.TrimSpace(t.Name) != "":
		out.Name = strings.TrimSpace(t.Name)
	case strings.TrimSpace(t.Property) != "":
		out.Property = strings.TrimSpace(t.Property)
	case strings.TrimSpace(t.HTTPEquiv) != "":
		out.HTTPEquiv = strings.TrimSpace(t.HTTPEquiv)
	}
	return out, out.Valid()
}

// NormalizeMetaTags normalizes each tag and drops the invalid ones.
func NormalizeMetaTags(tags []MetaTag) []MetaTag {
	out := make([]MetaTag, 0, len(tags))
	for _, tag := range tags {
		if normalized, ok := NormalizeMetaTag(tag); ok {
			out = append(out, normalized)
		}
	}
	return out
}

// metaKey identifies a tag for de-duplication. Tags without a discriminant are keyed by their
// content and the position they would occupy, so they never collide with earlier tags.
func metaKey(t MetaTag, position int) string {
	switch {
	case t.Name != "":
		return "name:" + t.Name
	case t.Property != "":
		return "property:" + t.Property
	case t.HTTPEquiv != "":
		return "httpEquiv:" + t.HTTPEquiv
	}
	return "content:" + t.Content + ":" + strconv.Itoa(position)
}

// mergeMeta concatenates lists; a later tag with an existing key replaces the earlier one in place.
func mergeMeta(lists ...[]MetaTag) []MetaTag {
	var out []MetaTag
	index := make(map[string]int)
	for _, list := range lists {
		for _, tag := range list {
			key := metaKey(tag, len(out))
			if i, ok := index[key]; ok {
				out[i] = tag
				continue
			}
			index[key] = len(out)
			out = append(out, tag)
		}
	}
	return out
}
