package seo

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HeadMeta is a rendered <meta> element.
type HeadMeta struct {
	Attr    string
	Key     string
	Content string
}

// Head is the set of elements a page injects into <head>.
type Head struct {
	Title     string
	Canonical string
	Meta      []HeadMeta
}

// BuildHead derives head elements from a finalized state. Open Graph and Twitter titles and
// descriptions fall back to the page values, the Twitter image falls back to the Open Graph
// image, and relative image paths are made absolute. Extra tags that share a key with a
// standard tag replace its content in place.
func BuildHead(s State, siteOrigin string, requestURL *url.URL) Head {
	h := Head{Title: s.Title, Canonical: s.CanonicalURL}
	index := make(map[string]int)
	add := func(attr, key, content string) {
		if content == "" || key == "" {
			return
		}
		id := attr + ":" + key
		if i, ok := index[id]; ok {
			h.Meta[i].Content = content
			return
		}
		index[id] = len(h.Meta)
		h.Meta = append(h.Meta, HeadMeta{Attr: attr, Key: key, Content: content})
	}

	ogImage := absoluteURL(s.OpenGraph.ImageURL, siteOrigin, requestURL)
	twitterImage := absoluteURL(firstSet(s.Twitter.ImageURL, s.OpenGraph.ImageURL), siteOrigin, requestURL)

	add("name", "description", s.Description)
	add("property", "og:title", firstSet(s.OpenGraph.Title, s.Title))
	add("property", "og:description", firstSet(s.OpenGraph.Description, s.Description))
	add("property", "og:image", ogImage)
	add("property", "og:url", s.CanonicalURL)
	add("name", "twitter:card", TwitterCard(s))
	add("name", "twitter:title", firstSet(s.Twitter.Title, s.Title))
	add("name", "twitter:description", firstSet(s.Twitter.Description, s.Description))
	add("name", "twitter:image", twitterImage)
	for _, tag := range s.ExtraMeta {
		attr, key := tag.Attribute()
		if attr == "" {
			continue
		}
		add(attr, key, tag.Content)
	}
	return h
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Lookup returns the content of the meta element identified by attr and key.
func (h Head) Lookup(attr, key string) (string, bool) {
	for _, m := range h.Meta {
		if m.Attr == attr && m.Key == key {
			return m.Content, true
		}
	}
	return "", false
}

// Nodes returns the head elements as HTML nodes in emission order.
func (h Head) Nodes() []*html.Node {
	var nodes []*html.Node
	if h.Title != "" {
		title := element(atom.Title)
		title.AppendChild(&html.Node{Type: html.TextNode, Data: h.Title})
		nodes = append(nodes, title)
	}
	for _, m := range h.Meta {
		nodes = append(nodes, element(atom.Meta,
			html.Attribute{Key: m.Attr, Val: m.Key},
			html.Attribute{Key: "content", Val: m.Content},
		))
	}
	if h.Canonical != "" {
		nodes = append(nodes, element(atom.Link,
			html.Attribute{Key: "rel", Val: "canonical"},
			html.Attribute{Key: "href", Val: h.Canonical},
		))
	}
	return nodes
}

// Render writes the head elements to w, one per line, with attribute values escaped.
func (h Head) Render(w io.Writer) error {
	for i, node := range h.Nodes() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := html.Render(w, node); err != nil {
			return err
		}
	}
	return nil
}

// HTML returns the rendered head elements as a string.
func (h Head) HTML() string {
	var buf bytes.Buffer
	_ = h.Render(&buf)
	return buf.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// ParseHead reads title, meta and canonical link elements back out of rendered head markup.
func ParseHead(markup string) (Head, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{Type: html.ElementNode, DataAtom: atom.Head, Data: "head"})
	if err != nil {
		return Head{}, err
	}
	var h Head
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Title:
			if n.FirstChild != nil {
				h.Title = n.FirstChild.Data
			}
		case atom.Link:
			if attr(n, "rel") == "canonical" {
				h.Canonical = attr(n, "href")
			}
		case atom.Meta:
			for _, a := range n.Attr {
				if a.Key == "name" || a.Key == "property" || a.Key == "http-equiv" {
					h.Meta = append(h.Meta, HeadMeta{Attr: a.Key, Key: a.Val, Content: attr(n, "content")})
					break
				}
			}
		}
	}
	return h, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
