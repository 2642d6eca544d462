package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/absign/storefront/internal/platform/requestctx"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageNames = []string{"home", "about", "products", "product", "companies", "company", "contact", "privacy", "not_found"}

type views struct {
	pages map[string]*template.Template
}

// PageData is the view model every page renders through the shared layout.
type PageData struct {
	Head     template.HTML
	JSONLD   []template.JS
	SiteName string
	Path     string
	Year     int
	Content  any
}

func newViews() (*views, error) {
	md := newMarkdown()
	funcs := template.FuncMap{
		"markdown": md.render,
		"mapEmbed": sanitizeMapEmbed,
		"richText": sanitizeRichText,
	}
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, err
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes the base layout with the named page. Output is buffered so a template error
// still produces a clean 500.
func (v *views) render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	t, ok := v.pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	if data.Path == "" {
		data.Path = r.URL.Path
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		requestctx.Logger(r.Context()).Error("template exec failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdown() markdown {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return markdown{
		md:     goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
		policy: policy,
	}
}

// render converts markdown to sanitized HTML. Conversion errors fall back to escaped text.
func (m markdown) render(source string) template.HTML {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes()))
}

var (
	mapEmbedPolicy = newMapEmbedPolicy()
	richTextPolicy = newRichTextPolicy()
)

func newRichTextPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "br", "strong", "em", "ul", "ol", "li")
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowStandardURLs()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// sanitizeRichText re-applies the product description allowlist to API-supplied HTML.
func sanitizeRichText(markup string) template.HTML {
	return template.HTML(richTextPolicy.Sanitize(markup))
}

func newMapEmbedPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("src").Matching(regexp.MustCompile(`^https://(www\.)?google\.[a-z.]+/maps/embed`)).OnElements("iframe")
	policy.AllowAttrs("width", "height").Matching(bluemonday.NumberOrPercent).OnElements("iframe")
	policy.AllowAttrs("loading").Matching(regexp.MustCompile(`^(lazy|eager)$`)).OnElements("iframe")
	policy.AllowAttrs("title").OnElements("iframe")
	policy.AllowURLSchemes("https")
	policy.RequireParseableURLs(true)
	return policy
}

// sanitizeMapEmbed keeps only a Google Maps embed iframe from admin-supplied markup.
func sanitizeMapEmbed(markup string) template.HTML {
	return template.HTML(mapEmbedPolicy.Sanitize(markup))
}
