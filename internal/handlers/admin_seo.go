package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/absign/storefront/internal/platform/httpx"
	"github.com/absign/storefront/internal/platform/requestctx"
	"github.com/absign/storefront/internal/seoform"
	"github.com/absign/storefront/internal/services"
)

const maxSeoEntryBodyBytes = 256 << 10

// AdminSeoHandlers exposes the SEO entry editor endpoints under /admin/seo-entries.
type AdminSeoHandlers struct {
	entries services.SeoEntryService
}

// NewAdminSeoHandlers constructs the SEO entry editor handlers.
func NewAdminSeoHandlers(entries services.SeoEntryService) *AdminSeoHandlers {
	return &AdminSeoHandlers{entries: entries}
}

// Routes registers the editor endpoints.
func (h *AdminSeoHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/seo-entries", func(rt chi.Router) {
		rt.Get("/", h.list)
		rt.Get("/{slug}", h.get)
		rt.Put("/{slug}", h.save)
		rt.Delete("/{slug}", h.delete)
		rt.Delete("/{slug}/force", h.forceDelete)
		rt.Post("/{slug}/restore", h.restore)
	})
}

type seoEntryFormPayload struct {
	Slug               string        `json:"slug"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	CanonicalURL       string        `json:"canonical_url"`
	ExtraMeta          []seoform.Row `json:"extra_meta"`
	OGTitle            string        `json:"og_title"`
	OGDescription      string        `json:"og_description"`
	OGImagePath        string        `json:"og_image_path"`
	TwitterTitle       string        `json:"twitter_title"`
	TwitterDescription string        `json:"twitter_description"`
	TwitterImagePath   string        `json:"twitter_image_path"`
	CreatedAt          string        `json:"created_at,omitempty"`
	UpdatedAt          string        `json:"updated_at,omitempty"`
	DeletedAt          *string       `json:"deleted_at"`
}

func newSeoEntryFormPayload(form services.SeoEntryForm) seoEntryFormPayload {
	rows := form.ExtraMeta
	if rows == nil {
		rows = []seoform.Row{}
	}
	payload := seoEntryFormPayload{
		Slug:               form.Slug,
		Title:              form.Title,
		Description:        form.Description,
		CanonicalURL:       form.CanonicalURL,
		ExtraMeta:          rows,
		OGTitle:            form.OGTitle,
		OGDescription:      form.OGDescription,
		OGImagePath:        form.OGImagePath,
		TwitterTitle:       form.TwitterTitle,
		TwitterDescription: form.TwitterDescription,
		TwitterImagePath:   form.TwitterImagePath,
		CreatedAt:          formatTimestamp(form.CreatedAt),
		UpdatedAt:          formatTimestamp(form.UpdatedAt),
	}
	if form.DeletedAt != nil {
		deleted := formatTimestamp(*form.DeletedAt)
		payload.DeletedAt = &deleted
	}
	return payload
}

func (h *AdminSeoHandlers) list(w http.ResponseWriter, r *http.Request) {
	if h.entries == nil {
		writeUnavailable(r.Context(), w, "seo")
		return
	}
	trashed := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("trashed")))
	switch trashed {
	case "", "with", "only":
	default:
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_trashed", "trashed must be with or only", http.StatusBadRequest))
		return
	}

	forms, err := h.entries.List(r.Context(), services.SeoEntryFilter{
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		Trashed: trashed,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	data := make([]seoEntryFormPayload, 0, len(forms))
	for _, form := range forms {
		data = append(data, newSeoEntryFormPayload(form))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *AdminSeoHandlers) get(w http.ResponseWriter, r *http.Request) {
	if h.entries == nil {
		writeUnavailable(r.Context(), w, "seo")
		return
	}
	form, err := h.entries.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newSeoEntryFormPayload(form))
}

// save upserts the entry loaded under the path slug. The body slug may differ to rename it.
func (h *AdminSeoHandlers) save(w http.ResponseWriter, r *http.Request) {
	if h.entries == nil {
		writeUnavailable(r.Context(), w, "seo")
		return
	}
	original := strings.TrimSpace(chi.URLParam(r, "slug"))

	var body seoEntryFormPayload
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxSeoEntryBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_json", "request body is required", http.StatusBadRequest))
			return
		}
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_json", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(body.Slug) == "" {
		body.Slug = original
	}

	saved, err := h.entries.Save(r.Context(), services.SaveSeoEntryCommand{
		OriginalSlug: original,
		Form: services.SeoEntryForm{
			Slug:               body.Slug,
			Title:              body.Title,
			Description:        body.Description,
			CanonicalURL:       body.CanonicalURL,
			ExtraMeta:          body.ExtraMeta,
			OGTitle:            body.OGTitle,
			OGDescription:      body.OGDescription,
			OGImagePath:        body.OGImagePath,
			TwitterTitle:       body.TwitterTitle,
			TwitterDescription: body.TwitterDescription,
			TwitterImagePath:   body.TwitterImagePath,
		},
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	requestctx.Logger(r.Context()).Info("seo entry saved",
		zap.String("slug", saved.Slug),
		zap.String("originalSlug", original),
	)
	httpx.WriteJSON(w, http.StatusOK, newSeoEntryFormPayload(saved))
}

func (h *AdminSeoHandlers) delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "seo entry trashed", func(ctx context.Context, slug string) error {
		return h.entries.Delete(ctx, slug)
	})
}

func (h *AdminSeoHandlers) forceDelete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "seo entry deleted", func(ctx context.Context, slug string) error {
		return h.entries.ForceDelete(ctx, slug)
	})
}

func (h *AdminSeoHandlers) restore(w http.ResponseWriter, r *http.Request) {
	if h.entries == nil {
		writeUnavailable(r.Context(), w, "seo")
		return
	}
	slug := chi.URLParam(r, "slug")
	if err := h.entries.Restore(r.Context(), slug); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	form, err := h.entries.Get(r.Context(), slug)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	requestctx.Logger(r.Context()).Info("seo entry restored", zap.String("slug", form.Slug))
	httpx.WriteJSON(w, http.StatusOK, newSeoEntryFormPayload(form))
}

func (h *AdminSeoHandlers) mutate(w http.ResponseWriter, r *http.Request, logMsg string, op func(ctx context.Context, slug string) error) {
	if h.entries == nil {
		writeUnavailable(r.Context(), w, "seo")
		return
	}
	slug := chi.URLParam(r, "slug")
	if err := op(r.Context(), slug); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	requestctx.Logger(r.Context()).Info(logMsg, zap.String("slug", slug))
	w.WriteHeader(http.StatusNoContent)
}
