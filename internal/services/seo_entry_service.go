package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/repositories"
	"github.com/absign/storefront/internal/seoform"
)

const (
	maxSlugLength        = 100
	maxTitleLength       = 255
	maxDescriptionLength = 500
	maxURLLength         = 2048
)

// Slugs double as Firestore document IDs and admin path segments, so they never contain a slash.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// SeoEntryServiceDeps groups constructor parameters for the SEO entry service.
type SeoEntryServiceDeps struct {
	Repository repositories.SeoEntryRepository
	Clock      func() time.Time
}

type seoEntryService struct {
	repo  repositories.SeoEntryRepository
	clock func() time.Time
}

// ErrSeoEntryRepositoryMissing signals that the repository dependency is absent.
var ErrSeoEntryRepositoryMissing = errors.New("seo entry service: repository is not configured")

// NewSeoEntryService constructs the SEO entry service.
func NewSeoEntryService(deps SeoEntryServiceDeps) (SeoEntryService, error) {
	if deps.Repository == nil {
		return nil, ErrSeoEntryRepositoryMissing
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &seoEntryService{
		repo:  deps.Repository,
		clock: func() time.Time { return clock().UTC() },
	}, nil
}

func (s *seoEntryService) GetBySlug(ctx context.Context, slug string) (domain.SeoEntry, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.SeoEntry{}, ErrSeoEntryNotFound
	}
	entry, err := s.repo.FindBySlug(ctx, slug, false)
	if err != nil {
		return domain.SeoEntry{}, s.mapError(err)
	}
	return entry, nil
}

func (s *seoEntryService) List(ctx context.Context, filter SeoEntryFilter) ([]SeoEntryForm, error) {
	repoFilter := repositories.SeoEntryListFilter{Search: strings.TrimSpace(filter.Search)}
	switch strings.ToLower(strings.TrimSpace(filter.Trashed)) {
	case "with":
		repoFilter.IncludeDeleted = true
	case "only":
		repoFilter.OnlyDeleted = true
	}
	entries, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, s.mapError(err)
	}
	forms := make([]SeoEntryForm, 0, len(entries))
	for _, entry := range entries {
		forms = append(forms, toForm(entry))
	}
	return forms, nil
}

func (s *seoEntryService) Get(ctx context.Context, slug string) (SeoEntryForm, error) {
	entry, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug), true)
	if err != nil {
		return SeoEntryForm{}, s.mapError(err)
	}
	return toForm(entry), nil
}

func (s *seoEntryService) Save(ctx context.Context, cmd SaveSeoEntryCommand) (SeoEntryForm, error) {
	form := trimForm(cmd.Form)
	if err := validateForm(form); err != nil {
		return SeoEntryForm{}, err
	}

	entry := domain.SeoEntry{
		Slug:               form.Slug,
		Title:              form.Title,
		Description:        form.Description,
		CanonicalURL:       form.CanonicalURL,
		ExtraMeta:          seoform.Dehydrate(form.ExtraMeta),
		OGTitle:            form.OGTitle,
		OGDescription:      form.OGDescription,
		OGImagePath:        form.OGImagePath,
		TwitterTitle:       form.TwitterTitle,
		TwitterDescription: form.TwitterDescription,
		TwitterImagePath:   form.TwitterImagePath,
	}
	saved, err := s.repo.Save(ctx, strings.TrimSpace(cmd.OriginalSlug), entry)
	if err != nil {
		return SeoEntryForm{}, s.mapError(err)
	}
	return toForm(saved), nil
}

func (s *seoEntryService) Delete(ctx context.Context, slug string) error {
	return s.mapError(s.repo.SoftDelete(ctx, strings.TrimSpace(slug), s.clock()))
}

func (s *seoEntryService) Restore(ctx context.Context, slug string) error {
	return s.mapError(s.repo.Restore(ctx, strings.TrimSpace(slug), s.clock()))
}

func (s *seoEntryService) ForceDelete(ctx context.Context, slug string) error {
	return s.mapError(s.repo.ForceDelete(ctx, strings.TrimSpace(slug)))
}

func (s *seoEntryService) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrSeoEntryNotFound, err)
	case repositories.IsConflict(err):
		return fmt.Errorf("%w: %v", ErrSeoEntryConflict, err)
	default:
		return err
	}
}

func toForm(entry domain.SeoEntry) SeoEntryForm {
	return SeoEntryForm{
		Slug:               entry.Slug,
		Title:              entry.Title,
		Description:        entry.Description,
		CanonicalURL:       entry.CanonicalURL,
		ExtraMeta:          seoform.Hydrate(entry.ExtraMeta),
		OGTitle:            entry.OGTitle,
		OGDescription:      entry.OGDescription,
		OGImagePath:        entry.OGImagePath,
		TwitterTitle:       entry.TwitterTitle,
		TwitterDescription: entry.TwitterDescription,
		TwitterImagePath:   entry.TwitterImagePath,
		CreatedAt:          entry.CreatedAt,
		UpdatedAt:          entry.UpdatedAt,
		DeletedAt:          entry.DeletedAt,
	}
}

func trimForm(f SeoEntryForm) SeoEntryForm {
	f.Slug = strings.TrimSpace(f.Slug)
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.CanonicalURL = strings.TrimSpace(f.CanonicalURL)
	f.OGTitle = strings.TrimSpace(f.OGTitle)
	f.OGDescription = strings.TrimSpace(f.OGDescription)
	f.OGImagePath = strings.TrimSpace(f.OGImagePath)
	f.TwitterTitle = strings.TrimSpace(f.TwitterTitle)
	f.TwitterDescription = strings.TrimSpace(f.TwitterDescription)
	f.TwitterImagePath = strings.TrimSpace(f.TwitterImagePath)
	return f
}

func validateForm(f SeoEntryForm) error {
	verr := newValidationError(ErrSeoEntryInvalidInput)

	switch {
	case f.Slug == "":
		verr.add("slug", "The slug field is required.")
	case utf8.RuneCountInString(f.Slug) > maxSlugLength:
		verr.add("slug", fmt.Sprintf("The slug may not be greater than %d characters.", maxSlugLength))
	case !slugPattern.MatchString(f.Slug):
		verr.add("slug", "The slug may only contain lowercase letters, digits, dots, dashes and underscores.")
	}

	checkLength(verr, "title", f.Title, maxTitleLength)
	checkLength(verr, "description", f.Description, maxDescriptionLength)
	checkLength(verr, "og_title", f.OGTitle, maxTitleLength)
	checkLength(verr, "og_description", f.OGDescription, maxDescriptionLength)
	checkLength(verr, "og_image_path", f.OGImagePath, maxURLLength)
	checkLength(verr, "twitter_title", f.TwitterTitle, maxTitleLength)
	checkLength(verr, "twitter_description", f.TwitterDescription, maxDescriptionLength)
	checkLength(verr, "twitter_image_path", f.TwitterImagePath, maxURLLength)

	if f.CanonicalURL != "" {
		if utf8.RuneCountInString(f.CanonicalURL) > maxURLLength {
			verr.add("canonical_url", fmt.Sprintf("The canonical url may not be greater than %d characters.", maxURLLength))
		} else if !validCanonical(f.CanonicalURL) {
			verr.add("canonical_url", "The canonical url must be an absolute http(s) URL or a path starting with /.")
		}
	}

	if err := seoform.Validate(f.ExtraMeta); err != nil {
		var rowErr *seoform.RowError
		for _, e := range unwrapAll(err) {
			if errors.As(e, &rowErr) {
				verr.add(fmt.Sprintf("extra_meta.%d.%s", rowErr.Index, rowErr.Field), "The "+strings.ReplaceAll(rowErr.Field, "_", " ")+" "+rowErr.Msg+".")
			}
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func checkLength(verr *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		verr.add(field, fmt.Sprintf("The %s may not be greater than %d characters.", strings.ReplaceAll(field, "_", " "), limit))
	}
}

func validCanonical(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return !strings.ContainsAny(raw, " \t\n")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
