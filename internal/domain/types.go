package domain

import "time"

// MetaTag is a stored custom meta tag. Exactly one of Name, Property or HTTPEquiv is expected
// to be populated.
type MetaTag struct {
	Name      string
	Property  string
	HTTPEquiv string
	Content   string
}

// SeoEntry maps a site slug to page-level metadata.
type SeoEntry struct {
	Slug               string
	Title              string
	Description        string
	CanonicalURL       string
	ExtraMeta          []MetaTag
	OGTitle            string
	OGDescription      string
	OGImagePath        string
	TwitterTitle       string
	TwitterDescription string
	TwitterImagePath   string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// Deleted reports whether the entry is soft deleted.
func (e SeoEntry) Deleted() bool { return e.DeletedAt != nil }

// CallToAction is a labelled link on the home page hero.
type CallToAction struct {
	Label string
	URL   string
}

// HeroStat is a headline figure shown on the home page hero.
type HeroStat struct {
	Label string
	Value string
}

// CompanyInfo holds the site-wide identity and home page content.
type CompanyInfo struct {
	SiteName        string
	Tagline         string
	LogoPath        string
	AboutUs         string
	ContactEmail    string
	ContactPhone    string
	Address         string
	GoogleMapEmbed  string
	HeroHeadline    string
	HeroSubheadline string
	PrimaryCTA      CallToAction
	SecondaryCTA    CallToAction
	Stats           []HeroStat
	UpdatedAt       time.Time
}

// Company is one of the group's operating companies shown under "Our Companies".
type Company struct {
	ID        string
	Name      string
	Slug      string
	Tagline   string
	LogoPath  string
	Summary   string
	Overview  string
	Email     string
	Phone     string
	Address   string
	Website   string
	SortOrder int
	Services  []CompanyService
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompanyService is a service line offered by a company.
type CompanyService struct {
	Title       string
	Description string
	SortOrder   int
}

// Category groups products.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

// Supplier is a product manufacturer or distributor.
type Supplier struct {
	ID      string
	Name    string
	Website string
}

// Product is a catalog item. Description holds sanitized HTML.
type Product struct {
	ID          string
	Name        string
	SKU         string
	Description string
	CategoryID  string
	SupplierID  string
	ImagePath   string
	IsActive    bool
	IsFeatured  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContactMessage is a lead submitted through the contact form.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Product   string
	Message   string
	CreatedAt time.Time
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but the service still runs.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for the readiness endpoint.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	GeneratedAt time.Time
}
