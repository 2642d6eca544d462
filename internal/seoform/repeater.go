// Package seoform converts stored custom meta tags to and from the admin editing rows.
package seoform

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/absign/storefront/internal/domain"
)

// Attribute is the discriminant picked in an editing row.
type Attribute string

const (
	AttributeName      Attribute = "name"
	AttributeProperty  Attribute = "property"
	AttributeHTTPEquiv Attribute = "http_equiv"
)

const (
	maxAttributeValue = 255
	maxContent        = 1024
)

// Row is one repeater row in the editing shape.
type Row struct {
	Attribute      Attribute `json:"attribute"`
	AttributeValue string    `json:"attribute_value"`
	Content        string    `json:"content"`
}

// Hydrate turns stored tags into editing rows. property wins, then http_equiv, and the
// attribute defaults to name.
func Hydrate(tags []domain.MetaTag) []Row {
	rows := make([]Row, 0, len(tags))
	for _, tag := range tags {
		row := Row{Attribute: AttributeName, AttributeValue: tag.Name, Content: tag.Content}
		switch {
		case tag.Property != "":
			row.Attribute, row.AttributeValue = AttributeProperty, tag.Property
		case tag.HTTPEquiv != "":
			row.Attribute, row.AttributeValue = AttributeHTTPEquiv, tag.HTTPEquiv
		}
		rows = append(rows, row)
	}
	return rows
}

// Dehydrate turns editing rows back into stored tags. Values are trimmed and rows whose
// attribute value or content is empty are dropped. Unknown attributes are stored as name.
func Dehydrate(rows []Row) []domain.MetaTag {
	tags := make([]domain.MetaTag, 0, len(rows))
	for _, row := range rows {
		value := strings.TrimSpace(row.AttributeValue)
		content := strings.TrimSpace(row.Content)
		if value == "" || content == "" {
			continue
		}
		tag := domain.MetaTag{Content: content}
		switch row.Attribute {
		case AttributeProperty:
			tag.Property = value
		case AttributeHTTPEquiv:
			tag.HTTPEquiv = value
		default:
			tag.Name = value
		}
		tags = append(tags, tag)
	}
	return tags
}

// RowError reports a problem with one row.
type RowError struct {
	Index int
	Field string
	Msg   string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("extra_meta.%d.%s: %s", e.Index, e.Field, e.Msg)
}

// Validate applies the form rules: a known attribute, a value of at most 255 characters and
// content of at most 1024. Blank rows pass because Dehydrate drops them.
func Validate(rows []Row) error {
	var errs []error
	for i, row := range rows {
		switch row.Attribute {
		case AttributeName, AttributeProperty, AttributeHTTPEquiv:
		case "":
			errs = append(errs, &RowError{Index: i, Field: "attribute", Msg: "is required"})
		default:
			errs = append(errs, &RowError{Index: i, Field: "attribute", Msg: fmt.Sprintf("%q is not one of name, property, http_equiv", row.Attribute)})
		}
		if utf8.RuneCountInString(strings.TrimSpace(row.AttributeValue)) > maxAttributeValue {
			errs = append(errs, &RowError{Index: i, Field: "attribute_value", Msg: fmt.Sprintf("may not be greater than %d characters", maxAttributeValue)})
		}
		if utf8.RuneCountInString(strings.TrimSpace(row.Content)) > maxContent {
			errs = append(errs, &RowError{Index: i, Field: "content", Msg: fmt.Sprintf("may not be greater than %d characters", maxContent)})
		}
	}
	return errors.Join(errs...)
}
