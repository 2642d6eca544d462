package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	domain "github.com/absign/storefront/internal/domain"
	"github.com/absign/storefront/internal/repositories"
)

// ContactFieldOrder lists contact form fields in the order they are validated.
var ContactFieldOrder = []string{"name", "email", "phone", "product", "message"}

var phonePattern = regexp.MustCompile(`^[\d\s()+-]{7,}$`)

// ContactServiceDeps groups constructor parameters for the contact service.
type ContactServiceDeps struct {
	Repository repositories.ContactRepository
	Clock      func() time.Time
	IDGen      func() string
}

type contactService struct {
	repo  repositories.ContactRepository
	clock func() time.Time
	newID func() string
}

// ErrContactRepositoryMissing signals that the contact repository dependency is absent.
var ErrContactRepositoryMissing = errors.New("contact service: contact repository is not configured")

// NewContactService constructs the contact service.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Repository == nil {
		return nil, ErrContactRepositoryMissing
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &contactService{
		repo:  deps.Repository,
		clock: func() time.Time { return clock().UTC() },
		newID: idGen,
	}, nil
}

func (s *contactService) Submit(ctx context.Context, cmd ContactCommand) (domain.ContactMessage, error) {
	msg := domain.ContactMessage{
		Name:    strings.TrimSpace(cmd.Name),
		Email:   strings.TrimSpace(cmd.Email),
		Phone:   strings.TrimSpace(cmd.Phone),
		Product: strings.TrimSpace(cmd.Product),
		Message: strings.TrimSpace(cmd.Message),
	}
	if err := validateContact(msg); err != nil {
		return domain.ContactMessage{}, err
	}

	msg.ID = s.newID()
	msg.CreatedAt = s.clock()
	if err := s.repo.Insert(ctx, msg); err != nil {
		return domain.ContactMessage{}, fmt.Errorf("contact service: store message: %w", err)
	}
	return msg, nil
}

func validateContact(msg domain.ContactMessage) error {
	verr := newValidationError(ErrContactInvalidInput)

	if msg.Name == "" {
		verr.add("name", "Please provide your name.")
	} else if tooLong(msg.Name, 255) {
		verr.add("name", "The name field must not be greater than 255 characters.")
	}

	switch {
	case msg.Email == "":
		verr.add("email", "We need your email address to get back to you.")
	case tooLong(msg.Email, 255):
		verr.add("email", "The email field must not be greater than 255 characters.")
	case !validEmail(msg.Email):
		verr.add("email", "The email field must be a valid email address.")
	}

	switch {
	case msg.Phone == "":
		verr.add("phone", "Please include a phone number so we can reach you quickly.")
	default:
		if tooLong(msg.Phone, 30) {
			verr.add("phone", "The phone field must not be greater than 30 characters.")
		}
		if !phonePattern.MatchString(msg.Phone) {
			verr.add("phone", "Phone numbers may include digits, spaces, parentheses, or + and should be at least 7 characters.")
		}
	}

	if tooLong(msg.Product, 255) {
		verr.add("product", "The product field must not be greater than 255 characters.")
	}

	if msg.Message == "" {
		verr.add("message", "Please enter a message.")
	} else if tooLong(msg.Message, 5000) {
		verr.add("message", "The message field must not be greater than 5000 characters.")
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func tooLong(value string, limit int) bool {
	return utf8.RuneCountInString(value) > limit
}

// validEmail accepts only a bare address such as user@example.com.
func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	return at > 0 && at < len(value)-1
}
