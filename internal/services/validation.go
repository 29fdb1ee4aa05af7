package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
)

const (
	PhoneLength       = 11
	maxTitleLength    = 80
	maxDescLength     = 300
	maxNameLength     = 80
	maxImages         = 5
	maxMediaURLLength = 500
)

// NormalizePhone strips formatting and the +55 country code and requires a
// Brazilian number with area code (11 digits).
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == PhoneLength+2 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	if len(digits) != PhoneLength {
		return "", NewValidationError(fmt.Sprintf("phone must have %d digits including area code", PhoneLength))
	}
	return digits, nil
}

// normalizeSubmission validates a new listing and returns a cleaned copy.
func normalizeSubmission(req *dto.ShowcaseSubmission) (*dto.ShowcaseSubmission, error) {
	if req == nil {
		return nil, NewValidationError("request body is required")
	}
	out := *req
	out.Title = strings.TrimSpace(out.Title)
	out.Description = strings.TrimSpace(out.Description)
	out.ContactName = strings.TrimSpace(out.ContactName)
	out.VideoURL = strings.TrimSpace(out.VideoURL)

	if err := validateTitle(out.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(out.Description); err != nil {
		return nil, err
	}
	if !models.PostCategory(out.Category).Valid() {
		return nil, NewValidationError(fmt.Sprintf("invalid category %q", out.Category))
	}
	if err := validateContactName(out.ContactName); err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(out.ContactPhone)
	if err != nil {
		return nil, err
	}
	out.ContactPhone = phone

	images, err := validateImages(out.ImageURLs)
	if err != nil {
		return nil, err
	}
	out.ImageURLs = images
	if err := validateMediaURL(out.VideoURL); err != nil {
		return nil, err
	}
	if err := validatePrice(out.PriceCents); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateTitle(title string) error {
	if title == "" {
		return NewValidationError("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return NewValidationError(fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxDescLength {
		return NewValidationError(fmt.Sprintf("description must be at most %d characters", maxDescLength))
	}
	return nil
}

func validateContactName(name string) error {
	if name == "" {
		return NewValidationError("contact_name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return NewValidationError(fmt.Sprintf("contact_name must be at most %d characters", maxNameLength))
	}
	return nil
}

func validateImages(urls []string) ([]string, error) {
	if len(urls) > maxImages {
		return nil, NewValidationError(fmt.Sprintf("at most %d images are allowed", maxImages))
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if err := validateMediaURL(u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// validateMediaURL accepts an empty value or an absolute http(s) URL. Media
// itself lives in object storage; only the reference is kept.
func validateMediaURL(raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > maxMediaURLLength {
		return NewValidationError("media URL is too long")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError(fmt.Sprintf("invalid media URL %q", raw))
	}
	return nil
}

func validatePrice(price *int64) error {
	if price != nil && *price < 0 {
		return NewValidationError("price_cents must not be negative")
	}
	return nil
}
