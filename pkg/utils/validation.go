package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"review-crawler-go/pkg/models"
)

// RequiredURLPrefix is the only storefront family the crawler supports.
const RequiredURLPrefix = "https://brand.naver.com/"

// ErrorKind categorizes a rejected job request.
type ErrorKind string

const (
	EmptyLocator       ErrorKind = "empty_locator"
	UnsupportedLocator ErrorKind = "unsupported_locator"
	OutOfRangeLimit    ErrorKind = "out_of_range_limit"
	InvalidRating      ErrorKind = "invalid_rating"
)

// ValidationError is returned for input that must not leave the client.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsKind reports whether err is a ValidationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr) && vErr.Kind == kind
}

// JobInput is raw operator input before validation.
type JobInput struct {
	ProductURL string
	Ratings    RatingSelection
	MaxReviews int
}

// ValidateURL trims and validates a product URL, returning a normalized value
// or an error if the URL is empty or outside the supported storefront.
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ValidationError{Kind: EmptyLocator, Message: "product URL is required"}
	}
	if !strings.HasPrefix(s, RequiredURLPrefix) {
		return "", &ValidationError{
			Kind:    UnsupportedLocator,
			Message: fmt.Sprintf("only Naver brand store URLs are supported (must start with %s)", RequiredURLPrefix),
		}
	}
	if _, err := url.ParseRequestURI(s); err != nil {
		return "", &ValidationError{Kind: UnsupportedLocator, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	return s, nil
}

// ValidateLimit rejects a result limit outside [MinResultLimit, MaxResultLimit].
// Values are never clamped here.
func ValidateLimit(limit int) error {
	if limit < models.MinResultLimit || limit > models.MaxResultLimit {
		return &ValidationError{
			Kind:    OutOfRangeLimit,
			Message: fmt.Sprintf("max reviews must be between %d and %d, got %d", models.MinResultLimit, models.MaxResultLimit, limit),
		}
	}
	return nil
}

// ValidateJobRequest turns raw input into a JobRequest. The locator is checked
// first, so an unsupported URL is reported regardless of the other fields.
func ValidateJobRequest(in JobInput) (models.JobRequest, error) {
	productURL, err := ValidateURL(in.ProductURL)
	if err != nil {
		return models.JobRequest{}, err
	}
	if err := ValidateLimit(in.MaxReviews); err != nil {
		return models.JobRequest{}, err
	}
	return models.JobRequest{
		ProductURL: productURL,
		Ratings:    in.Ratings.Filter(),
		MaxReviews: in.MaxReviews,
	}, nil
}
