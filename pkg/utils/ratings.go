package utils

import (
	"fmt"
	"strconv"
	"strings"

	"review-crawler-go/pkg/models"
)

// RatingSelection tracks which rating toggles are switched on. The zero value
// has nothing selected, which means "collect every rating".
type RatingSelection struct {
	on [models.MaxRating + 1]bool
}

// Toggle flips rating r on or off.
func (s *RatingSelection) Toggle(r int) error {
	if r < models.MinRating || r > models.MaxRating {
		return &ValidationError{
			Kind:    InvalidRating,
			Message: fmt.Sprintf("rating must be between %d and %d, got %d", models.MinRating, models.MaxRating, r),
		}
	}
	s.on[r] = !s.on[r]
	return nil
}

// Selected reports whether rating r is switched on.
func (s RatingSelection) Selected(r int) bool {
	if r < models.MinRating || r > models.MaxRating {
		return false
	}
	return s.on[r]
}

// Filter normalizes the selection. An empty selection yields the unset filter.
func (s RatingSelection) Filter() models.RatingFilter {
	var selected []int
	for r := models.MinRating; r <= models.MaxRating; r++ {
		if s.on[r] {
			selected = append(selected, r)
		}
	}
	f, _ := models.NewRatingFilter(selected...)
	return f
}

// ParseRatings parses a comma-separated list such as "5,4". An empty string
// or "all" selects nothing. A rating listed twice is selected once.
func ParseRatings(raw string) (RatingSelection, error) {
	var s RatingSelection
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return s, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := strconv.Atoi(part)
		if err != nil {
			return RatingSelection{}, &ValidationError{Kind: InvalidRating, Message: fmt.Sprintf("invalid rating %q", part)}
		}
		if r < models.MinRating || r > models.MaxRating {
			return RatingSelection{}, &ValidationError{
				Kind:    InvalidRating,
				Message: fmt.Sprintf("rating must be between %d and %d, got %d", models.MinRating, models.MaxRating, r),
			}
		}
		s.on[r] = true
	}
	return s, nil
}
