package utils

import (
	"testing"

	"review-crawler-go/pkg/models"
)

const validURL = "https://brand.naver.com/x/products/1"

func TestValidateJobRequest_AcceptsSupportedURL(t *testing.T) {
	req, err := ValidateJobRequest(JobInput{ProductURL: "  " + validURL + " ", MaxReviews: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ProductURL != validURL {
		t.Fatalf("unexpected url: got %q want %q", req.ProductURL, validURL)
	}
	if !req.Ratings.IsUnset() {
		t.Fatalf("expected unset rating filter, got %s", req.Ratings)
	}
	if req.MaxReviews != 100 {
		t.Fatalf("unexpected limit: %d", req.MaxReviews)
	}
}

func TestValidateJobRequest_RejectsEmptyLocator(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := ValidateJobRequest(JobInput{ProductURL: raw, MaxReviews: 100})
		if !IsKind(err, EmptyLocator) {
			t.Fatalf("expected EmptyLocator for %q, got %v", raw, err)
		}
	}
}

func TestValidateJobRequest_UnsupportedLocatorWinsOverOtherFields(t *testing.T) {
	urls := []string{
		"https://smartstore.naver.com/x/products/1",
		"http://brand.naver.com/x/products/1",
		"brand.naver.com/x/products/1",
		"https://brand.naver.com.evil.com/x",
		"not a url",
	}
	limits := []int{0, 5, 10, 100, 1000, 2000}
	ratingSets := []string{"", "1", "1,5", "5,4,3,2,1"}

	for _, u := range urls {
		for _, limit := range limits {
			for _, rs := range ratingSets {
				sel, err := ParseRatings(rs)
				if err != nil {
					t.Fatalf("parse ratings %q: %v", rs, err)
				}
				_, err = ValidateJobRequest(JobInput{ProductURL: u, Ratings: sel, MaxReviews: limit})
				if !IsKind(err, UnsupportedLocator) {
					t.Fatalf("expected UnsupportedLocator for url=%q limit=%d ratings=%q, got %v", u, limit, rs, err)
				}
			}
		}
	}
}

func TestValidateJobRequest_RejectsOutOfRangeLimitWithoutClamping(t *testing.T) {
	sel, err := ParseRatings("1,5")
	if err != nil {
		t.Fatalf("parse ratings: %v", err)
	}

	cases := []struct {
		limit int
		ok    bool
	}{
		{9, false},
		{10, true},
		{15, true},
		{1000, true},
		{1001, false},
		{2000, false},
		{-1, false},
	}
	for _, tc := range cases {
		req, err := ValidateJobRequest(JobInput{ProductURL: validURL, Ratings: sel, MaxReviews: tc.limit})
		if tc.ok {
			if err != nil {
				t.Fatalf("limit %d: unexpected error %v", tc.limit, err)
			}
			if req.MaxReviews != tc.limit {
				t.Fatalf("limit %d was altered to %d", tc.limit, req.MaxReviews)
			}
			continue
		}
		if !IsKind(err, OutOfRangeLimit) {
			t.Fatalf("limit %d: expected OutOfRangeLimit, got %v", tc.limit, err)
		}
	}
}

func TestRatingSelection_ToggleIsOrderIndependent(t *testing.T) {
	sequences := [][]int{
		{1, 5},
		{5, 1},
		{5, 3, 1, 3},
		{3, 1, 5, 3},
		{1, 2, 5, 2},
	}

	var want models.RatingFilter
	for i, seq := range sequences {
		var sel RatingSelection
		for _, r := range seq {
			if err := sel.Toggle(r); err != nil {
				t.Fatalf("toggle %d: %v", r, err)
			}
		}
		got := sel.Filter()
		if i == 0 {
			want = got
			continue
		}
		if got != want {
			t.Fatalf("sequence %v: got %s want %s", seq, got, want)
		}
	}
	if vals := want.Values(); len(vals) != 2 || vals[0] != 5 || vals[1] != 1 {
		t.Fatalf("unexpected values: %v", vals)
	}
}

func TestRatingSelection_EmptyMeansNoFilter(t *testing.T) {
	var untouched RatingSelection

	var toggledOff RatingSelection
	_ = toggledOff.Toggle(5)
	_ = toggledOff.Toggle(5)

	for name, sel := range map[string]RatingSelection{"untouched": untouched, "toggled off": toggledOff} {
		f := sel.Filter()
		if !f.IsUnset() {
			t.Fatalf("%s: expected unset filter, got %s", name, f)
		}
		if f.Values() != nil {
			t.Fatalf("%s: expected nil values, got %v", name, f.Values())
		}
		if f != (models.RatingFilter{}) {
			t.Fatalf("%s: filter differs from zero value", name)
		}
	}
}

func TestRatingSelection_ToggleRejectsOutOfRange(t *testing.T) {
	var sel RatingSelection
	for _, r := range []int{0, 6, -1} {
		if err := sel.Toggle(r); !IsKind(err, InvalidRating) {
			t.Fatalf("toggle %d: expected InvalidRating, got %v", r, err)
		}
	}
}

func TestParseRatings(t *testing.T) {
	cases := []struct {
		raw     string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"all", nil, false},
		{"5", []int{5}, false},
		{"1,5", []int{5, 1}, false},
		{" 4 , 4 ,5 ", []int{5, 4}, false},
		{"0", nil, true},
		{"6", nil, true},
		{"x", nil, true},
	}
	for _, tc := range cases {
		sel, err := ParseRatings(tc.raw)
		if tc.wantErr {
			if !IsKind(err, InvalidRating) {
				t.Fatalf("%q: expected InvalidRating, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.raw, err)
		}
		got := sel.Filter().Values()
		if len(got) != len(tc.want) {
			t.Fatalf("%q: got %v want %v", tc.raw, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%q: got %v want %v", tc.raw, got, tc.want)
			}
		}
	}
}
