package services

import (
	"context"
	"fmt"
	"time"

	"review-crawler-go/pkg/models"
)

// CollectRequest is what a collector needs to gather reviews for one task.
type CollectRequest struct {
	ProductURL string
	Ratings    models.RatingFilter
	MaxReviews int
}

// Collector gathers reviews for a product page. progress is called with the
// running count after each batch.
type Collector interface {
	Collect(ctx context.Context, req CollectRequest, progress func(collected int)) ([]models.Review, error)
}

// SimulatedCollector produces synthetic reviews page by page. It stands in
// for a browser-driven scraper during development.
type SimulatedCollector struct {
	PageDelay time.Duration
	PageSize  int
	// Available is the number of reviews the fake product has.
	Available int
}

// NewSimulatedCollector returns a collector with a 20 review page and 250
// reviews available.
func NewSimulatedCollector(pageDelay time.Duration) *SimulatedCollector {
	return &SimulatedCollector{PageDelay: pageDelay, PageSize: 20, Available: 250}
}

// ratingCycle is the star distribution of the fake product, skewed high.
var ratingCycle = []int{5, 5, 4, 5, 3, 5, 4, 2, 5, 1}

var sampleContent = []string{
	"배송이 빠르고 포장이 꼼꼼했어요.",
	"생각보다 크기가 작네요. 그래도 만족합니다.",
	"재구매 의사 있습니다!",
	"가격 대비 품질이 좋아요.",
	"설명과 조금 달라서 아쉬워요.",
}

var sampleTags = []string{"", "재구매", "빠른배송", "선물용", ""}

func (s *SimulatedCollector) Collect(ctx context.Context, req CollectRequest, progress func(int)) ([]models.Review, error) {
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var reviews []models.Review
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < s.Available && len(reviews) < req.MaxReviews; i += pageSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.PageDelay):
		}

		end := min(i+pageSize, s.Available)
		for j := i; j < end && len(reviews) < req.MaxReviews; j++ {
			rating := ratingCycle[j%len(ratingCycle)]
			if !req.Ratings.Contains(rating) {
				continue
			}
			reviews = append(reviews, models.Review{
				Number:   len(reviews) + 1,
				Date:     base.AddDate(0, 0, j).Format("2006.01.02"),
				Rating:   rating,
				Reviewer: fmt.Sprintf("user%02d***", j%97),
				Content:  sampleContent[j%len(sampleContent)],
				Tags:     sampleTags[j%len(sampleTags)],
				HasPhoto: j%3 == 0,
			})
		}
		if progress != nil {
			progress(len(reviews))
		}
	}
	return reviews, nil
}
