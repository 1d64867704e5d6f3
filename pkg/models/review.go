package models

// Review is one collected product review, in export column order.
type Review struct {
	Number   int    `json:"number"`
	Date     string `json:"date"`
	Rating   int    `json:"rating"`
	Reviewer string `json:"reviewer"`
	Content  string `json:"content"`
	Tags     string `json:"tags"`
	HasPhoto bool   `json:"has_photo"`
}
