package domain

import (
	"errors"
	"math"
	"time"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
)

var (
	ErrInvalidRating  = errors.New("rating must be an integer between 1 and 5")
	ErrCommentTooLong = errors.New("comment must be at most 500 characters")
	ErrSelfReview     = errors.New("reviewer and reviewee must differ")
)

// Review is a post-hoc rating left by one party about another.
type Review struct {
	ID         string    `json:"id" bson:"_id"`
	ProjectID  string    `json:"project_id" bson:"project_id"`
	ReviewerID string    `json:"reviewer_id" bson:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id" bson:"reviewee_id"`
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`

	Reviewer *ProfileSummary `json:"reviewer,omitempty" bson:"reviewer,omitempty"`
}

// RatingSummary is the derived rating of a reviewee. Average is only
// meaningful when Count > 0.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// HasRating reports whether a rating badge should be shown.
func (r RatingSummary) HasRating() bool { return r.Count > 0 }

// SummarizeRatings computes sum(ratings)/N rounded to one decimal.
func SummarizeRatings(reviews []*Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return RatingSummary{
		Average: math.Round(avg*10) / 10,
		Count:   len(reviews),
	}
}

// RatingLabel returns the Spanish label shown next to a star rating.
func RatingLabel(rating int) string {
	switch rating {
	case 1:
		return "Muy malo"
	case 2:
		return "Malo"
	case 3:
		return "Regular"
	case 4:
		return "Bueno"
	case 5:
		return "Excelente"
	}
	return ""
}
