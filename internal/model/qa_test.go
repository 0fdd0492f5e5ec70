package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForConfidence_Partition(t *testing.T) {
	tests := []struct {
		confidence int
		want       ReviewStatus
	}{
		{0, StatusNeedsReview},
		{49, StatusNeedsReview},
		{50, StatusReviewRecommended},
		{79, StatusReviewRecommended},
		{80, StatusValidated},
		{100, StatusValidated},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForConfidence(tt.confidence), "confidence %d", tt.confidence)
	}
}

func TestStatusForConfidence_NoGapsOrOverlap(t *testing.T) {
	// Every integer in [0,100] maps to exactly one status.
	for c := 0; c <= 100; c++ {
		s := StatusForConfidence(c)
		switch {
		case c < 50:
			assert.Equal(t, StatusNeedsReview, s)
		case c < 80:
			assert.Equal(t, StatusReviewRecommended, s)
		default:
			assert.Equal(t, StatusValidated, s)
		}
	}
}
