// Package reply turns lookup results into outbound chat messages.
package reply

import (
	"strconv"

	"github.com/ashureev/hungrybot/internal/domain"
)

const (
	// FoundText introduces a recommended business.
	FoundText = "Here is a restaurant in the area"
	// NotFoundText is sent whenever a lookup yields nothing.
	NotFoundText = "No restaurants found. Sorry."
)

// FormatLookup builds the reply for a lookup result.
func FormatLookup(result domain.LookupResult) domain.OutboundReply {
	if !result.Found {
		return domain.TextReply(NotFoundText)
	}
	b := result.Business
	return domain.OutboundReply{
		Text: FoundText,
		Attachment: &domain.Attachment{
			Title:     b.Name,
			TitleLink: b.URL,
			Text:      "Rating: " + formatRating(b.Rating) + " stars",
			ImageURL:  b.ImageURL,
		},
	}
}

// formatRating prints ratings the way they arrive from the search API: 4, 4.5.
func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
