package domain

// Business is a single search hit from the business search service.
type Business struct {
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Rating   float64 `json:"rating"`
	ImageURL string  `json:"image_url"`
}

// LookupResult is either a found business or nothing.
type LookupResult struct {
	Found    bool
	Business Business
}

// Found wraps a business into a successful LookupResult.
func Found(b Business) LookupResult {
	return LookupResult{Found: true, Business: b}
}

// NotFound is the result for every failed or empty lookup.
var NotFound = LookupResult{}
