package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionMiss is returned when the page is not a recognized product page
	// or a required field (title, price) is absent
	ErrExtractionMiss = errors.New("no product found on page")

	// ErrUnknownSite is returned when a hostname does not map to a supported site
	ErrUnknownSite = errors.New("not a known product site")

	// ErrInvalidRecord is returned when a product record violates its invariants
	ErrInvalidRecord = errors.New("invalid product record")

	// ErrDeliveryFailure is returned when a message cannot be handed to the background channel
	ErrDeliveryFailure = errors.New("message delivery failed")

	// ErrTabNotFound is returned when no record is stored for a tab
	ErrTabNotFound = errors.New("no product recorded for tab")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrPageFetchFailure is returned when a product page cannot be downloaded
	ErrPageFetchFailure = errors.New("page fetch failed")

	// ErrScrapeFailure is returned when the scraping service request fails
	ErrScrapeFailure = errors.New("scrape request failed")
)

// DefaultOpinionsErrorMessage is used when the opinions backend fails without a message.
const DefaultOpinionsErrorMessage = "Failed to fetch opinions"

// OpinionsFetchError is returned by the opinion fetcher on network failure,
// non-success responses, or malformed payloads. Message is safe to show to users.
type OpinionsFetchError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *OpinionsFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *OpinionsFetchError) Unwrap() error {
	return e.Err
}

// NewOpinionsFetchError builds an OpinionsFetchError, falling back to the generic
// message when the server did not provide one.
func NewOpinionsFetchError(message string, status int, err error) *OpinionsFetchError {
	if message == "" {
		message = DefaultOpinionsErrorMessage
	}
	return &OpinionsFetchError{Message: message, StatusCode: status, Err: err}
}
