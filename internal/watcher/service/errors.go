package service

import "errors"

var (
	// ErrStockNotFound means the requested name/code resolved to no listing.
	ErrStockNotFound = errors.New("stock not found")
	// ErrAlreadyWatching means the stock already has a watching entry.
	ErrAlreadyWatching = errors.New("stock already watching")
	// ErrWatchlistNotFound means no matching watchlist entry exists.
	ErrWatchlistNotFound = errors.New("watchlist entry not found")
	// ErrQuoteUnavailable means the quote source could not supply a price.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrInvalidBaselinePrice means the day-0 low price is not positive, so
	// the entry cannot be enrolled.
	ErrInvalidBaselinePrice = errors.New("invalid baseline price")
)
