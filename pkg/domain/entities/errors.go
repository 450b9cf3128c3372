package entities

import "errors"

var (
	// ErrNoSelection is returned when an item index is missing or out of range
	ErrNoSelection = errors.New("no item selected")
	// ErrNoCurrentQuote is returned when an operation needs a current quote and there is none
	ErrNoCurrentQuote = errors.New("no current quote")
	// ErrInvalidQuotePayload is returned when an import file is not a quote record
	ErrInvalidQuotePayload = errors.New("file does not appear to be a valid quote")
	// ErrQuoteNotFound is returned when no stored quote has the requested id
	ErrQuoteNotFound = errors.New("quote not found")
)
