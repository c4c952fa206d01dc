package deepai

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("deepai api key is not configured")
	ErrEmptyPrompt       = errors.New("prompt is empty")
	ErrMalformedResponse = errors.New("response has no output_url")
)

// HTTPError is a non-2xx answer from the provider.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("deepai returned status %d: %s", e.StatusCode, e.Body)
}

// NetworkError is a transport failure before any response arrived.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("deepai request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
