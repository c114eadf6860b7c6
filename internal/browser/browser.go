// Package browser is the narrow view of a web browser that a verification scenario needs.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned when a page or browser is used after it was closed
var ErrClosed = errors.New("browser closed")

// Launcher acquires a browser
type Launcher interface {
	// Launch starts or connects to a browser. The caller owns the returned Browser and must Close it.
	Launch(ctx context.Context) (Browser, error)
}

// Browser is a running browser instance
type Browser interface {
	// NewPage opens a blank page
	NewPage(ctx context.Context) (Page, error)

	// Close releases the browser and any process started for it
	Close() error
}

// Page is a single browser tab
type Page interface {
	// Navigate loads url and waits for the load event
	Navigate(ctx context.Context, url string) error

	// Now returns Date.now() as seen by the page
	Now(ctx context.Context) (int64, error)

	// Fill replaces the value of the input matching selector
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the element matching selector
	Click(ctx context.Context, selector string) error

	// Probe reports the current state of the element matching selector without waiting
	Probe(ctx context.Context, selector string) (ElementState, error)

	// Screenshot captures the viewport as a PNG
	Screenshot(ctx context.Context) ([]byte, error)
}

// ElementState is a point-in-time view of an element
type ElementState struct {
	Found   bool
	Visible bool
	Text    string
}

// NavigationError is returned when a page could not be loaded
type NavigationError struct {
	URL    string
	Reason string
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("could not navigate to %s: %s", e.URL, e.Reason)
	}

	return fmt.Sprintf("could not navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
