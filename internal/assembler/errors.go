package assembler

import (
	"errors"
	"fmt"
)

// Fatal assembly failures. They abort the job and are reported with a
// "Fatal error: " prefix.
var (
	ErrEmptyBook      = errors.New("no pages to create PDF")
	ErrNoValidPages   = errors.New("no valid image pages found")
	ErrAllPagesFailed = errors.New("every page failed to load")
)

// Stage is where a page failed.
type Stage string

const (
	StageLoad  Stage = "load"  // fetch or decode
	StagePlace Stage = "place" // adding the image to the document
)

// PageError is a non-fatal failure of one page. The page is skipped and the
// job continues.
type PageError struct {
	Index int // 1-based position among the valid pages
	Ref   string
	Stage Stage
	Err   error
}

func (e *PageError) Error() string {
	if e.Stage == StageLoad {
		return "Failed to load image: " + e.Ref
	}
	return fmt.Sprintf("Error processing page %d: %v", e.Index, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
