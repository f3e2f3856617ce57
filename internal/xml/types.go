package xml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Tag names of recurrence documents
const (
	TagExpand         = "expand"
	TagRule           = "rule"
	TagFrequency      = "frequency"
	TagInterval       = "interval"
	TagStartDate      = "start-date"
	TagEndDate        = "end-date"
	TagMaxOccurrences = "max-occurrences"
	TagExcludedDate   = "excluded-date"
	TagDayOfWeek      = "day-of-week"
	TagDayOfMonth     = "day-of-month"
	TagRangeStart     = "range-start"
	TagRangeEnd       = "range-end"
	TagOccurrences    = "occurrences"
	TagDate           = "date"
	TagError          = "error"
	TagMessage        = "message"
)

// ErrEmptyDocument is returned when a document has no root element
var ErrEmptyDocument = errors.New("empty document")

// UnexpectedElementError reports a document whose root is not the expected element
type UnexpectedElementError struct {
	Want string
	Got  string
}

func (e *UnexpectedElementError) Error() string {
	return fmt.Sprintf("invalid root tag: %s, expected %s", e.Got, e.Want)
}

// childText returns the trimmed text of the first child named tag
func childText(parent *etree.Element, tag string) (string, bool) {
	child := parent.SelectElement(tag)
	if child == nil {
		return "", false
	}
	return strings.TrimSpace(child.Text()), true
}

func childInt(parent *etree.Element, tag string) (int, bool, error) {
	text, ok := childText(parent, tag)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", tag, text, err)
	}
	return n, true, nil
}

func addText(parent *etree.Element, tag, text string) {
	parent.CreateElement(tag).SetText(text)
}
