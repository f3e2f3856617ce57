package xml

import (
	"strings"

	"github.com/beevik/etree"
)

// OccurrencesResponse lists expanded dates:
//
//	<occurrences xmlns="urn:x-librecur:recurrence">
//	  <date>2025-01-06</date>
//	</occurrences>
type OccurrencesResponse struct {
	Dates []string
}

// Parse parses an occurrences response from an XML document
func (r *OccurrencesResponse) Parse(doc *etree.Document) error {
	root, err := rootElement(doc, TagOccurrences)
	if err != nil {
		return err
	}

	r.Dates = []string{}
	for _, date := range root.SelectElements(TagDate) {
		r.Dates = append(r.Dates, strings.TrimSpace(date.Text()))
	}
	return nil
}

// ToXML converts an OccurrencesResponse to an XML document
func (r *OccurrencesResponse) ToXML() *etree.Document {
	doc := etree.NewDocument()
	root := createRoot(doc, TagOccurrences)
	for _, date := range r.Dates {
		addText(root, TagDate, date)
	}
	return doc
}

// ErrorResponse carries an error message
type ErrorResponse struct {
	Message string
}

// Parse parses an error response from an XML document
func (r *ErrorResponse) Parse(doc *etree.Document) error {
	root, err := rootElement(doc, TagError)
	if err != nil {
		return err
	}
	r.Message, _ = childText(root, TagMessage)
	return nil
}

// ToXML converts an ErrorResponse to an XML document
func (r *ErrorResponse) ToXML() *etree.Document {
	doc := etree.NewDocument()
	root := createRoot(doc, TagError)
	addText(root, TagMessage, r.Message)
	return doc
}
