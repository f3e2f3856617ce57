package xml

import (
	"regexp"
	"strings"
)

var (
	xmlDeclaration = regexp.MustCompile(`<\?xml[^>]*\?>`)
	interElementWS = regexp.MustCompile(`>\s+<`)
)

// normalizeXML drops the declaration and whitespace between elements for test comparisons
func normalizeXML(s string) string {
	s = xmlDeclaration.ReplaceAllString(s, "")
	s = interElementWS.ReplaceAllString(s, "><")
	return strings.TrimSpace(s)
}
