package xml

import "github.com/beevik/etree"

// Namespace is the XML namespace of recurrence documents
const Namespace = "urn:x-librecur:recurrence"

// createRoot starts doc with an XML declaration and a root element in Namespace
func createRoot(doc *etree.Document, tag string) *etree.Element {
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(tag)
	root.CreateAttr("xmlns", Namespace)
	return root
}

// rootElement returns the document root after checking its tag. Namespace
// prefixes are ignored.
func rootElement(doc *etree.Document, tag string) (*etree.Element, error) {
	if doc == nil || doc.Root() == nil {
		return nil, ErrEmptyDocument
	}
	root := doc.Root()
	if root.Tag != tag {
		return nil, &UnexpectedElementError{Want: tag, Got: root.Tag}
	}
	return root, nil
}

// ReadDocument parses data into an etree document
func ReadDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return doc, nil
}
