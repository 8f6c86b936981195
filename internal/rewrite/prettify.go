package rewrite

import (
	"encoding/xml"

	"github.com/beevik/etree"
)

// Prettify indents a storage body for reading in an editor view. Storage
// bodies are XML fragments with HTML entities, undeclared namespace prefixes
// and possibly several root elements, so the read is permissive; any failure
// returns the input unchanged.
func Prettify(storage string) string {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	doc.ReadSettings.AutoClose = xml.HTMLAutoClose
	doc.ReadSettings.Entity = xml.HTMLEntity

	if err := doc.ReadFromString(storage); err != nil {
		return storage
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return storage
	}
	return out
}
