// Package assets bundles the static files the service ships with: the form
// schema, the intervention library, glossary, FAQ, data summaries and the
// assessment instruction PDFs.
package assets

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed schema.yaml data pdfs
var embedded embed.FS

// SchemaPath is the location of the form schema inside the asset tree.
const SchemaPath = "schema.yaml"

// FS returns the asset tree. A non-empty dir replaces the embedded copy.
func FS(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return embedded
}
