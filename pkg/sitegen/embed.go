package sitegen

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embeddedTemplates embed.FS

// Templates exposes the embedded template tree rooted at "templates".
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
