// Package sitegen writes the source tree of a Vite + React + Tailwind single
// page app that fronts an agent. Files are rendered from embedded pongo2
// templates; plan components resolve through a Registry, and unknown ones go
// to an optional ComponentWriter before falling back to a placeholder.
package sitegen
