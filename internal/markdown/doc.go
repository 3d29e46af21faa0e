// Package markdown turns Markdown files into publishable documents: it parses
// front matter, renders bodies to HTML, lifts embedded diagram definitions
// into passthrough containers for a client-side viewer, and imports the
// results into the posts store.
package markdown
