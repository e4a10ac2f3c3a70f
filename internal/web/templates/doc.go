// Package templates renders the HTML pages and partials of the web UI.
//
// Components are written in .templ files; run `templ generate` after
// editing them to refresh the *_templ.go files.
package templates
