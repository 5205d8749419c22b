// Package views содержит HTML-страницы, встроенные в бинарник.
package views

import _ "embed"

// Index - стартовая страница.
//
//go:embed index.html
var Index []byte

// NotFound - страница 404.
//
//go:embed 404.html
var NotFound []byte
