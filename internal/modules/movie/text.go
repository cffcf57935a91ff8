package movie

import "html"

// escapeText stores free text in its HTML-escaped form. Angle brackets are
// rejected earlier by validation, so this only ever rewrites & ' and ".
func escapeText(s string) string {
	return html.EscapeString(s)
}
