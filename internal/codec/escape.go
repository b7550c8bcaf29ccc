package codec

import "strings"

// Field delimiters of the preset format.
const (
	fieldSep   = ":"
	listSep    = ","
	talentSep  = ";"
	newlineSep = "\n"
)

// Escape tokens. Each replaces one reserved character in free text.
const (
	tokenColon     = "__cl__"
	tokenNewline   = "__n__"
	tokenComma     = "__cm__"
	tokenSemicolon = "__sc__"
)

// escapeOrder is the order tokens are introduced on encode. Decode walks it
// in the same order.
var escapeOrder = [...]struct{ raw, token string }{
	{fieldSep, tokenColon},
	{newlineSep, tokenNewline},
	{listSep, tokenComma},
	{talentSep, tokenSemicolon},
}

// Escape rewrites every reserved character of s to its token.
func Escape(s string) string {
	for _, e := range escapeOrder {
		s = strings.ReplaceAll(s, e.raw, e.token)
	}
	return s
}

// Unescape reverses Escape. It is applied to single fields after splitting,
// so a restored ':' is never seen by the field splitter.
func Unescape(s string) string {
	for _, e := range escapeOrder {
		s = strings.ReplaceAll(s, e.token, e.raw)
	}
	return s
}

// Reversible reports whether s survives Escape followed by Unescape. Text
// that already holds an escape token, or that forms one together with an
// introduced token ("\ncl__"), does not.
func Reversible(s string) bool {
	return Unescape(Escape(s)) == s
}

// containsDelimiter reports whether s holds any raw delimiter.
func containsDelimiter(s string) bool {
	return strings.ContainsAny(s, fieldSep+listSep+talentSep+newlineSep)
}
