// Package sanitize cleans untrusted request values before they are sent
// to the automation API.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var (
	whitespaceRun   = regexp.MustCompile(`[\r\n\t ]+`)
	spaceRun        = regexp.MustCompile(` +`)
	percentEncoding = regexp.MustCompile(`(?i)%[a-f0-9]{2}`)
	entityPrefix    = regexp.MustCompile(`^&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#[xX][0-9a-fA-F]+);`)
)

// Key keeps only a-z, 0-9, underscore and dash. Only ASCII letters are
// lowercased, anything else outside the set is dropped.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteByte(c)
		}
	}
	return b.String()
}

// TextField reduces s to a single line of plain text: markup and
// percent-encoded octets are removed, whitespace is collapsed and the
// result is trimmed. Invalid UTF-8 yields "".
func TextField(s string) string {
	if !utf8.ValidString(s) {
		return ""
	}

	if strings.Contains(s, "<") {
		s = stripTags(escapeLoneLessThan(s))
	}

	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	found := false
	for percentEncoding.MatchString(s) {
		s = percentEncoding.ReplaceAllString(s, "")
		found = true
	}
	if found {
		s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	}
	return s
}

// escapeLoneLessThan HTML-escapes every "<" that is not closed by a ">"
// before the next "<", so "a < b" survives tag stripping as "a &lt; b".
func escapeLoneLessThan(s string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i:]

		end := strings.IndexAny(s[1:], "<>")
		if end >= 0 && s[1+end] == '>' {
			b.WriteString(s[:end+2])
			s = s[end+2:]
			continue
		}

		seg := s
		if end >= 0 {
			seg = s[:end+1]
		}
		escapeText(&b, seg)
		s = s[len(seg):]
	}
}

// escapeText writes s with <, >, quotes and bare ampersands escaped.
// Existing entities are left alone.
func escapeText(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#039;")
		case '&':
			if entityPrefix.MatchString(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		default:
			b.WriteByte(c)
		}
	}
}

// stripTags drops every tag and the contents of script and style elements.
// Text is kept as written, entities are not decoded.
func stripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Raw())
			}
		case html.StartTagToken:
			if isRawTextElement(z) {
				skip++
			}
		case html.EndTagToken:
			if skip > 0 && isRawTextElement(z) {
				skip--
			}
		}
	}
}

func isRawTextElement(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	tag := string(name)
	return tag == "script" || tag == "style"
}
