package dateval

import (
	"strconv"
	"strings"

	"github.com/nleeper/goment"
)

const invalidDate = "Invalid date"

type token struct {
	text    string
	literal bool
}

// Longest tokens first so "MMMM" is not read as four "M" tokens.
var patternTokens = []string{
	"YYYY", "YY", "Y",
	"MMMM", "MMM", "MM", "M",
	"Do", "DD", "D",
	"dddd", "ddd", "dd", "d",
	"HH", "H", "hh", "h",
	"mm", "m", "ss", "s",
	"A", "a", "ZZ", "Z", "X", "x",
}

// tokenize splits a pattern into field tokens and literal runs. Bracketed
// text and backslash-escaped characters are literal.
func tokenize(pattern string) []token {
	var out []token
	appendLiteral := func(s string) {
		if n := len(out); n > 0 && out[n-1].literal {
			out[n-1].text += s
			return
		}
		out = append(out, token{text: s, literal: true})
	}
	for i := 0; i < len(pattern); {
		switch c := pattern[i]; {
		case c == '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				appendLiteral(pattern[i:])
				return out
			}
			appendLiteral(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		case c == '\\' && i+1 < len(pattern):
			appendLiteral(pattern[i+1 : i+2])
			i += 2
			continue
		}
		matched := false
		for _, tok := range patternTokens {
			if strings.HasPrefix(pattern[i:], tok) {
				out = append(out, token{text: tok})
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			appendLiteral(pattern[i : i+1])
			i++
		}
	}
	return out
}

// Format renders v using pattern tokens. Long-date placeholders (L, LT, ...)
// are expanded with the value's locale first. Numeric fields are rendered by
// goment; month, weekday, ordinal and meridiem names come from the value's
// locale.
func (v Value) Format(pattern string) string {
	if !v.valid {
		return invalidDate
	}
	g, err := goment.New(v.t)
	if err != nil {
		return invalidDate
	}
	l := v.locale
	var b strings.Builder
	for _, tok := range tokenize(l.ExpandLongDateFormat(pattern)) {
		if tok.literal {
			b.WriteString(tok.text)
			continue
		}
		b.WriteString(v.formatToken(g, tok.text))
	}
	return b.String()
}

func (v Value) formatToken(g *goment.Goment, tok string) string {
	t, l := v.t, v.locale
	switch tok {
	case "YYYY", "YY", "MM", "M", "DD", "D", "HH", "H", "hh", "h", "mm", "m", "ss", "s":
		return g.Format(tok)
	case "Y":
		return strconv.Itoa(t.Year())
	case "MMMM":
		return l.Months[t.Month()-1]
	case "MMM":
		return l.MonthsShort[t.Month()-1]
	case "Do":
		return l.Ordinal(t.Day())
	case "dddd":
		return l.Weekdays[t.Weekday()]
	case "ddd":
		return l.WeekdaysShort[t.Weekday()]
	case "dd":
		return l.WeekdaysMin[t.Weekday()]
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "A":
		return l.Meridiem[t.Hour()/12]
	case "a":
		return strings.ToLower(l.Meridiem[t.Hour()/12])
	case "Z":
		return t.Format("-07:00")
	case "ZZ":
		return t.Format("-0700")
	case "X":
		return strconv.FormatInt(t.Unix(), 10)
	case "x":
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return tok
}
