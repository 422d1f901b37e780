package dateval

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Parser turns input text into Values using a list of patterns. The first
// pattern that matches wins.
type Parser struct {
	Patterns []string
	Location *time.Location
	Locale   *Locale
	// Strict requires literals to match exactly and the whole input to be
	// consumed. Lenient parsing treats any separator run as matching any
	// other and ignores trailing text.
	Strict bool
	// Now supplies the reference time for fields the pattern omits.
	// time.Now is used when nil.
	Now func() time.Time
}

// Parse returns an invalid Value when no pattern matches; it never fails
// with an error so that parse failures surface as validation errors.
func (p Parser) Parse(text string) Value {
	text = strings.TrimSpace(text)
	if text == "" {
		return Invalid()
	}
	l := p.Locale
	if l == nil {
		l = DefaultLocale()
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	for _, pattern := range p.Patterns {
		f, ok := scan(text, tokenize(l.ExpandLongDateFormat(pattern)), l, p.Strict)
		if !ok {
			continue
		}
		if t, ok := f.time(now().In(loc), loc); ok {
			return FromTime(t, l)
		}
	}
	return Invalid()
}

// Parse is a convenience wrapper for a lenient single-pattern Parser.
func Parse(text, pattern string, loc *time.Location, l *Locale) Value {
	return Parser{Patterns: []string{pattern}, Location: loc, Locale: l}.Parse(text)
}

type fields struct {
	year, month, day     int
	hour, minute, second int
	haveYear, haveMonth  bool
	haveDay              bool
	meridiem             int // 0 none, 1 am, 2 pm
	offset               *int
	unix                 *time.Time
}

func (f *fields) time(now time.Time, loc *time.Location) (time.Time, bool) {
	if f.unix != nil {
		return f.unix.In(loc), true
	}
	// Leading unset date fields default to today, later ones to the start
	// of their range: "10:30" is today, "2021" is Jan 1 2021.
	ny, nm, nd := now.Date()
	year, month, day := f.year, f.month, f.day
	switch {
	case f.haveYear:
		if !f.haveMonth {
			month = 1
		}
		if !f.haveDay {
			day = 1
		}
	case f.haveMonth:
		year = ny
		if !f.haveDay {
			day = 1
		}
	case f.haveDay:
		year, month = ny, int(nm)
	default:
		year, month, day = ny, int(nm), nd
	}
	hour := f.hour
	switch f.meridiem {
	case 1:
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case 2:
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour != 12 {
			hour += 12
		}
	}
	if month < 1 || month > 12 || day < 1 || day > DaysIn(year, time.Month(month)) ||
		hour < 0 || hour > 23 || f.minute < 0 || f.minute > 59 || f.second < 0 || f.second > 59 {
		return time.Time{}, false
	}
	zone := loc
	if f.offset != nil {
		zone = time.FixedZone("", *f.offset)
	}
	t := time.Date(year, time.Month(month), day, hour, f.minute, f.second, 0, zone)
	return t.In(loc), true
}

type scanner struct {
	in     string
	pos    int
	strict bool
}

func (s *scanner) rest() string { return s.in[s.pos:] }

func (s *scanner) digits(minN, maxN int) (int, bool) {
	start := s.pos
	for s.pos < len(s.in) && s.pos-start < maxN && s.in[s.pos] >= '0' && s.in[s.pos] <= '9' {
		s.pos++
	}
	if s.pos-start < minN {
		s.pos = start
		return 0, false
	}
	n, err := strconv.Atoi(s.in[start:s.pos])
	return n, err == nil
}

// oneOf consumes the longest case-insensitive match among names and
// returns its index.
func (s *scanner) oneOf(names []string) (int, bool) {
	best, bestLen := -1, 0
	rest := strings.ToLower(s.rest())
	for i, n := range names {
		ln := strings.ToLower(n)
		if len(ln) > bestLen && strings.HasPrefix(rest, ln) {
			best, bestLen = i, len(ln)
		}
	}
	if best < 0 {
		return 0, false
	}
	s.pos += bestLen
	return best, true
}

func (s *scanner) literal(lit string, keepSign bool) bool {
	if s.strict {
		if !strings.HasPrefix(s.rest(), lit) {
			return false
		}
		s.pos += len(lit)
		return true
	}
	// Lenient: separators match any run of separators, letters must match.
	for _, r := range lit {
		if isAlnum(r) {
			s.skipSeparators(false)
			rr, size := utf8.DecodeRuneInString(s.rest())
			if unicode.ToLower(rr) != unicode.ToLower(r) {
				return false
			}
			s.pos += size
		}
	}
	s.skipSeparators(keepSign)
	return true
}

// skipSeparators advances past punctuation and spaces. A leading sign is
// kept when keepSign is set so signed years and zone offsets survive.
func (s *scanner) skipSeparators(keepSign bool) {
	for s.pos < len(s.in) {
		r, size := utf8.DecodeRuneInString(s.rest())
		if isAlnum(r) || keepSign && (r == '+' || r == '-') {
			return
		}
		s.pos += size
	}
}

func signed(tok token) bool {
	return !tok.literal && (tok.text == "Z" || tok.text == "ZZ" || tok.text == "Y")
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func scan(text string, toks []token, l *Locale, strict bool) (*fields, bool) {
	s := &scanner{in: text, strict: strict}
	f := &fields{}
	width := func(n int) int {
		if strict {
			return n
		}
		return 1
	}
	for i, tok := range toks {
		if tok.literal {
			keepSign := i+1 < len(toks) && signed(toks[i+1])
			if !s.literal(tok.text, keepSign) {
				return nil, false
			}
			continue
		}
		if !strict {
			s.skipSeparators(signed(tok))
		}
		var ok bool
		switch tok.text {
		case "YYYY":
			f.year, ok = s.digits(width(4), 4)
			f.haveYear = true
		case "Y":
			neg := strings.HasPrefix(s.rest(), "-")
			if neg || strings.HasPrefix(s.rest(), "+") {
				s.pos++
			}
			f.year, ok = s.digits(1, 6)
			if neg {
				f.year = -f.year
			}
			f.haveYear = true
		case "YY":
			var yy int
			yy, ok = s.digits(2, 2)
			f.year = 2000 + yy
			if yy > 68 {
				f.year = 1900 + yy
			}
			f.haveYear = true
		case "MMMM", "MMM":
			var i int
			names := append(append([]string{}, l.Months[:]...), l.MonthsShort[:]...)
			i, ok = s.oneOf(names)
			f.month = i%12 + 1
			f.haveMonth = true
		case "MM", "M":
			f.month, ok = s.digits(width(len(tok.text)), 2)
			f.haveMonth = true
		case "DD", "D":
			f.day, ok = s.digits(width(len(tok.text)), 2)
			f.haveDay = true
		case "Do":
			f.day, ok = s.digits(1, 2)
			for s.pos < len(s.in) {
				r, size := utf8.DecodeRuneInString(s.rest())
				if unicode.IsDigit(r) || unicode.IsSpace(r) || !(unicode.IsLetter(r) || r == '.') {
					break
				}
				s.pos += size
			}
			f.haveDay = true
		case "dddd", "ddd", "dd":
			names := append(append(append([]string{}, l.Weekdays[:]...), l.WeekdaysShort[:]...), l.WeekdaysMin[:]...)
			_, ok = s.oneOf(names)
		case "d":
			_, ok = s.digits(1, 1)
		case "HH", "H", "hh", "h":
			f.hour, ok = s.digits(width(len(tok.text)), 2)
		case "mm", "m":
			f.minute, ok = s.digits(width(len(tok.text)), 2)
		case "ss", "s":
			f.second, ok = s.digits(width(len(tok.text)), 2)
		case "A", "a":
			var i int
			i, ok = s.oneOf([]string{l.Meridiem[0], l.Meridiem[1], "am", "pm"})
			f.meridiem = i%2 + 1
		case "Z", "ZZ":
			ok = s.zone(f)
		case "X", "x":
			var n int
			start := s.pos
			n, ok = s.digits(1, 19)
			if ok {
				var t time.Time
				if tok.text == "X" {
					t = time.Unix(int64(n), 0)
				} else {
					t = time.UnixMilli(int64(n))
				}
				f.unix = &t
			} else {
				s.pos = start
			}
		}
		if !ok {
			return nil, false
		}
	}
	if strict && strings.TrimSpace(s.rest()) != "" {
		return nil, false
	}
	return f, true
}

func (s *scanner) zone(f *fields) bool {
	rest := s.rest()
	if strings.HasPrefix(rest, "Z") || strings.HasPrefix(rest, "z") {
		s.pos++
		zero := 0
		f.offset = &zero
		return true
	}
	if rest == "" || (rest[0] != '+' && rest[0] != '-') {
		return false
	}
	sign := 1
	if rest[0] == '-' {
		sign = -1
	}
	s.pos++
	hh, ok := s.digits(2, 2)
	if !ok {
		return false
	}
	if strings.HasPrefix(s.rest(), ":") {
		s.pos++
	}
	mm, ok := s.digits(2, 2)
	if !ok {
		return false
	}
	off := sign * (hh*3600 + mm*60)
	f.offset = &off
	return true
}
