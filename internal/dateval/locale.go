package dateval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Locale holds the names and long-date patterns used when formatting and
// parsing values.
type Locale struct {
	Tag           language.Tag
	Months        [12]string
	MonthsShort   [12]string
	Weekdays      [7]string
	WeekdaysShort [7]string
	WeekdaysMin   [7]string
	// Meridiem holds the upper-case AM and PM designators.
	Meridiem  [2]string
	WeekStart time.Weekday
	// LongDateFormats maps LT, LTS, L, LL, LLL and LLLL to patterns.
	LongDateFormats map[string]string
	ordinal         func(n int) string
}

// Name returns the BCP 47 name of the locale.
func (l *Locale) Name() string {
	return l.Tag.String()
}

// Ordinal renders n as a day-of-month ordinal ("1st", "1.", "1er").
func (l *Locale) Ordinal(n int) string {
	if l.ordinal == nil {
		return strconv.Itoa(n)
	}
	return l.ordinal(n)
}

// LongDateFormat returns the pattern for a long-date key such as "L" or
// "llll". Lower-case keys are derived from the upper-case pattern with
// abbreviated month and weekday names. ok is false for unknown keys.
func (l *Locale) LongDateFormat(key string) (string, bool) {
	if f, ok := l.LongDateFormats[key]; ok {
		return f, true
	}
	upper := strings.ToUpper(key)
	if upper == key {
		return "", false
	}
	f, ok := l.LongDateFormats[upper]
	if !ok {
		return "", false
	}
	f = strings.ReplaceAll(f, "MMMM", "MMM")
	f = strings.ReplaceAll(f, "dddd", "ddd")
	return f, true
}

var longDateTokenRe = regexp.MustCompile(`(\[[^\[]*\])|(\\)?(LTS|LT|LL?L?L?|l{1,4})`)

// ExpandLongDateFormat replaces long-date placeholders outside of bracketed
// literals with the locale's concrete patterns.
func (l *Locale) ExpandLongDateFormat(pattern string) string {
	return longDateTokenRe.ReplaceAllStringFunc(pattern, func(tok string) string {
		if f, ok := l.LongDateFormat(tok); ok {
			return f
		}
		return tok
	})
}

var (
	english = &Locale{
		Tag: language.AmericanEnglish,
		Months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		MonthsShort:   [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		Weekdays:      [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		WeekdaysShort: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		WeekdaysMin:   [7]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"},
		Meridiem:      [2]string{"AM", "PM"},
		WeekStart:     time.Sunday,
		LongDateFormats: map[string]string{
			"LT":   "h:mm A",
			"LTS":  "h:mm:ss A",
			"L":    "MM/DD/YYYY",
			"LL":   "MMMM D, YYYY",
			"LLL":  "MMMM D, YYYY h:mm A",
			"LLLL": "dddd, MMMM D, YYYY h:mm A",
		},
		ordinal: englishOrdinal,
	}

	britishEnglish = &Locale{
		Tag:           language.BritishEnglish,
		Months:        english.Months,
		MonthsShort:   english.MonthsShort,
		Weekdays:      english.Weekdays,
		WeekdaysShort: english.WeekdaysShort,
		WeekdaysMin:   english.WeekdaysMin,
		Meridiem:      [2]string{"AM", "PM"},
		WeekStart:     time.Monday,
		LongDateFormats: map[string]string{
			"LT":   "HH:mm",
			"LTS":  "HH:mm:ss",
			"L":    "DD/MM/YYYY",
			"LL":   "D MMMM YYYY",
			"LLL":  "D MMMM YYYY HH:mm",
			"LLLL": "dddd, D MMMM YYYY HH:mm",
		},
		ordinal: englishOrdinal,
	}

	german = &Locale{
		Tag: language.German,
		Months: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
		MonthsShort:   [12]string{"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sep.", "Okt.", "Nov.", "Dez."},
		Weekdays:      [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		WeekdaysShort: [7]string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."},
		WeekdaysMin:   [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		Meridiem:      [2]string{"AM", "PM"},
		WeekStart:     time.Monday,
		LongDateFormats: map[string]string{
			"LT":   "HH:mm",
			"LTS":  "HH:mm:ss",
			"L":    "DD.MM.YYYY",
			"LL":   "D. MMMM YYYY",
			"LLL":  "D. MMMM YYYY HH:mm",
			"LLLL": "dddd, D. MMMM YYYY HH:mm",
		},
		ordinal: func(n int) string { return strconv.Itoa(n) + "." },
	}

	french = &Locale{
		Tag: language.French,
		Months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		MonthsShort:   [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		Weekdays:      [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		WeekdaysShort: [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		WeekdaysMin:   [7]string{"di", "lu", "ma", "me", "je", "ve", "sa"},
		Meridiem:      [2]string{"AM", "PM"},
		WeekStart:     time.Monday,
		LongDateFormats: map[string]string{
			"LT":   "HH:mm",
			"LTS":  "HH:mm:ss",
			"L":    "DD/MM/YYYY",
			"LL":   "D MMMM YYYY",
			"LLL":  "D MMMM YYYY HH:mm",
			"LLLL": "dddd D MMMM YYYY HH:mm",
		},
		ordinal: func(n int) string {
			if n == 1 {
				return "1er"
			}
			return strconv.Itoa(n)
		},
	}

	korean = &Locale{
		Tag:           language.Korean,
		Months:        [12]string{"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
		MonthsShort:   [12]string{"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
		Weekdays:      [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"},
		WeekdaysShort: [7]string{"일", "월", "화", "수", "목", "금", "토"},
		WeekdaysMin:   [7]string{"일", "월", "화", "수", "목", "금", "토"},
		Meridiem:      [2]string{"오전", "오후"},
		WeekStart:     time.Sunday,
		LongDateFormats: map[string]string{
			"LT":   "A h:mm",
			"LTS":  "A h:mm:ss",
			"L":    "YYYY.MM.DD.",
			"LL":   "YYYY년 MMMM D일",
			"LLL":  "YYYY년 MMMM D일 A h:mm",
			"LLLL": "YYYY년 MMMM D일 dddd A h:mm",
		},
		ordinal: func(n int) string { return strconv.Itoa(n) + "일" },
	}

	// The first entry is the fallback the matcher reports for unknown tags.
	builtin = []*Locale{english, britishEnglish, german, french, korean}

	matcher = language.NewMatcher(func() []language.Tag {
		tags := make([]language.Tag, len(builtin))
		for i, l := range builtin {
			tags[i] = l.Tag
		}
		return tags
	}())
)

func englishOrdinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// DefaultLocale returns the American English locale.
func DefaultLocale() *Locale {
	return english
}

// LookupLocale resolves a BCP 47 name ("en", "de-AT", "fr_CA") to one of
// the built-in locales. Names that do not match any of them are an error.
func LookupLocale(name string) (*Locale, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), "_", "-")
	if name == "" {
		return english, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", name, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return nil, fmt.Errorf("locale %q is not available", name)
	}
	return builtin[idx], nil
}
