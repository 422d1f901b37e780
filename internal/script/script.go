// Package script reads a line-oriented command language that drives a picker
// the way a user would: one widget intent or picker call per line.
package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"datepicker/internal/config"
	"datepicker/internal/picker"
)

// Step is one parsed script line: either a widget intent or a direct call
// on the picker.
type Step struct {
	Intent picker.Intent
	run    func(p *picker.Picker, out io.Writer) error
}

// Exec performs the step on p. Output of inspection commands goes to out.
func (s *Step) Exec(p *picker.Picker, out io.Writer) error {
	if s.Intent != nil {
		return p.Do(s.Intent)
	}
	return s.run(p, out)
}

var simpleIntents = map[string]picker.Intent{
	"next":     picker.Next{},
	"previous": picker.Previous{},
	"prev":     picker.Previous{},
	"switch":   picker.PickerSwitch{},
	"hour+":    picker.IncrementHours{},
	"hour-":    picker.DecrementHours{},
	"minute+":  picker.IncrementMinutes{},
	"minute-":  picker.DecrementMinutes{},
	"second+":  picker.IncrementSeconds{},
	"second-":  picker.DecrementSeconds{},
	"period":   picker.TogglePeriod{},
	"toggle":   picker.TogglePicker{},
	"clear":    picker.ClearAction{},
	"close":    picker.CloseAction{},
	"today":    picker.TodayAction{},
}

// ParseLine reads one script command. Blank lines and lines starting with #
// yield a nil step.
//
// Commands:
//
//	next | previous | switch | hour+ | minute- | period | toggle | ...
//	month 4 | year 2021 | decade 2020 | day 12 [old|new]
//	select-hour 9 | select-minute 30 | select-second 0
//	show | hide | destroy | state
//	set <text> | set@<index> <text> | unset <index> | view <text>
//	option key=value
func ParseLine(line string) (*Step, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	if i, ok := simpleIntents[cmd]; ok {
		if rest != "" {
			return nil, fmt.Errorf("%s takes no argument", cmd)
		}
		return &Step{Intent: i}, nil
	}

	switch cmd {
	case "month", "year", "decade", "select-hour", "select-minute", "select-second":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		return &Step{Intent: numberIntent(cmd, n)}, nil
	case "day":
		d, where, _ := strings.Cut(rest, " ")
		n, err := strconv.Atoi(d)
		if err != nil {
			return nil, fmt.Errorf("day: %w", err)
		}
		sd := picker.SelectDay{Day: n}
		switch strings.TrimSpace(where) {
		case "":
		case "old":
			sd.Offset = -1
		case "new":
			sd.Offset = 1
		default:
			return nil, fmt.Errorf("day: unknown position %q", where)
		}
		return &Step{Intent: sd}, nil
	case "show", "hide", "destroy", "state":
		return &Step{run: func(p *picker.Picker, out io.Writer) error {
			switch cmd {
			case "show":
				p.Show()
			case "hide":
				p.Hide()
			case "destroy":
				p.Destroy()
			case "state":
				fmt.Fprintf(out, "# dates=%q view=%s mode=%s visible=%v\n",
					p.DateString(), p.ViewDate().Time().Format(time.RFC3339), p.ViewMode(), p.Visible())
			}
			return nil
		}}, nil
	case "set":
		return &Step{run: func(p *picker.Picker, _ io.Writer) error {
			_, err := p.SetDate(rest, 0)
			return err
		}}, nil
	case "unset":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("unset: %w", err)
		}
		return &Step{run: func(p *picker.Picker, _ io.Writer) error {
			p.ClearDate(n)
			return nil
		}}, nil
	case "view":
		return &Step{run: func(p *picker.Picker, _ io.Writer) error {
			return p.SetViewDate(rest)
		}}, nil
	case "option":
		key, value, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("option: want key=value, got %q", rest)
		}
		layer, err := config.FromAttributes(url.Values{strings.TrimSpace(key): {strings.TrimSpace(value)}})
		if err != nil {
			return nil, err
		}
		return &Step{run: func(p *picker.Picker, _ io.Writer) error {
			return p.Apply(layer)
		}}, nil
	}

	if idx, ok := strings.CutPrefix(cmd, "set@"); ok {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("set@: %w", err)
		}
		return &Step{run: func(p *picker.Picker, _ io.Writer) error {
			_, err := p.SetDate(rest, n)
			return err
		}}, nil
	}
	return nil, fmt.Errorf("unknown command %q", cmd)
}

func numberIntent(cmd string, n int) picker.Intent {
	switch cmd {
	case "month":
		return picker.SelectMonth{Month: time.Month(n)}
	case "year":
		return picker.SelectYear{Year: n}
	case "decade":
		return picker.SelectDecade{Year: n}
	case "select-hour":
		return picker.SelectHour{Hour: n}
	case "select-minute":
		return picker.SelectMinute{Minute: n}
	}
	return picker.SelectSecond{Second: n}
}

// Run executes r line by line until EOF, the first failing command or ctx
// cancellation. Rejected option values stop the script; rejected dates only
// produce error events.
func Run(ctx context.Context, p *picker.Picker, r io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := ParseLine(sc.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if s == nil {
			continue
		}
		if err := s.Exec(p, out); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}
