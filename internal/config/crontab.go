package config

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/kurtosis-tech/stacktrace"
)

// FieldKind tags the shape of a single crontab field.
type FieldKind int

const (
	// Any matches every tick.
	Any FieldKind = iota
	// Exact matches iff the field equals a single value.
	Exact
	// Set matches iff the field equals any of a list of values, in the
	// order they were parsed (order matters for equality, not matching).
	Set
)

// FieldName identifies which of the five crontab columns a FieldSpec
// belongs to, used for moduli and error messages.
type FieldName int

const (
	Minute FieldName = iota
	Hour
	DayOfMonth
	Month
	DayOfWeek
)

func (n FieldName) String() string {
	switch n {
	case Minute:
		return "minute"
	case Hour:
		return "hour"
	case DayOfMonth:
		return "day-of-month"
	case Month:
		return "month"
	case DayOfWeek:
		return "day-of-week"
	default:
		return "unknown"
	}
}

// modulus returns the exclusive upper bound of legal values for a field.
func (n FieldName) modulus() uint {
	switch n {
	case Minute:
		return 60
	case Hour:
		return 24
	case DayOfMonth:
		return 31
	case Month:
		return 12
	case DayOfWeek:
		return 7
	default:
		return 0
	}
}

// FieldSpec is the match predicate for one of the five crontab time fields.
type FieldSpec struct {
	Kind   FieldKind
	Exact  uint
	Values []uint // only meaningful when Kind == Set; parse order preserved
}

// Match reports whether the field's current value satisfies the spec.
func (f FieldSpec) Match(value uint) bool {
	switch f.Kind {
	case Any:
		return true
	case Exact:
		return value == f.Exact
	case Set:
		for _, v := range f.Values {
			if v == value {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// IsAny reports whether this spec is the wildcard Any.
func (f FieldSpec) IsAny() bool {
	return f.Kind == Any
}

func (f FieldSpec) String() string {
	switch f.Kind {
	case Any:
		return "*"
	case Exact:
		return strconv.FormatUint(uint64(f.Exact), 10)
	case Set:
		parts := make([]string, len(f.Values))
		for i, v := range f.Values {
			parts[i] = strconv.FormatUint(uint64(v), 10)
		}
		return strings.Join(parts, ",")
	default:
		return "?"
	}
}

// parseField parses a single crontab field token against the given field's
// modulus, producing Any, Exact, or an eagerly-expanded Set for "*/k".
func parseField(name FieldName, token string) (FieldSpec, error) {
	modulus := name.modulus()

	if token == "*" {
		return FieldSpec{Kind: Any}, nil
	}

	if strings.HasPrefix(token, "*/") {
		kStr := strings.TrimPrefix(token, "*/")
		k, err := strconv.ParseUint(kStr, 10, 64)
		if err != nil || k == 0 {
			return FieldSpec{}, stacktrace.NewError("invalid step value in field %q for %s", token, name)
		}
		var values []uint
		for v := uint64(k); v < uint64(modulus); v += k {
			values = append(values, uint(v))
		}
		return FieldSpec{Kind: Set, Values: values}, nil
	}

	if strings.Contains(token, ",") {
		parts := strings.Split(token, ",")
		values := make([]uint, 0, len(parts))
		for _, p := range parts {
			v, err := parseUintField(name, p, modulus)
			if err != nil {
				return FieldSpec{}, err
			}
			values = append(values, v)
		}
		return FieldSpec{Kind: Set, Values: values}, nil
	}

	v, err := parseUintField(name, token, modulus)
	if err != nil {
		return FieldSpec{}, err
	}
	return FieldSpec{Kind: Exact, Exact: v}, nil
}

func parseUintField(name FieldName, token string, modulus uint) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(token), 10, 64)
	if err != nil {
		return 0, stacktrace.Propagate(err, "invalid value %q for %s", token, name)
	}
	if uint(n) >= modulus {
		return 0, stacktrace.NewError("value %d out of range for %s (modulus %d)", n, name, modulus)
	}
	return uint(n), nil
}

// CrontabEntry is a parsed line of the crontab file: five FieldSpecs plus
// the command to run when they all match.
type CrontabEntry struct {
	Minute     FieldSpec
	Hour       FieldSpec
	DayOfMonth FieldSpec
	Month      FieldSpec
	DayOfWeek  FieldSpec
	Command    string
}

// Validate enforces the classic-cron-OR-semantics prohibition: it is an
// error for both day-of-month and day-of-week to be non-Any simultaneously.
func (e CrontabEntry) Validate() error {
	if !e.DayOfMonth.IsAny() && !e.DayOfWeek.IsAny() {
		return stacktrace.NewError("crontab entry %q: day-of-month and day-of-week cannot both be restricted (clashing config)", e.Command)
	}
	return nil
}

// parseCrontabLine parses one non-empty crontab line: five
// whitespace-separated fields followed by a command that may itself
// contain spaces.
func parseCrontabLine(line string) (CrontabEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return CrontabEntry{}, stacktrace.NewError("malformed crontab line %q: expected 5 fields and a command", line)
	}

	// Recover the command verbatim (trimmed) rather than re-joining
	// collapsed whitespace: locate it by skipping the first 5
	// whitespace-delimited tokens in the original string.
	rest := line
	for i := 0; i < 5; i++ {
		rest = strings.TrimLeft(rest, " \t")
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			return CrontabEntry{}, stacktrace.NewError("malformed crontab line %q: expected 5 fields and a command", line)
		}
		rest = rest[idx:]
	}
	command := strings.TrimSpace(rest)
	if command == "" {
		return CrontabEntry{}, stacktrace.NewError("malformed crontab line %q: missing command", line)
	}

	minute, err := parseField(Minute, fields[0])
	if err != nil {
		return CrontabEntry{}, err
	}
	hour, err := parseField(Hour, fields[1])
	if err != nil {
		return CrontabEntry{}, err
	}
	dom, err := parseField(DayOfMonth, fields[2])
	if err != nil {
		return CrontabEntry{}, err
	}
	month, err := parseField(Month, fields[3])
	if err != nil {
		return CrontabEntry{}, err
	}
	dow, err := parseField(DayOfWeek, fields[4])
	if err != nil {
		return CrontabEntry{}, err
	}

	entry := CrontabEntry{
		Minute:     minute,
		Hour:       hour,
		DayOfMonth: dom,
		Month:      month,
		DayOfWeek:  dow,
		Command:    command,
	}

	// The day-of-month/day-of-week clash (see Validate) is intentionally
	// NOT enforced here: a clashing entry parses successfully and is
	// rejected later, at cron-task start, so that one bad entry does not
	// take down the whole config load (spec scenario: "startup succeeds,
	// but the cron task for that entry terminates immediately").

	return entry, nil
}

// parseCrontab parses an entire crontab file: one entry per non-empty
// line. Blank lines are skipped; any malformed line is a fatal parse
// error naming the offending line.
func parseCrontab(r io.Reader) ([]CrontabEntry, error) {
	var entries []CrontabEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := parseCrontabLine(line)
		if err != nil {
			return nil, stacktrace.Propagate(err, "crontab line %d", lineNo)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, stacktrace.Propagate(err, "failed reading crontab")
	}

	return entries, nil
}
