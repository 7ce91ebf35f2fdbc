// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar-based amount of time.
type Period struct {
	Years  int
	Months int
	Days   int
}

// String formats the period as an ISO 8601 period, like "P1Y2M3D".
func (p Period) String() string {
	if p == (Period{}) {
		return "P0D"
	}
	sb := new(strings.Builder)
	sb.WriteString("P")
	if p.Years != 0 {
		fmt.Fprintf(sb, "%dY", p.Years)
	}
	if p.Months != 0 {
		fmt.Fprintf(sb, "%dM", p.Months)
	}
	if p.Days != 0 {
		fmt.Fprintf(sb, "%dD", p.Days)
	}
	return sb.String()
}

// BinaryDateTimeFunction is embedded by date functions of two arguments
// that operate on a timestamp in a fixed time zone.
// The first argument adjusts the second, which is the timestamp.
type BinaryDateTimeFunction struct {
	source    Source
	name      string
	argument  Expression
	timestamp Expression
	zone      *time.Location
}

func newBinaryDateTimeFunction(source Source, name string, argument, timestamp Expression) BinaryDateTimeFunction {
	return BinaryDateTimeFunction{
		source:    source,
		name:      name,
		argument:  argument,
		timestamp: timestamp,
		zone:      time.UTC,
	}
}

func (f *BinaryDateTimeFunction) Source() Source         { return f.source }
func (f *BinaryDateTimeFunction) DataType() DataType     { return Datetime }
func (f *BinaryDateTimeFunction) Nullable() Nullability  { return nullableOf(f.argument, f.timestamp) }
func (f *BinaryDateTimeFunction) Foldable() bool         { return allFoldable(f.argument, f.timestamp) }
func (f *BinaryDateTimeFunction) Argument() Expression   { return f.argument }
func (f *BinaryDateTimeFunction) ZoneID() *time.Location { return f.zone }

func (f *BinaryDateTimeFunction) Children() []Expression {
	return []Expression{f.argument, f.timestamp}
}

// TimestampField returns the timestamp the function operates on.
func (f *BinaryDateTimeFunction) TimestampField() Expression {
	return f.timestamp
}

func (f *BinaryDateTimeFunction) String() string {
	return strings.ToUpper(f.name) + "(" + f.argument.String() + ", " + f.timestamp.String() + ")"
}

func (f *BinaryDateTimeFunction) equal(other *BinaryDateTimeFunction) bool {
	return f.name == other.name &&
		f.zone.String() == other.zone.String() &&
		Equal(f.argument, other.argument) &&
		Equal(f.timestamp, other.timestamp)
}

func (f *BinaryDateTimeFunction) resolveTimestamp() TypeResolution {
	return IsType(f.timestamp, func(t DataType) bool { return t == Datetime }, f.source.Text, SecondOrdinal, "datetime")
}

// DateTrunc rounds a timestamp down to the closest multiple of an interval.
type DateTrunc struct {
	BinaryDateTimeFunction
}

// NewDateTrunc returns a new DATE_TRUNC(interval, timestamp) call.
func NewDateTrunc(source Source, interval, timestamp Expression) *DateTrunc {
	return &DateTrunc{newBinaryDateTimeFunction(source, "date_trunc", interval, timestamp)}
}

// ReplaceChildren returns a DATE_TRUNC of the new interval and timestamp
// in the same time zone.
func (f *DateTrunc) ReplaceChildren(children []Expression) Expression {
	checkChildren(f, children, 2)
	f2 := NewDateTrunc(f.source, children[0], children[1])
	f2.zone = f.zone
	return f2
}

// Interval returns the interval the timestamp is rounded to.
func (f *DateTrunc) Interval() Expression { return f.argument }

func (f *DateTrunc) Resolved() bool {
	return allResolved(f.argument, f.timestamp) && f.ResolveType().Resolved()
}

// ResolveType type checks the function's arguments.
func (f *DateTrunc) ResolveType() TypeResolution {
	if !allResolved(f.argument, f.timestamp) {
		return NewTypeResolution("Unresolved children")
	}
	return IsType(f.argument, DataType.IsTemporalAmount, f.source.Text, FirstOrdinal, "date_period", "time_duration").
		And(f.resolveTimestamp())
}

// Equal reports whether e truncates the same timestamp to the same interval.
func (f *DateTrunc) Equal(e Expression) bool {
	other, ok := e.(*DateTrunc)
	return ok && f.equal(&other.BinaryDateTimeFunction)
}

// Fold truncates a constant timestamp.
func (f *DateTrunc) Fold() (any, error) {
	interval, err := Fold(f.argument)
	if err != nil {
		return nil, err
	}
	ts, err := Fold(f.timestamp)
	if err != nil {
		return nil, err
	}
	if interval == nil || ts == nil {
		return nil, nil
	}
	t, ok := ts.(time.Time)
	if !ok {
		return nil, fmt.Errorf("%s: timestamp is a %T", f.source.Text, ts)
	}
	t = t.In(f.zone)
	switch interval := interval.(type) {
	case time.Duration:
		if interval <= 0 {
			return nil, fmt.Errorf("%s: zero or negative time interval is not supported", f.source.Text)
		}
		ms := t.UnixMilli()
		if step := interval.Milliseconds(); step > 0 {
			ms = floorDiv(ms, step) * step
		}
		return time.UnixMilli(ms).In(t.Location()), nil
	case Period:
		return truncatePeriod(t, interval)
	default:
		return nil, fmt.Errorf("%s: interval is a %T", f.source.Text, interval)
	}
}

func truncatePeriod(t time.Time, p Period) (time.Time, error) {
	switch {
	case p.Years > 0 && p.Months == 0 && p.Days == 0:
		year := int(floorDiv(int64(t.Year()), int64(p.Years))) * p.Years
		return time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location()), nil
	case p.Years == 0 && p.Months > 0 && p.Days == 0:
		months := int64(t.Year())*12 + int64(t.Month()) - 1
		months = floorDiv(months, int64(p.Months)) * int64(p.Months)
		year := floorDiv(months, 12)
		return time.Date(int(year), time.Month(months-year*12+1), 1, 0, 0, 0, 0, t.Location()), nil
	case p.Years == 0 && p.Months == 0 && p.Days > 0:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		if p.Days == 1 {
			return day, nil
		}
		_, offset := day.Zone()
		days := floorDiv(day.Unix()+int64(offset), 86400)
		days = floorDiv(days, int64(p.Days)) * int64(p.Days)
		y, m, d := time.Unix(days*86400, 0).UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("time interval %v must be a whole number of years, months, or days", p)
	}
}

// floorDiv divides a by b, rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// DateExtract extracts a part of a timestamp, like its year or hour.
type DateExtract struct {
	BinaryDateTimeFunction
}

// NewDateExtract returns a new DATE_EXTRACT(part, timestamp) call.
func NewDateExtract(source Source, part, timestamp Expression) *DateExtract {
	return &DateExtract{newBinaryDateTimeFunction(source, "date_extract", part, timestamp)}
}

func (f *DateExtract) ReplaceChildren(children []Expression) Expression {
	checkChildren(f, children, 2)
	f2 := NewDateExtract(f.source, children[0], children[1])
	f2.zone = f.zone
	return f2
}

// DataType returns [Long]: the extracted part is a number, not a timestamp.
func (f *DateExtract) DataType() DataType { return Long }

func (f *DateExtract) Resolved() bool {
	return allResolved(f.argument, f.timestamp) && f.ResolveType().Resolved()
}

// ResolveType type checks the function's arguments.
func (f *DateExtract) ResolveType() TypeResolution {
	if !allResolved(f.argument, f.timestamp) {
		return NewTypeResolution("Unresolved children")
	}
	r := IsString(f.argument, f.source.Text, FirstOrdinal).And(f.resolveTimestamp())
	if !r.Resolved() {
		return r
	}
	if part, ok := FoldString(f.argument); ok {
		if _, known := dateParts[strings.ToLower(part)]; !known {
			return NewTypeResolution("first argument of [%s] has invalid value [%s]", f.source.Text, part)
		}
	}
	return TypeResolved
}

// Equal reports whether e extracts the same part of the same timestamp.
func (f *DateExtract) Equal(e Expression) bool {
	other, ok := e.(*DateExtract)
	return ok && f.equal(&other.BinaryDateTimeFunction)
}

// Fold extracts the part of a constant timestamp.
func (f *DateExtract) Fold() (any, error) {
	part, err := Fold(f.argument)
	if err != nil {
		return nil, err
	}
	ts, err := Fold(f.timestamp)
	if err != nil {
		return nil, err
	}
	if part == nil || ts == nil {
		return nil, nil
	}
	name, _ := part.(string)
	extract := dateParts[strings.ToLower(name)]
	if extract == nil {
		return nil, fmt.Errorf("%s: unknown date part %q", f.source.Text, name)
	}
	t, ok := ts.(time.Time)
	if !ok {
		return nil, fmt.Errorf("%s: timestamp is a %T", f.source.Text, ts)
	}
	return extract(t.In(f.zone)), nil
}

var dateParts = map[string]func(time.Time) int64{
	"year":             func(t time.Time) int64 { return int64(t.Year()) },
	"month_of_year":    func(t time.Time) int64 { return int64(t.Month()) },
	"day_of_month":     func(t time.Time) int64 { return int64(t.Day()) },
	"day_of_year":      func(t time.Time) int64 { return int64(t.YearDay()) },
	"hour_of_day":      func(t time.Time) int64 { return int64(t.Hour()) },
	"minute_of_hour":   func(t time.Time) int64 { return int64(t.Minute()) },
	"second_of_minute": func(t time.Time) int64 { return int64(t.Second()) },
	"milli_of_second":  func(t time.Time) int64 { return int64(t.Nanosecond() / 1e6) },
	"epoch_day":        func(t time.Time) int64 { return t.Unix() / 86400 },
	"day_of_week": func(t time.Time) int64 {
		// Monday is 1, Sunday is 7.
		if t.Weekday() == time.Sunday {
			return 7
		}
		return int64(t.Weekday())
	},
}
