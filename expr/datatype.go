// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import "strings"

// DataType is the type of a value.
type DataType int

// Data types.
const (
	Unsupported DataType = iota
	Null
	Boolean
	Integer
	Long
	UnsignedLong
	Double
	Keyword
	Text
	Datetime
	DatePeriod
	TimeDuration
	IP
	Version
	GeoPoint
	CartesianPoint
	GeoShape
	CartesianShape
)

var dataTypeNames = [...]string{
	Unsupported:    "unsupported",
	Null:           "null",
	Boolean:        "boolean",
	Integer:        "integer",
	Long:           "long",
	UnsignedLong:   "unsigned_long",
	Double:         "double",
	Keyword:        "keyword",
	Text:           "text",
	Datetime:       "datetime",
	DatePeriod:     "date_period",
	TimeDuration:   "time_duration",
	IP:             "ip",
	Version:        "version",
	GeoPoint:       "geo_point",
	CartesianPoint: "cartesian_point",
	GeoShape:       "geo_shape",
	CartesianShape: "cartesian_shape",
}

var dataTypeAliases = map[string]DataType{
	"bool":   Boolean,
	"int":    Integer,
	"string": Keyword,
	"date":   Datetime,
	"ul":     UnsignedLong,
}

// String returns the type's name as written in a query.
func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return dataTypeNames[Unsupported]
	}
	return dataTypeNames[t]
}

// DataTypeByName returns the data type with the given name or alias,
// ignoring case.
func DataTypeByName(name string) (DataType, bool) {
	name = strings.ToLower(name)
	if t, ok := dataTypeAliases[name]; ok {
		return t, true
	}
	for t, typeName := range dataTypeNames {
		if typeName == name && DataType(t) != Unsupported && DataType(t) != Null {
			return DataType(t), true
		}
	}
	return Unsupported, false
}

// IsString reports whether t is a keyword or text type.
func (t DataType) IsString() bool {
	return t == Keyword || t == Text
}

// IsWholeNumber reports whether t is an integral numeric type.
func (t DataType) IsWholeNumber() bool {
	return t == Integer || t == Long || t == UnsignedLong
}

// IsNumeric reports whether t is a numeric type.
func (t DataType) IsNumeric() bool {
	return t.IsWholeNumber() || t == Double
}

// IsTemporalAmount reports whether t is a date period or time duration.
func (t DataType) IsTemporalAmount() bool {
	return t == DatePeriod || t == TimeDuration
}

// commonNumericType returns the type two numeric operands are widened to.
func commonNumericType(a, b DataType) DataType {
	switch {
	case a == Double || b == Double:
		return Double
	case a == UnsignedLong || b == UnsignedLong:
		return UnsignedLong
	case a == Long || b == Long:
		return Long
	default:
		return Integer
	}
}
