// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"errors"
	"fmt"
	"strings"
)

// TypeResolution is the outcome of type checking an expression.
// The zero value is a successful resolution.
type TypeResolution struct {
	message string
}

// TypeResolved is a successful resolution.
var TypeResolved = TypeResolution{}

// NewTypeResolution returns a failed resolution with the given message.
func NewTypeResolution(format string, args ...any) TypeResolution {
	return TypeResolution{message: fmt.Sprintf(format, args...)}
}

// Resolved reports whether type checking succeeded.
func (r TypeResolution) Resolved() bool { return r.message == "" }

// Message returns the reason type checking failed.
func (r TypeResolution) Message() string { return r.message }

// And returns r if it failed and other otherwise.
func (r TypeResolution) And(other TypeResolution) TypeResolution {
	if !r.Resolved() {
		return r
	}
	return other
}

// Err returns nil if type checking succeeded
// or an error with the resolution's message if it failed.
func (r TypeResolution) Err() error {
	if r.Resolved() {
		return nil
	}
	return errors.New(r.message)
}

// ParamOrdinal identifies a function argument in type resolution messages.
type ParamOrdinal int

// Parameter ordinals.
const (
	DefaultOrdinal ParamOrdinal = iota
	FirstOrdinal
	SecondOrdinal
	ThirdOrdinal
	FourthOrdinal
	FifthOrdinal
)

var ordinalNames = [...]string{
	FirstOrdinal:  "first",
	SecondOrdinal: "second",
	ThirdOrdinal:  "third",
	FourthOrdinal: "fourth",
	FifthOrdinal:  "fifth",
}

// prefix returns the ordinal as it begins a message, including a trailing space.
func (o ParamOrdinal) prefix() string {
	if o <= DefaultOrdinal || int(o) >= len(ordinalNames) {
		return ""
	}
	return ordinalNames[o] + " "
}

// displayName returns the name of e used in type resolution messages.
func displayName(e Expression) string {
	if named, ok := e.(NamedExpression); ok {
		return named.Name()
	}
	if text := e.Source().Text; text != "" {
		return text
	}
	return e.String()
}

// IsType checks that e's type satisfies pred.
// Null-typed expressions always pass.
// expected is the list of acceptable type names used in the message.
func IsType(e Expression, pred func(DataType) bool, sourceText string, ord ParamOrdinal, expected ...string) TypeResolution {
	if e.DataType() == Null || pred(e.DataType()) {
		return TypeResolved
	}
	return NewTypeResolution("%sargument of [%s] must be [%s], found value [%s] type [%s]",
		ord.prefix(), sourceText, strings.Join(expected, " or "), displayName(e), e.DataType())
}

// IsString checks that e is a string.
func IsString(e Expression, sourceText string, ord ParamOrdinal) TypeResolution {
	return IsType(e, DataType.IsString, sourceText, ord, "string")
}

// IsFoldable checks that e's value is known without any input row.
func IsFoldable(e Expression, sourceText string, ord ParamOrdinal) TypeResolution {
	if e.Foldable() {
		return TypeResolved
	}
	return NewTypeResolution("%sargument of [%s] must be a constant, received [%s]",
		ord.prefix(), sourceText, displayName(e))
}

// IsNotNullAndFoldable checks that e is a constant other than null.
func IsNotNullAndFoldable(e Expression, sourceText string, ord ParamOrdinal) TypeResolution {
	r := IsFoldable(e, sourceText, ord)
	if !r.Resolved() {
		return r
	}
	if v, err := Fold(e); e.DataType() == Null || (err == nil && v == nil) {
		return NewTypeResolution("%sargument of [%s] cannot be null, received [%s]",
			ord.prefix(), sourceText, displayName(e))
	}
	return TypeResolved
}
