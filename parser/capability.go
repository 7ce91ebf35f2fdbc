// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Capability names for preview syntax.
const (
	CapabilityMetricsCommand = "metrics_command"
	CapabilityInlineStats    = "inlinestats"
	CapabilityLookupCommand  = "lookup_command"
	CapabilityMatchCommand   = "match_command"
	CapabilityMatchOperator  = "match_operator"
	CapabilityMatchFunction  = "match_function"
	CapabilityQstrFunction   = "qstr_function"
)

// ErrCapabilityDisabled is returned (wrapped) when a query uses
// preview syntax whose capability is not enabled.
var ErrCapabilityDisabled = errors.New("capability disabled")

// Capabilities reports which preview features are available.
// Implementations must be safe to call from multiple goroutines
// and must not have side effects.
type Capabilities interface {
	Enabled(name string) bool
}

// CapabilitySet is a [Capabilities] backed by a map.
// A nil CapabilitySet has no capabilities enabled.
type CapabilitySet map[string]bool

// Enabled reports whether set[name] is true.
func (set CapabilitySet) Enabled(name string) bool {
	return set[name]
}

// Names returns the enabled capability names in sorted order.
func (set CapabilitySet) Names() []string {
	names := maps.Keys(set)
	names = slices.DeleteFunc(names, func(name string) bool { return !set[name] })
	slices.Sort(names)
	return names
}

// String returns the enabled names separated by commas.
func (set CapabilitySet) String() string {
	return strings.Join(set.Names(), ",")
}

var knownCapabilities = []string{
	CapabilityInlineStats,
	CapabilityLookupCommand,
	CapabilityMatchCommand,
	CapabilityMatchFunction,
	CapabilityMatchOperator,
	CapabilityMetricsCommand,
	CapabilityQstrFunction,
}

// KnownCapabilities returns the names of every capability the parser checks.
func KnownCapabilities() []string {
	return slices.Clone(knownCapabilities)
}

// DevCapabilities returns a set with every known capability enabled.
func DevCapabilities() CapabilitySet {
	set := make(CapabilitySet, len(knownCapabilities))
	for _, name := range knownCapabilities {
		set[name] = true
	}
	return set
}

// ParseCapabilities parses a comma-separated list of capability names.
// The special name "dev" enables every known capability.
func ParseCapabilities(s string) (CapabilitySet, error) {
	set := make(CapabilitySet)
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case name == "":
		case name == "dev":
			maps.Copy(set, DevCapabilities())
		case slices.Contains(knownCapabilities, name):
			set[name] = true
		default:
			return nil, fmt.Errorf("unknown capability %q", name)
		}
	}
	return set, nil
}

func enabled(caps Capabilities, name string) bool {
	return caps != nil && caps.Enabled(name)
}

type capabilityError struct {
	feature    string
	capability string
}

func (e *capabilityError) Error() string {
	return fmt.Sprintf("%s is a preview feature and requires the [%s] capability", e.feature, e.capability)
}

func (e *capabilityError) Is(target error) bool {
	return target == ErrCapabilityDisabled
}
