// Copyright 2024 RunReveal Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilitySet(t *testing.T) {
	set, err := ParseCapabilities(" lookup_command, INLINESTATS ,")
	require.NoError(t, err)
	require.Equal(t, []string{CapabilityInlineStats, CapabilityLookupCommand}, set.Names())
	require.True(t, set.Enabled(CapabilityLookupCommand))
	require.False(t, set.Enabled(CapabilityMatchCommand))

	dev, err := ParseCapabilities("dev")
	require.NoError(t, err)
	require.Equal(t, KnownCapabilities(), dev.Names())

	_, err = ParseCapabilities("lookup,bogus")
	require.ErrorContains(t, err, `unknown capability "lookup"`)

	var none CapabilitySet
	require.False(t, none.Enabled(CapabilityMetricsCommand))
	require.Empty(t, none.String())
}
