// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := Default()
	require.Equal(t, WireFormatTlv, o.WireFormat)
	require.Equal(t, MaxPacketSize, o.MaxPacketSize)
	require.Equal(t, 25, o.MaxValidationDepth)
	require.Equal(t, 2*time.Minute, o.GracePeriod)
	require.Equal(t, time.Hour, o.VerifiedCacheLifetime)
	require.Equal(t, 5*time.Minute, o.UnverifiedCacheLifetime)
}

func TestWireFormatCheck(t *testing.T) {
	require.NoError(t, WireFormatTlv.Check())
	require.ErrorIs(t, WireFormatBinaryXml.Check(), ErrNotImplemented)
}

func TestProcessWideHolders(t *testing.T) {
	defer SetDefaultWireFormat(WireFormatTlv)
	defer SetDefaultCanBePrefix(false)

	SetDefaultCanBePrefix(true)
	require.True(t, Default().DefaultCanBePrefix)

	SetDefaultWireFormat(WireFormatBinaryXml)
	require.Equal(t, WireFormatBinaryXml, Default().WireFormat)
}
