package prefix

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParseCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	require.NoError(t, err)
	return n
}

func TestDelegatedPrefixRoundTrip(t *testing.T) {
	p := mustParseCIDR(t, "2001:db8:1::/48")
	b := EncodeDelegatedPrefix(p)
	got, err := DecodeDelegatedPrefix(b)
	require.NoError(t, err)
	require.Equal(t, p.String(), got.String())
}

func TestAssignedPrefixRoundTrip(t *testing.T) {
	p := mustParseCIDR(t, "2001:db8:1:1::/64")
	b := EncodeAssignedPrefix(7, p, 3, true)
	linkID, got, pref, auth, err := DecodeAssignedPrefix(b)
	require.NoError(t, err)
	require.EqualValues(t, 7, linkID)
	require.Equal(t, p.String(), got.String())
	require.EqualValues(t, 3, pref)
	require.True(t, auth)
}

func TestAssignedPrefixNotAuthoritative(t *testing.T) {
	p := mustParseCIDR(t, "2001:db8::/64")
	b := EncodeAssignedPrefix(1, p, 0, false)
	_, _, _, auth, err := DecodeAssignedPrefix(b)
	require.NoError(t, err)
	require.False(t, auth)
}

func TestSplitSubnet(t *testing.T) {
	delegated := mustParseCIDR(t, "2001:db8::/48")

	sub0, err := SplitSubnet(delegated, 64, 0)
	require.NoError(t, err)
	require.Equal(t, "2001:db8::/64", sub0.String())

	sub1, err := SplitSubnet(delegated, 64, 1)
	require.NoError(t, err)
	require.Equal(t, "2001:db8:0:1::/64", sub1.String())

	sub256, err := SplitSubnet(delegated, 64, 256)
	require.NoError(t, err)
	require.Equal(t, "2001:db8:0:100::/64", sub256.String())
}

func TestSplitSubnetRejectsShorterOrEqual(t *testing.T) {
	delegated := mustParseCIDR(t, "2001:db8::/64")
	_, err := SplitSubnet(delegated, 64, 0)
	require.Error(t, err)
	_, err = SplitSubnet(delegated, 60, 0)
	require.Error(t, err)
}

func TestSplitSubnetRejectsUnalignedLengths(t *testing.T) {
	delegated := mustParseCIDR(t, "2001:db8::/45")
	_, err := SplitSubnet(delegated, 64, 0)
	require.Error(t, err)
}

func TestSplitSubnetRejectsOutOfRangeIndex(t *testing.T) {
	delegated := mustParseCIDR(t, "2001:db8::/56")
	_, err := SplitSubnet(delegated, 64, 256)
	require.Error(t, err)
}
