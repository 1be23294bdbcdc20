package dncp

import (
	"testing"

	"github.com/shurlinet/dncp/pkg/tlv"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidatorAcceptsMatchingVersion(t *testing.T) {
	v := DefaultValidator(3)
	n := &Node{}
	candidate := []tlv.Attr{{Type: tlv.TypeVersion, Payload: tlv.Version{Version: 3, UserAgent: "x"}.Marshal()}}

	accepted, err := v(n, false, candidate)
	require.NoError(t, err)
	require.Equal(t, candidate, accepted)
	require.True(t, n.hasVersion)
	require.Equal(t, uint8(3), n.version)
}

func TestDefaultValidatorRejectsMismatchedVersion(t *testing.T) {
	v := DefaultValidator(3)
	n := &Node{}
	candidate := []tlv.Attr{{Type: tlv.TypeVersion, Payload: tlv.Version{Version: 4}.Marshal()}}

	_, err := v(n, false, candidate)
	require.ErrorIs(t, err, ErrRejected)
}

func TestDefaultValidatorAcceptsAbsentVersion(t *testing.T) {
	v := DefaultValidator(3)
	n := &Node{}
	accepted, err := v(n, false, []tlv.Attr{{Type: tlv.TypeDNSDomainName, Payload: []byte("lan")}})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
}

func TestDefaultValidatorNeverRejectsOwnNode(t *testing.T) {
	v := DefaultValidator(3)
	n := &Node{}
	candidate := []tlv.Attr{{Type: tlv.TypeVersion, Payload: tlv.Version{Version: 9}.Marshal()}}
	_, err := v(n, true, candidate)
	require.NoError(t, err)
}
