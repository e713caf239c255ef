package redemption

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrimHexPrefix(t *testing.T) {
	require.Equal(t, "abcd", trimHexPrefix("0xabcd"))
	require.Equal(t, "abcd", trimHexPrefix("0Xabcd"))
	require.Equal(t, "abcd", trimHexPrefix("abcd"))
}

func TestLeftPad32(t *testing.T) {
	out, err := leftPad32("0x1234")
	require.NoError(t, err)
	require.Equal(t, byte(0x12), out[30])
	require.Equal(t, byte(0x34), out[31])
	for i := 0; i < 30; i++ {
		require.Equal(t, byte(0), out[i])
	}

	_, err = leftPad32("zz")
	require.Error(t, err)

	long := make([]byte, 66)
	for i := range long {
		long[i] = 'a'
	}
	_, err = leftPad32("0x" + string(long))
	require.Error(t, err)
}
