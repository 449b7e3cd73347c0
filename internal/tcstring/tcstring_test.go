package tcstring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDeciseconds(t *testing.T) {
	t.Run("all zero digits", func(t *testing.T) {
		v, err := DecodeDeciseconds("AAAAAA")
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)
	})

	t.Run("single low digit", func(t *testing.T) {
		v, err := DecodeDeciseconds("AAAAAB")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("place values", func(t *testing.T) {
		v, err := DecodeDeciseconds("AAAABA")
		require.NoError(t, err)
		assert.Equal(t, int64(64), v)
	})

	t.Run("url safe tail of alphabet", func(t *testing.T) {
		v, err := DecodeDeciseconds("-_")
		require.NoError(t, err)
		assert.Equal(t, int64(62*64+63), v)
	})

	t.Run("standard base64 characters rejected", func(t *testing.T) {
		_, err := DecodeDeciseconds("AA+AAA")
		assert.ErrorIs(t, err, ErrMalformed)

		_, err = DecodeDeciseconds("AAAA/A")
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestEncodeDeciseconds_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 14, 15, 9, 26, 535_000_000, time.UTC)

	for _, ts := range []time.Time{
		time.Unix(0, 0),
		now,
		now.Add(-366 * 24 * time.Hour),
		time.Date(2020, 1, 1, 0, 0, 0, 99_000_000, time.UTC),
	} {
		field := EncodeDeciseconds(ts.UnixMilli() / 100)
		require.Len(t, field, 6)

		decoded, err := CreatedMillis("C" + field + "AAA")
		require.NoError(t, err)

		diff := ts.UnixMilli() - decoded
		assert.GreaterOrEqual(t, diff, int64(0))
		assert.Less(t, diff, int64(100), "sub-decisecond precision is the only loss")
	}
}

func TestCreatedField(t *testing.T) {
	t.Run("exact minimum length", func(t *testing.T) {
		field, err := CreatedField("CAAAAAB")
		require.NoError(t, err)
		assert.Equal(t, "AAAAAB", field)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := CreatedField("CAAAAA")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := CreatedField("")
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestCreatedAt(t *testing.T) {
	created, err := CreatedAt("CAAAAAA")
	require.NoError(t, err)
	assert.True(t, created.Equal(time.Unix(0, 0)))

	_, err = CreatedAt("C!AAAAA")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestWithCreated(t *testing.T) {
	ts := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("preserves version and payload", func(t *testing.T) {
		in := "CPXxRfAPXxRfAAfKABENB-CgAAAAAAAAAAYgAAAAAAAA"
		out := WithCreated(in, ts)
		require.Len(t, out, len(in))
		assert.Equal(t, byte('C'), out[0])
		assert.Equal(t, in[7:], out[7:])

		got, err := CreatedAt(out)
		require.NoError(t, err)
		assert.True(t, got.Equal(ts))
	})

	t.Run("pads short input", func(t *testing.T) {
		out := WithCreated("C", ts)
		assert.Len(t, out, MinLength)

		got, err := CreatedAt(out)
		require.NoError(t, err)
		assert.True(t, got.Equal(ts))
	})
}
