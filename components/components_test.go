package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/flock/flock"
)

func TestParseTint(t *testing.T) {
	c, err := ParseTint("#e8c547")
	require.NoError(t, err)
	assert.Equal(t, Tint{R: 0xe8, G: 0xc5, B: 0x47, A: 255}, c)

	for _, bad := range []string{"", "e8c547", "#e8c5", "#zzzzzz"} {
		_, err := ParseTint(bad)
		assert.Error(t, err, bad)
	}
}

func TestParamFieldsRoundTrip(t *testing.T) {
	p := flock.DefaultParams()
	for _, fd := range ParamFields() {
		v := (fd.Min + fd.Max) / 2
		fd.Set(&p, v)
		assert.Equal(t, v, fd.Get(&p), fd.ID)
		assert.Less(t, fd.Min, fd.Max, fd.ID)
	}
}
