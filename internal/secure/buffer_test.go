package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_Destroy(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	buf := Wrap(raw)
	assert.Equal(t, 4, buf.Len())

	buf.Destroy()

	assert.Equal(t, []byte{0, 0, 0, 0}, raw)
	assert.Nil(t, buf.Bytes())
	assert.Zero(t, buf.Len())

	// second destroy is a no-op
	buf.Destroy()
}

func TestBuffer_Nil(t *testing.T) {
	var buf *Buffer
	assert.Nil(t, buf.Bytes())
	assert.Zero(t, buf.Len())
	assert.NotPanics(t, buf.Destroy)
}

func TestNewBuffer(t *testing.T) {
	buf := NewBuffer(32)
	defer buf.Destroy()
	assert.Len(t, buf.Bytes(), 32)
}
