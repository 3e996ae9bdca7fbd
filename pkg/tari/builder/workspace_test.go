package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkspaceKey(t *testing.T) {
	tests := []struct {
		key     string
		name    string
		offset  *uint32
		wantErr bool
	}{
		{key: "bucket", name: "bucket"},
		{key: "bucket.0", name: "bucket", offset: u32(0)},
		{key: "bucket.12", name: "bucket", offset: u32(12)},
		{key: "", wantErr: true},
		{key: ".1", wantErr: true},
		{key: "bucket.", wantErr: true},
		{key: "bucket.-1", wantErr: true},
		{key: "bucket.x", wantErr: true},
		{key: "bucket.1.2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			k, err := ParseWorkspaceKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWorkspaceKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, k.Name)
			assert.Equal(t, tt.offset, k.Offset)
			assert.Equal(t, tt.key, k.String())
		})
	}
}

func TestWorkspacesResolve(t *testing.T) {
	w := newWorkspaces()
	assert.Equal(t, uint32(0), w.allocate("a"))
	assert.Equal(t, uint32(1), w.allocate("b"))

	id, err := w.resolve("b.4")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id.ID)
	assert.Equal(t, u32(4), id.Offset)

	_, err = w.resolve("c.4")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}
