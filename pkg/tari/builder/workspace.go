package builder

import (
	"fmt"
	"strconv"
	"strings"

	"tari-sdk/pkg/tari/types"
)

// WorkspaceKey is a parsed workspace name: "bucket" or "bucket.1".
type WorkspaceKey struct {
	Name   string
	Offset *uint32
}

func (k WorkspaceKey) String() string {
	if k.Offset == nil {
		return k.Name
	}
	return k.Name + "." + strconv.FormatUint(uint64(*k.Offset), 10)
}

// ParseWorkspaceKey splits key at the first '.' into a name and a
// non-negative integer offset.
func ParseWorkspaceKey(key string) (WorkspaceKey, error) {
	name, offset, found := strings.Cut(key, ".")
	if name == "" {
		return WorkspaceKey{}, fmt.Errorf("%w: %q has an empty name", ErrInvalidWorkspaceKey, key)
	}
	if !found {
		return WorkspaceKey{Name: name}, nil
	}
	v, err := strconv.ParseUint(offset, 10, 32)
	if err != nil {
		return WorkspaceKey{}, fmt.Errorf("%w: %q has a bad offset: %v", ErrInvalidWorkspaceKey, key, err)
	}
	o := uint32(v)
	return WorkspaceKey{Name: name, Offset: &o}, nil
}

// workspaces maps names to ids. Ids are handed out in order from 0 and are
// never reused, even when a name is bound a second time.
type workspaces struct {
	ids  map[string]uint32
	next uint32
}

func newWorkspaces() *workspaces {
	return &workspaces{ids: make(map[string]uint32)}
}

func (w *workspaces) allocate(name string) uint32 {
	id := w.next
	w.ids[name] = id
	w.next++
	return id
}

func (w *workspaces) lookup(name string) (uint32, error) {
	id, ok := w.ids[name]
	if !ok {
		return 0, fmt.Errorf("%w: no workspace with name %q", ErrWorkspaceNotFound, name)
	}
	return id, nil
}

// resolve parses key and looks up its base name.
func (w *workspaces) resolve(key string) (types.WorkspaceOffsetID, error) {
	k, err := ParseWorkspaceKey(key)
	if err != nil {
		return types.WorkspaceOffsetID{}, err
	}
	id, err := w.lookup(k.Name)
	if err != nil {
		return types.WorkspaceOffsetID{}, err
	}
	return types.WorkspaceOffsetID{ID: id, Offset: k.Offset}, nil
}

// bareName validates a name used to create a binding.
func bareName(name string) error {
	k, err := ParseWorkspaceKey(name)
	if err != nil {
		return err
	}
	if k.Offset != nil {
		return fmt.Errorf("%w: cannot bind offset key %q", ErrInvalidWorkspaceKey, name)
	}
	return nil
}
