package history

import (
	"fmt"
	"sort"
	"testing"

	"duck/internal/change"
	"duck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New()

	assert.Equal(t, "", h.Head)
	assert.Empty(t, h.Timeline)
	assert.Empty(t, h.Commits)
	assert.True(t, h.Empty())
	assert.Nil(t, h.HeadEntry())
	assert.NoError(t, h.Validate())
}

func TestAppend(t *testing.T) {
	h := New()
	var ids []string

	for i := 0; i < 5; i++ {
		id, err := NewID()
		require.NoError(t, err)
		entry := NewEntry(fmt.Sprintf("commit %d", i), nil, []string{"a.txt"}, map[string]*change.Record{
			"a.txt": change.Build(nil, []string{fmt.Sprint(i)}),
		})
		require.NoError(t, h.Append(id, entry))
		ids = append(ids, id)

		assert.Equal(t, i+1, h.Len())
		assert.Equal(t, id, h.Head)
	}

	assert.Equal(t, ids, h.Timeline)
	for _, id := range h.Timeline {
		_, ok := h.Commits[id]
		assert.True(t, ok)
	}
	assert.Equal(t, "commit 4", h.HeadEntry().Message)
	assert.NoError(t, h.Validate())

	entries := h.Entries()
	require.Len(t, entries, 5)
	for i, c := range entries {
		assert.Equal(t, ids[i], c.ID)
		assert.Equal(t, fmt.Sprintf("commit %d", i), c.Entry.Message)
	}
}

func TestAppend_Rejects(t *testing.T) {
	h := New()
	require.NoError(t, h.Append("c1", NewEntry("first", nil, nil, nil)))

	err := h.Append("c1", NewEntry("again", nil, nil, nil))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	err = h.Append("", NewEntry("no id", nil, nil, nil))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	err = h.Append("c2", nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	// rejected appends leave the log untouched
	assert.Equal(t, []string{"c1"}, h.Timeline)
	assert.Equal(t, "c1", h.Head)
	assert.Equal(t, "first", h.Commits["c1"].Message)
}

func TestNewID_Ordered(t *testing.T) {
	var ids []string
	for i := 0; i < 100; i++ {
		id, err := NewID()
		require.NoError(t, err)
		ids = append(ids, id)
	}

	assert.True(t, sort.StringsAreSorted(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestGet(t *testing.T) {
	h := New()
	require.NoError(t, h.Append("c1", NewEntry("first", nil, nil, nil)))

	entry, err := h.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "first", entry.Message)

	_, err = h.Get("nope")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestResolve(t *testing.T) {
	h := New()

	_, err := h.Resolve("HEAD")
	assert.Error(t, err)

	require.NoError(t, h.Append("abc111", NewEntry("one", nil, nil, nil)))
	require.NoError(t, h.Append("abc222", NewEntry("two", nil, nil, nil)))

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "HEAD", want: "abc222"},
		{ref: "", want: "abc222"},
		{ref: "abc111", want: "abc111"},
		{ref: "abc1", want: "abc111"},
		{ref: "abc", wantErr: true},
		{ref: "zzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := h.Resolve(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		h    *History
	}{
		{
			name: "head on empty history",
			h:    &History{Head: "x", Timeline: []string{}, Commits: map[string]*CommitEntry{}},
		},
		{
			name: "timeline entry missing from index",
			h:    &History{Head: "a", Timeline: []string{"a"}, Commits: map[string]*CommitEntry{"b": {}}},
		},
		{
			name: "head is not last",
			h: &History{Head: "a", Timeline: []string{"a", "b"}, Commits: map[string]*CommitEntry{
				"a": {}, "b": {},
			}},
		},
		{
			name: "duplicate timeline entry",
			h:    &History{Head: "a", Timeline: []string{"a", "a"}, Commits: map[string]*CommitEntry{"a": {}, "b": {}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.h.Validate())
		})
	}
}
