package change

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	r := Build([]string{"x", "a", "b", "c"}, []string{"a", "b", "y", "c"})

	assert.Equal(t, map[int]string{2: "y"}, r.Add)
	assert.Equal(t, map[int]string{0: "x"}, r.Del)
	assert.False(t, r.Empty())

	added, deleted := r.Stats()
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, deleted)
}

func TestBuild_Unchanged(t *testing.T) {
	r := Build([]string{"a", "b"}, []string{"a", "b"})
	assert.True(t, r.Empty())
	assert.NotNil(t, r.Add)
	assert.NotNil(t, r.Del)
}

func TestRecord_JSON(t *testing.T) {
	r := Build([]string{"keep", "drop"}, []string{"keep", "new", "more"})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"add":{"1":"new","2":"more"},"del":{"1":"drop"}}`, string(data))

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *r, decoded)
}

func TestApply(t *testing.T) {
	oldLines := []string{"x", "a", "b", "c"}
	newLines := []string{"a", "b", "y", "c"}

	got, err := Apply(oldLines, Build(oldLines, newLines))
	require.NoError(t, err)
	assert.Equal(t, newLines, got)
}

func TestApply_RoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []string{"a", "b", "c"}
	randomLines := func() []string {
		lines := make([]string, rng.Intn(10))
		for i := range lines {
			lines[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return lines
	}

	for i := 0; i < 200; i++ {
		oldLines, newLines := randomLines(), randomLines()
		got, err := Apply(oldLines, Build(oldLines, newLines))
		require.NoError(t, err)
		assert.Equal(t, len(newLines), len(got))
		for j := range newLines {
			assert.Equal(t, newLines[j], got[j])
		}
	}
}

func TestApply_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		old    []string
		record *Record
	}{
		{
			name:   "deleted index past end",
			old:    []string{"a"},
			record: &Record{Del: map[int]string{3: "a"}},
		},
		{
			name:   "deleted content mismatch",
			old:    []string{"a"},
			record: &Record{Del: map[int]string{0: "b"}},
		},
		{
			name:   "added index past end",
			old:    []string{"a"},
			record: &Record{Add: map[int]string{5: "z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.old, tt.record)
			assert.Error(t, err)
		})
	}
}

func TestApply_NilRecord(t *testing.T) {
	got, err := Apply([]string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}
