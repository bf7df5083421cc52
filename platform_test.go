package provenance

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformFacts_CoreEntries(t *testing.T) {
	t.Parallel()
	facts := PlatformFacts()

	require.NotEmpty(t, facts)
	assert.Equal(t, runtime.GOOS, facts["os"])
	assert.Equal(t, runtime.GOARCH, facts["arch"])
	assert.Equal(t, runtime.Version(), facts["go_version"])
	assert.Equal(t, runtime.NumCPU(), facts["num_cpu"])
}

func TestPlatformFacts_NoEmptyValues(t *testing.T) {
	t.Parallel()
	for name, v := range PlatformFacts() {
		assert.False(t, allEmpty(v), "fact %s is empty", name)
	}
}

func TestAllEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, allEmpty(""))
	assert.True(t, allEmpty([]string{"", ""}))
	assert.True(t, allEmpty([]any{"", []string{""}}))
	assert.True(t, allEmpty([]string{}))

	assert.False(t, allEmpty("x"))
	assert.False(t, allEmpty([]string{"", "x"}))
	assert.False(t, allEmpty(0), "non-string scalars always count as information")
}
