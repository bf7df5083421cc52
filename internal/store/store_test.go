package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func recordTestRun(t *testing.T, s *Store, mode string, modules map[string]string) int64 {
	t.Helper()
	id, err := s.RecordRun(time.Now().UTC(), mode, []byte(`{"mode":"`+mode+`"}`), modules)
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func TestMigrate_TablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"runs", "modules"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestRecordRun_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id := recordTestRun(t, s, "summary", map[string]string{
		"example.com/lib": "v1.0.0",
		"example.com/dev": ".../mod.go",
	})

	run, err := s.RunByID(id)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "summary", run.Mode)
	assert.JSONEq(t, `{"mode":"summary"}`, string(run.Report))

	modules, err := s.ModulesForRun(id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"example.com/lib": "v1.0.0",
		"example.com/dev": ".../mod.go",
	}, modules)
}

func TestRunByID_Absent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	run, err := s.RunByID(999)
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	first := recordTestRun(t, s, "summary", nil)
	second := recordTestRun(t, s, "full", nil)
	third := recordTestRun(t, s, "summary", nil)

	runs, err := s.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []int64{third, second, first}, []int64{runs[0].ID, runs[1].ID, runs[2].ID})

	limited, err := s.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, third, limited[0].ID)
}

func TestRunsWithModule(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := recordTestRun(t, s, "summary", map[string]string{"example.com/lib": "v1.0.0"})
	b := recordTestRun(t, s, "summary", map[string]string{"example.com/lib": "v1.1.0"})
	recordTestRun(t, s, "summary", map[string]string{"example.com/other": "v2.0.0"})

	ids, err := s.RunsWithModule("example.com/lib", "")
	require.NoError(t, err)
	assert.Equal(t, []int64{b, a}, ids)

	ids, err = s.RunsWithModule("example.com/lib", "v1.1.0")
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, ids)

	ids, err = s.RunsWithModule("example.com/absent", "")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
