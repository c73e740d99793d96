package buffer

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "A.java")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestEditWritesFile(t *testing.T) {
	path := writeTemp(t, "class A {}\n")
	s := NewStore(false)

	err := s.Edit(path, func(src []byte) ([]byte, error) {
		return append([]byte("/** A. */\n"), src...), nil
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/** A. */\nclass A {}\n", string(got))

	read, err := s.Read(path)
	require.NoError(t, err)
	assert.Equal(t, got, read)
	assert.Empty(t, s.Changed())
}

func TestEditErrorLeavesFile(t *testing.T) {
	path := writeTemp(t, "class A {}\n")
	s := NewStore(false)
	boom := errors.New("boom")

	err := s.Edit(path, func(src []byte) ([]byte, error) {
		return []byte("corrupt"), boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {}\n", string(got))
}

func TestDryRun(t *testing.T) {
	path := writeTemp(t, "class A {}\n")
	s := NewStore(true)
	assert.True(t, s.DryRun())

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Edit(path, func(src []byte) ([]byte, error) {
			return append([]byte("// x\n"), src...), nil
		}))
	}

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {}\n", string(got), "dry run never writes")

	read, err := s.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "// x\n// x\nclass A {}\n", string(read))

	abs, _ := filepath.Abs(path)
	assert.Equal(t, []string{abs}, s.Changed())

	d := s.Diff(path)
	added, removed := d.Counts()
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, removed)
	assert.False(t, s.Diff(filepath.Join(t.TempDir(), "other")).Changed())
}

func TestReadMissing(t *testing.T) {
	s := NewStore(false)
	_, err := s.Read(filepath.Join(t.TempDir(), "missing.go"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConcurrentEditsSerialize(t *testing.T) {
	path := writeTemp(t, "")
	s := NewStore(false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Edit(path, func(src []byte) ([]byte, error) {
				return append(src, 'x'), nil
			}))
		}()
	}
	wg.Wait()

	got, err := s.Read(path)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
