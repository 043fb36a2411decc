package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitScaffoldsLayout(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	for _, p := range [][]string{{"objects"}, {"refs", "heads"}, {"refs", "tags"}, {"branches"}} {
		fi, statErr := os.Stat(repo.Path(p...))
		require.NoError(t, statErr)
		assert.True(t, fi.IsDir())
	}

	head, err := os.ReadFile(repo.Path("HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master\n", string(head))

	v, ok := repo.Config.Get("core", "repositoryformatversion")
	require.True(t, ok)
	assert.Equal(t, "0", v)
}

func TestInitRefusesNonEmptyGitDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	_, err = Init(dir)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestFindWalksUpToGitDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	nested := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	repo, err := Find(nested, true)
	require.NoError(t, err)
	require.NotNil(t, repo)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, repo.WorkTree)
}

func TestFindNotRequiredReturnsNil(t *testing.T) {
	dir := t.TempDir()
	repo, err := Find(dir, false)
	require.NoError(t, err)
	assert.Nil(t, repo)
}

func TestFindRequiredReturnsError(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir, true)
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestEnsureDirNotADirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := Init(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(repo.Path("objects-file"), []byte("x"), 0o644))
	_, err = repo.EnsureDir(false, "objects-file")
	assert.ErrorIs(t, err, ErrNotADirectory)
}
