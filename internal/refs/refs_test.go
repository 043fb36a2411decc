package refs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyag-go/wyag/internal/repository"
)

func TestResolveDirectAndIndirect(t *testing.T) {
	repo, err := repository.Init(t.TempDir())
	require.NoError(t, err)

	sha, ok, err := Resolve(repo, "HEAD")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, sha)

	require.NoError(t, Create(repo, "heads/master", "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))

	sha, ok, err = Resolve(repo, "HEAD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", sha)
}

func TestResolveDetectsCycle(t *testing.T) {
	repo, err := repository.Init(t.TempDir())
	require.NoError(t, err)

	a, err := repo.EnsureFileParent(true, "refs", "heads", "a")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(a, []byte("ref: refs/heads/b\n"), 0o644))
	b, err := repo.EnsureFileParent(true, "refs", "heads", "b")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(b, []byte("ref: refs/heads/a\n"), 0o644))

	_, _, err = Resolve(repo, "refs/heads/a")
	assert.Error(t, err)
}

func TestListBuildsNestedTree(t *testing.T) {
	repo, err := repository.Init(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, Create(repo, "heads/master", "1111111111111111111111111111111111111111"))
	require.NoError(t, Create(repo, "tags/v1.0", "2222222222222222222222222222222222222222"))

	tree, err := List(repo, "refs")
	require.NoError(t, err)

	heads, ok := tree["heads"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1111111111111111111111111111111111111111", heads["master"])

	tags, ok := tree["tags"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2222222222222222222222222222222222222222", tags["v1.0"])
}
