package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug_LowercasesAndHyphenatesBasename(t *testing.T) {
	assert.Equal(t, "my-app", Slug("/home/user/My App"))
	assert.Equal(t, "repo", Slug("/home/user/repo/"))
}

func TestSlug_IgnoresParentDirectories(t *testing.T) {
	assert.Equal(t, "codeqa", Slug("/a/b/c/codeqa"))
}

func TestID_IsDeterministicForSameRoot(t *testing.T) {
	a := ID("/home/user/project")
	b := ID("/home/user/project")
	assert.Equal(t, a, b)
}

func TestID_DiffersForDifferentRoots(t *testing.T) {
	a := ID("/home/user/project-one")
	b := ID("/home/user/project-two")
	assert.NotEqual(t, a, b)
}

func TestID_HasSlugPrefixAndHex12Suffix(t *testing.T) {
	id := ID("/home/user/my-app")

	assert.Regexp(t, `^my-app_[0-9a-f]{12}$`, id)
}

func TestID_UncleanedAndCleanedRootsMatch(t *testing.T) {
	a := ID("/home/user/project")
	b := ID("/home/user/./project/")

	assert.Equal(t, a, b)
}

func TestCanonicalize_ResolvesRelativeToAbsolute(t *testing.T) {
	abs, err := Canonicalize(".")

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
}

func TestCanonicalize_CleansDotSegments(t *testing.T) {
	abs, err := Canonicalize("/tmp/a/../b")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/b", abs)
}
