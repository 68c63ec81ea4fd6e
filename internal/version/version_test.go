package version

import (
	"testing"

	goversion "github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatisfies(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "1.2.3"

	ok, err := Satisfies(">= 1.0.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Satisfies("~> 2.0")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Satisfies("not a constraint")
	assert.Error(t, err)
}

func TestSatisfiedBy(t *testing.T) {
	v := goversion.Must(goversion.NewVersion("2.1.0"))

	ok, err := SatisfiedBy(v, ">= 2.0.0, < 3.0.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SatisfiedBy(v, "< 2.0.0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSemver_Invalid(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "dev build"

	_, err := Semver()
	assert.Error(t, err)
}

func TestInfoStrings(t *testing.T) {
	info := Get()
	assert.Contains(t, info.String(), "ctf-migrate version "+Version)
	assert.Contains(t, info.FullString(), "Git Commit: "+GitCommit)
}
