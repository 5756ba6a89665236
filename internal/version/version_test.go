package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func restoreVersion(t *testing.T) {
	origVersion, origRevision, origBuildDate := Version, Revision, BuildDate
	t.Cleanup(func() {
		Version, Revision, BuildDate = origVersion, origRevision, origBuildDate
	})
}

func TestVersionStrings(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)

	short := Short()
	assert.Contains(t, short, Version)
	assert.Contains(t, short, Revision)
	assert.True(t, strings.HasPrefix(ShortWithApp(), "SyftMirror "))

	detailed := Detailed()
	assert.Contains(t, detailed, Version)
	assert.Contains(t, detailed, "/")
}

func TestDetailed_UnknownBuildDate(t *testing.T) {
	restoreVersion(t)
	BuildDate = ""
	assert.Contains(t, Detailed(), "unknown)")
}

func TestApplyBuildInfo_FillsPlaceholders(t *testing.T) {
	restoreVersion(t)
	Version, Revision, BuildDate = devVersion, "HEAD", ""

	applyBuildInfo("v1.4.0", map[string]string{
		"vcs.revision": "abcdef1234567890",
		"vcs.modified": "true",
		"vcs.time":     "2024-05-01T10:00:00Z",
	})

	assert.Equal(t, "1.4.0", Version)
	assert.Equal(t, "abcdef1234567890-dirty", Revision)
	assert.Equal(t, "2024-05-01T10:00:00Z", BuildDate)
}

func TestApplyBuildInfo_KeepsLdflagsValues(t *testing.T) {
	restoreVersion(t)
	Version, Revision, BuildDate = "2.0.0", "deadbeef", "from-ldflags"

	applyBuildInfo("(devel)", map[string]string{
		"vcs.revision": "abcdef",
		"vcs.time":     "2024-05-01T10:00:00Z",
	})

	assert.Equal(t, "2.0.0", Version)
	assert.Equal(t, "deadbeef", Revision)
	assert.Equal(t, "from-ldflags", BuildDate)
}
