package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/threadlens/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	s := version.String()

	assert.Contains(t, s, "threadlens "+version.Version)
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
	assert.NotEmpty(t, version.Commit)
}
