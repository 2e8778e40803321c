package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	v := Current()
	assert.Equal(t, "0.1-dev", v.String())
}
