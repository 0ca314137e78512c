package tmpfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateVacuumTempNameIsSiblingOfLog(t *testing.T) {
	name := GenerateVacuumTempName("/var/lib/pynosql/pynosql.data")
	assert.True(t, strings.HasPrefix(name, "/var/lib/pynosql/pynosql.data.vacuum."))
	assert.True(t, strings.HasSuffix(name, ".tmp"))
}

func TestGenerateVacuumTempNameVariesAcrossCalls(t *testing.T) {
	a := GenerateVacuumTempName("/data/pynosql.data")
	b := GenerateVacuumTempName("/data/pynosql.data")
	assert.NotEqual(t, a, b)
}

func TestGenerateMarkerNameIsStable(t *testing.T) {
	a := GenerateMarkerName("/data/pynosql.data")
	b := GenerateMarkerName("/data/pynosql.data")
	assert.Equal(t, a, b)
	assert.Equal(t, "/data/pynosql.data.vacuum.marker", a)
}
