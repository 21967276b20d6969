package refine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBehaviorChecksQuality(t *testing.T) {
	b := DefaultBehavior()
	assert.True(t, b.ChecksQuality())
	assert.Equal(t, -1, b.SteinerLeft)
	assert.Greater(t, b.GoodAngle, 0.0)
}

func TestChecksQualityFalseWithNothingConfigured(t *testing.T) {
	var b Behavior
	b.Resolve()
	assert.False(t, b.ChecksQuality())
}

func TestResolveDerivesGoodAngleFromMinAngle(t *testing.T) {
	b := Behavior{MinAngle: 30}
	b.Resolve()
	// cos(30deg)^2 == 3/4
	assert.InDelta(t, 0.75, b.GoodAngle, 1e-9)
}

func TestResolveLeavesMaxGoodAngleZeroWhenMaxAngleUnset(t *testing.T) {
	b := Behavior{MinAngle: 20}
	b.Resolve()
	assert.Equal(t, 0.0, b.MaxGoodAngle)
}

func TestSaveAndLoadBehaviorFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "behavior.yaml")

	want := DefaultBehavior()
	want.MinAngle = 28
	want.ConformDel = true
	want.NoBisect = 1
	want.Resolve()

	require.NoError(t, SaveBehaviorFile(path, want))

	got, err := LoadBehaviorFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.MinAngle, got.MinAngle)
	assert.Equal(t, want.ConformDel, got.ConformDel)
	assert.Equal(t, want.NoBisect, got.NoBisect)
	assert.InDelta(t, want.GoodAngle, got.GoodAngle, 1e-9)
}

func TestLoadBehaviorFileMissingReturnsError(t *testing.T) {
	_, err := LoadBehaviorFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}
