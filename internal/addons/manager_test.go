package addons

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, addonsDir string) *Manager {
	t.Helper()
	return NewManager(addonsDir, t.TempDir(), log.New(io.Discard))
}

func TestScanSortsManifestsIntoOutcomes(t *testing.T) {
	dir := t.TempDir()

	writeManifest(t, dir, "Foo Bar", "## Title: Foo Bar\n## AddOnVersion: 7\n")
	writeManifest(t, dir, "FooBar", "## Title: Foo Bar Copy\n")
	writeManifest(t, dir, "Broken", "## Title: Broken\n## IsLibrary: sometimes\n")
	writeManifest(t, dir, "HarvestMapData", "## Title: HarvestMap Data Files\n")
	writeManifest(t, dir, "LibStub", "## Title: LibStub\n## IsLibrary: true\n")

	// A second .txt in a folder is not the folder's manifest
	extra := filepath.Join(dir, "Foo Bar", "notes.txt")
	require.NoError(t, os.WriteFile(extra, []byte("## Title: Not a manifest\n"), 0644))

	result, err := newTestManager(t, dir).Scan()
	require.NoError(t, err)

	require.Len(t, result.Addons, 2)
	assert.Equal(t, "Foo Bar", result.Addons["foobar"].Name, "first folder wins a normalized path collision")
	assert.Equal(t, "7", result.Addons["foobar"].Version)
	assert.True(t, result.Addons["libstub"].IsLibrary)

	require.Len(t, result.Skipped, 1)
	assert.ErrorIs(t, result.Skipped[0].Err, ErrMalformedManifest)
	assert.Equal(t, filepath.Join(dir, "Broken", "Broken.txt"), result.Skipped[0].Path)

	assert.Equal(t, []string{filepath.Join(dir, "HarvestMapData", "HarvestMapData.txt")}, result.DataFiles)
	assert.Contains(t, result.Ignored, extra)

	sorted := result.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, "foobar", sorted[0].Path)
	assert.Equal(t, "libstub", sorted[1].Path, "libraries sort last")
}

func TestScanManifestNameIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "CombatMetrics")
	require.NoError(t, os.MkdirAll(folder, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "combatmetrics.txt"), []byte("## Title: Combat Metrics\n"), 0644))

	result, err := newTestManager(t, dir).Scan()
	require.NoError(t, err)
	require.Contains(t, result.Addons, "combatmetrics")
	assert.Equal(t, "CombatMetrics", result.Addons["combatmetrics"].Name)
}

func TestScanHandlesGlobCharactersInDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Elder Scrolls [live]")
	writeManifest(t, dir, "Foo", "## Title: Foo\n")

	result, err := newTestManager(t, dir).Scan()
	require.NoError(t, err)
	assert.Contains(t, result.Addons, "foo")
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := newTestManager(t, filepath.Join(t.TempDir(), "missing")).Scan()
	assert.ErrorIs(t, err, ErrAddonsDir)
}

func TestGetInfo(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "Foo Bar", "## Title: Foo Bar\n")
	m := newTestManager(t, dir)

	addon, err := m.GetInfo("foo bar")
	require.NoError(t, err)
	assert.Equal(t, "Foo Bar", addon.Name)

	_, err = m.GetInfo("nothing")
	assert.ErrorIs(t, err, ErrAddonNotFound)
}

func TestStorePersistsRecords(t *testing.T) {
	dataDir := t.TempDir()
	sm := NewStoreManager(dataDir)
	require.NoError(t, sm.Load(), "missing store file is not an error")

	when := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	sm.Set("foobar", DownloadRecord{ID: 42, Title: "Foo Bar", Version: "1.3", Checksum: "abc", Archive: "/tmp/x.zip", DownloadedAt: when})
	sm.Set("aaa", DownloadRecord{ID: 1})
	require.NoError(t, sm.Save())

	reloaded := NewStoreManager(dataDir)
	require.NoError(t, reloaded.Load())

	rec, ok := reloaded.Get("foobar")
	require.True(t, ok)
	assert.Equal(t, 42, rec.ID)
	assert.True(t, rec.DownloadedAt.Equal(when))
	assert.Equal(t, []string{"aaa", "foobar"}, reloaded.List())

	reloaded.Delete("aaa")
	_, ok = reloaded.Get("aaa")
	assert.False(t, ok)
}
