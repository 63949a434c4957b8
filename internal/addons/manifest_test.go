package addons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, folder, content string) string {
	t.Helper()

	folderPath := filepath.Join(dir, folder)
	require.NoError(t, os.MkdirAll(folderPath, 0755))

	path := filepath.Join(folderPath, folder+".txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseManifestExtractsIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "Foo Bar", "## Title: Foo Bar |cFFAA00v1.2.3|r\n"+
		"## Version: 1.2.3 beta\n"+
		"## AddOnVersion: 7\n"+
		"## APIVersion: 101041\n"+
		"; comment line\n"+
		"FooBar.lua\n")

	addon, err := ParseManifest(path, nil)
	require.NoError(t, err)
	require.NotNil(t, addon)

	assert.Equal(t, "Foo Bar", addon.Title)
	assert.Equal(t, "7", addon.Version)
	assert.Equal(t, "1.2.3", addon.VersionName)
	assert.Equal(t, "Foo Bar", addon.Name)
	assert.Equal(t, "foobar", addon.Path)
	assert.False(t, addon.IsLibrary)
	assert.Equal(t, path, addon.ManifestPath)
}

func TestParseManifestDirectivesAreCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "LibStub", "##title: LibStub\n##ISLIBRARY: True\n## addonversion:   3  \n")

	addon, err := ParseManifest(path, nil)
	require.NoError(t, err)
	require.NotNil(t, addon)

	assert.Equal(t, "LibStub", addon.Title)
	assert.Equal(t, "3", addon.Version)
	assert.True(t, addon.IsLibrary)
}

func TestParseManifestMalformedIsLibrary(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "Broken", "## Title: Broken\n## IsLibrary: maybe\n")

	addon, err := ParseManifest(path, nil)
	assert.Nil(t, addon)
	assert.ErrorIs(t, err, ErrMalformedManifest)
}

func TestParseManifestDataFileReturnsNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "HarvestMapData", "## Title: |c00FF00HarvestMap Data Files|r\n## Version: 3\n")

	addon, err := ParseManifest(path, nil)
	require.NoError(t, err)
	assert.Nil(t, addon)
}

func TestParseManifestEmptyTitleStillReturned(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "NoTitle", "## Title: |cFF0000|r\n## AddOnVersion: 2\n")

	addon, err := ParseManifest(path, nil)
	require.NoError(t, err)
	require.NotNil(t, addon)
	assert.Empty(t, addon.Title)
	assert.Equal(t, "2", addon.Version)
}

func TestParseManifestStripsByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "Foo Bar", "\ufeff## Title: Foo Bar\n## AddOnVersion: 3\n")

	addon, err := ParseManifest(path, nil)
	require.NoError(t, err)
	require.NotNil(t, addon)
	assert.Equal(t, "Foo Bar", addon.Title)
	assert.Equal(t, "3", addon.Version)
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo Bar |cFFAA00v1.2.3|r", "Foo Bar"},
		{"|c00ff00Green|r Title", "Green Title"},
		{"Combat Metrics 1.5", "Combat Metrics"},
		{"Dressing Room 2018", "Dressing Room 2018"},
		{"AUI - Advanced UI v3.7.2 1.1", "AUI - Advanced UI"},
		{"Lib|r |cABCDEFMap|r Pins", "Lib Map Pins"},
		{"  spaced  ", "spaced"},
		{"Foo ||rr", "Foo"},
		{"Foo |c|cFFAA00FFAA00Bar", "Foo Bar"},
		{"Foo |cFF|cAABBCCAA00", "Foo"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CleanTitle(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CleanTitle(got), "cleanup must be idempotent")
		})
	}
}

func TestIsDataFileTitle(t *testing.T) {
	assert.True(t, IsDataFileTitle("HarvestMap Data Files"))
	assert.True(t, IsDataFileTitle("|cFFFFFFDestinations DataFile|r"))
	assert.True(t, IsDataFileTitle("Some data file"))
	assert.False(t, IsDataFileTitle("DataBase Tools"))
	assert.False(t, IsDataFileTitle("Foo Bar"))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "foobar", NormalizePath("Foo Bar"))
	assert.Equal(t, "libaddonmenu-2.0", NormalizePath("LibAddonMenu-2.0"))
	assert.Equal(t, "abc", NormalizePath(" A\tB\nC "))
}
