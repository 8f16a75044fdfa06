package cipher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileStoreSaveAndGet(t *testing.T) {
	ps := NewProfileStore("", nil)

	profile := &Profile{
		Name:        "daily",
		Description: "Daily key for the field unit",
		Tags:        []string{"field", "legacy"},
		Settings:    legacySettings(),
		Flags:       DefaultFlags(),
	}
	require.NoError(t, ps.Save(profile))

	got, ok := ps.Get("daily")
	require.True(t, ok)
	assert.Equal(t, profile.Description, got.Description)
	assert.NotEmpty(t, got.CreatedAt)
	assert.NotEmpty(t, got.UpdatedAt)

	_, ok = ps.Get("missing")
	assert.False(t, ok)
}

func TestProfileStoreRejectsInvalidProfiles(t *testing.T) {
	ps := NewProfileStore("", nil)

	require.Error(t, ps.Save(&Profile{Settings: legacySettings(), Flags: DefaultFlags()}), "empty name")

	bad := legacySettings()
	bad.Reflector = "Q"
	require.Error(t, ps.Save(&Profile{Name: "bad", Settings: bad, Flags: DefaultFlags()}))

	flags := DefaultFlags()
	flags.Block = 0
	require.Error(t, ps.Save(&Profile{Name: "bad-flags", Settings: legacySettings(), Flags: flags}))

	assert.Empty(t, ps.List())
}

func TestProfileStoreListSearchDelete(t *testing.T) {
	ps := NewProfileStore("", nil)
	require.NoError(t, ps.Save(&Profile{Name: "zulu", Settings: inop60Settings(), Flags: DefaultFlags(), Tags: []string{"archive"}}))
	require.NoError(t, ps.Save(&Profile{Name: "alpha", Settings: legacySettings(), Flags: DefaultFlags()}))
	require.NoError(t, ps.Save(&Profile{Name: "mike", Settings: inop38Settings(), Flags: DefaultFlags(), Description: "Harbour traffic"}))

	var names []string
	for _, p := range ps.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, names)

	results := ps.Search("INOP")
	require.Len(t, results, 2)
	assert.Equal(t, "mike", results[0].Name)
	assert.Equal(t, "zulu", results[1].Name)

	require.Len(t, ps.Search("harbour"), 1)
	require.Len(t, ps.Search("ARCHIVE"), 1)
	assert.Empty(t, ps.Search("nothing"))

	require.NoError(t, ps.Delete("mike"))
	assert.Len(t, ps.List(), 2)
}

func TestProfileStorePersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	ps := NewProfileStore(dir, nil)

	profile := &Profile{Name: "night shift", Settings: inop38Settings(), Flags: DefaultFlags()}
	require.NoError(t, ps.Save(profile))

	path := filepath.Join(dir, "night_shift.json")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded := NewProfileStore(dir, nil)
	require.NoError(t, reloaded.Load())
	got, ok := reloaded.Get("night shift")
	require.True(t, ok)
	assert.Equal(t, profile.Settings, got.Settings)
	assert.Equal(t, profile.Flags, got.Flags)

	require.NoError(t, reloaded.Delete("night shift"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestProfileStoreLoadRejectsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	ps := NewProfileStore(dir, nil)
	require.ErrorContains(t, ps.Load(), "broken.json")
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"daily key":   "daily_key",
		"../../etc":   "etc",
		"ops-2024_v1": "ops-2024_v1",
		"///":         "profile",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
