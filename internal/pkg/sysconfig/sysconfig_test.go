package sysconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "system.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewStore_LoadsFile(t *testing.T) {
	path := writeConfig(t, "timezone: Asia/Manila\nclock_out_grace_period_minutes: 15\n")

	store := NewStore(path)
	settings := store.Settings()

	assert.Equal(t, "Asia/Manila", settings.Timezone)
	assert.Equal(t, 15, settings.ClockOutGracePeriodMinutes)
	assert.Equal(t, 15*time.Minute, settings.GracePeriod())
}

func TestNewStore_MissingFileFallsBackToDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, Defaults(), store.Settings())
}

func TestNewStore_FillsMissingFields(t *testing.T) {
	path := writeConfig(t, "timezone: Europe/Berlin\n")

	settings := NewStore(path).Settings()

	assert.Equal(t, "Europe/Berlin", settings.Timezone)
	assert.Equal(t, DefaultClockOutGracePeriodMinutes, settings.ClockOutGracePeriodMinutes)
}

func TestStore_RefreshKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, "timezone: Asia/Tokyo\nclock_out_grace_period_minutes: 10\n")
	store := NewStore(path)

	require.NoError(t, os.WriteFile(path, []byte("timezone: [broken"), 0o600))
	err := store.Refresh()

	assert.Error(t, err)
	assert.Equal(t, "Asia/Tokyo", store.Settings().Timezone)
	assert.Equal(t, 10, store.Settings().ClockOutGracePeriodMinutes)
}

func TestStore_RefreshPicksUpChanges(t *testing.T) {
	path := writeConfig(t, "timezone: Asia/Tokyo\n")
	store := NewStore(path)

	require.NoError(t, os.WriteFile(path, []byte("timezone: America/New_York\nclock_out_grace_period_minutes: 45\n"), 0o600))
	require.NoError(t, store.Refresh())

	assert.Equal(t, "America/New_York", store.Settings().Timezone)
	assert.Equal(t, 45, store.Settings().ClockOutGracePeriodMinutes)
}

func TestParse_RejectsNegativeGrace(t *testing.T) {
	_, err := Parse([]byte("clock_out_grace_period_minutes: -5\n"))
	assert.Error(t, err)
}

func TestSettings_Location(t *testing.T) {
	loc, err := Settings{Timezone: "Asia/Manila"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Manila", loc.String())

	_, err = Settings{Timezone: "Not/AZone"}.Location()
	assert.Error(t, err)

	loc, err = Settings{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestParse_ExplicitZeroGraceIsKept(t *testing.T) {
	settings, err := Parse([]byte("timezone: UTC\nclock_out_grace_period_minutes: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, settings.ClockOutGracePeriodMinutes)
	assert.Equal(t, time.Duration(0), settings.GracePeriod())
}

func TestParse_EmptyDocumentUsesDefaults(t *testing.T) {
	settings, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), settings)
}

func TestParse_RejectsUnknownTimezone(t *testing.T) {
	_, err := Parse([]byte("timezone: Asia/Manilla\n"))
	assert.Error(t, err)
}

func TestStore_RefreshRejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, "timezone: Asia/Manila\nclock_out_grace_period_minutes: 10\n")
	store := NewStore(path)
	require.Equal(t, "Asia/Manila", store.Location().String())

	require.NoError(t, os.WriteFile(path, []byte("timezone: Asia/Manilla\n"), 0o600))
	err := store.Refresh()

	assert.Error(t, err)
	assert.Equal(t, "Asia/Manila", store.Settings().Timezone)
	assert.Equal(t, "Asia/Manila", store.Location().String())
}

func TestStore_LocationFollowsRefresh(t *testing.T) {
	path := writeConfig(t, "timezone: Asia/Tokyo\n")
	store := NewStore(path)
	assert.Equal(t, "Asia/Tokyo", store.Location().String())

	require.NoError(t, os.WriteFile(path, []byte("timezone: Europe/Berlin\n"), 0o600))
	require.NoError(t, store.Refresh())
	assert.Equal(t, "Europe/Berlin", store.Location().String())
}

func TestNewStore_MissingFileUsesUTC(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, time.UTC, store.Location())
}

func TestNewStaticStore_KeepsZeroGrace(t *testing.T) {
	store := NewStaticStore(Settings{Timezone: "Asia/Manila"})

	assert.Equal(t, 0, store.Settings().ClockOutGracePeriodMinutes)
	assert.Equal(t, "Asia/Manila", store.Location().String())
}
