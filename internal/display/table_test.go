package display

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masjidboard/masjidboard/internal/prayer"
)

func init() {
	// Plain output keeps the assertions readable.
	SetEnabled(false)
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Prayer", "Azan"})
	table.AddRow([]string{"Fajr", "05:30"})
	table.AddRow([]string{"Dhuhr", "12:14"})

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // header, separator, two rows

	assert.Contains(t, lines[0], "Prayer")
	assert.Contains(t, lines[2], "Fajr")
	assert.Contains(t, lines[3], "Dhuhr")
}

func TestRenderSchedule(t *testing.T) {
	entries, next, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "04:00"))
	require.NoError(t, err)
	require.NotNil(t, next)

	out := RenderSchedule(entries, "15:04")
	assert.Contains(t, out, "Fajr")
	assert.Contains(t, out, "05:30")
	assert.Contains(t, out, "05:50")
	assert.Contains(t, out, "Sunrise")
	assert.Contains(t, out, "Isha")
}

func TestRenderSchedule_MissingSunrise(t *testing.T) {
	day := displayDay(thursday)
	day.Sunrise = ""

	entries, _, err := Derive(day, defaultConfig(), at(thursday, "04:00"))
	require.NoError(t, err)

	out := RenderSchedule(entries, "15:04")
	assert.Contains(t, out, "--:--")
}

func TestNextLine(t *testing.T) {
	now := at(thursday, "11:14")
	entries, next, err := Derive(displayDay(thursday), defaultConfig(), now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, prayer.Dhuhr, *next)

	line := NextLine(entries, now)
	assert.Contains(t, line, "Dhuhr")
	assert.Contains(t, line, "12:14")
	assert.Contains(t, line, "1h 0m")
}

func TestNextLine_AllDone(t *testing.T) {
	entries, next, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "23:00"))
	require.NoError(t, err)
	require.Nil(t, next)

	assert.Equal(t, "All prayers completed for today", NextLine(entries, time.Time{}))
}
