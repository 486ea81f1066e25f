package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kizunalink/kizuna-backend/internal/attendance"
	"github.com/kizunalink/kizuna-backend/internal/event"
)

func sampleRoster() (*event.Event, []attendance.RosterEntry) {
	ev := &event.Event{
		ID:       42,
		Title:    "Rooftop Hanami",
		City:     "Tokyo",
		Category: "Social",
		StartsAt: time.Date(2026, 4, 3, 18, 0, 0, 0, time.UTC),
		Status:   event.StatusScheduled,
	}
	entries := []attendance.RosterEntry{
		{UserID: 7, FullName: "Kenji Sato", Greeting: "yoroshiku", AfterPartyInterest: true, CreatedAt: time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)},
		{UserID: 8, FullName: "Mina Park", Greeting: "", AfterPartyInterest: false, CreatedAt: time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)},
	}
	return ev, entries
}

func TestExportCSV(t *testing.T) {
	ev, entries := sampleRoster()

	payload, filename, contentType, err := NewRosterExporter().Export("csv", ev, entries)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	assert.True(t, strings.HasPrefix(filename, "roster_event_42_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"user_id", "full_name", "greeting", "after_party_interest", "joined_at"}, records[0])
	assert.Equal(t, "Kenji Sato", records[1][1])
	assert.Equal(t, "true", records[1][3])
}

func TestExportExcel(t *testing.T) {
	ev, entries := sampleRoster()

	payload, filename, contentType, err := NewRosterExporter().Export("excel", ev, entries)
	require.NoError(t, err)

	assert.Contains(t, contentType, "spreadsheet")
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Roster")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
}

func TestExportPDF(t *testing.T) {
	ev, entries := sampleRoster()

	payload, filename, contentType, err := NewRosterExporter().Export("pdf", ev, entries)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestExportUnknownFormat(t *testing.T) {
	ev, entries := sampleRoster()

	_, _, _, err := NewRosterExporter().Export("docx", ev, entries)
	assert.Error(t, err)
}
