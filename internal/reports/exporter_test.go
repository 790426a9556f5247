package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomenalista/guestlist-backend/internal/event"
)

func exportFixture() (*event.Event, []event.Guest) {
	ev := &event.Event{
		ID:        "ev-1",
		Name:      "Launch Party",
		Date:      "2026-10-01",
		OwnerName: "Rita",
		Promoters: []event.Promoter{
			{ID: "promo-1", Name: "Ana"},
		},
	}
	guests := []event.Guest{
		{Name: "Zed", Phone: "555-0001", ListType: event.ListVIP, Confirmed: true, AddedBy: event.AddedBy{Kind: event.RefOwner, ID: "user-owner"}},
		{Name: "Joy", Phone: "555-0002", ListType: event.ListNormal, AddedBy: event.AddedBy{Kind: event.RefPromoter, ID: "promo-1"}},
		{Name: "Kim", Phone: "555-0003", ListType: event.ListNormal, Confirmed: true, CheckedIn: true, AddedBy: event.AddedBy{Kind: event.RefPublicLink, ID: "user-owner"}},
	}
	return ev, guests
}

func TestExportCSV(t *testing.T) {
	ev, guests := exportFixture()
	exporter := NewGuestListExporter()

	data, fname, contentType, err := exporter.Export(FormatCSV, ev, guests)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.True(t, strings.HasSuffix(fname, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, guestHeaders, records[0])
	assert.Equal(t, "Zed", records[1][0])
	assert.Equal(t, "Rita", records[1][6])
	assert.Equal(t, "Ana", records[2][6])
	assert.Equal(t, "public link", records[3][6])
	assert.Equal(t, "yes", records[3][4])
	assert.Equal(t, "yes", records[3][5])
}

func TestExportExcelAndPDFProduceFiles(t *testing.T) {
	ev, guests := exportFixture()
	exporter := NewGuestListExporter()

	data, fname, contentType, err := exporter.Export(FormatExcel, ev, guests)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, strings.HasSuffix(fname, ".xlsx"))
	assert.Contains(t, contentType, "spreadsheet")

	data, fname, contentType, err = exporter.Export(FormatPDF, ev, guests)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, strings.HasSuffix(fname, ".pdf"))
	assert.Equal(t, "application/pdf", contentType)
}

func TestExportUnknownFormat(t *testing.T) {
	ev, guests := exportFixture()
	exporter := NewGuestListExporter()

	_, _, _, err := exporter.Export("docx", ev, guests)
	assert.Error(t, err)
}
