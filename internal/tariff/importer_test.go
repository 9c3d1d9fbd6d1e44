package tariff

import (
	"context"
	"errors"
	"testing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/micasillero/courier/internal/errors"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"0.15", "0.15"},
		{"0", "0"},
		{"1", "1"},
		{"-", "0"},
		{"", "0"},
		{"  0.10  ", "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRate("dai", tt.raw)
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestParseRate_Invalid(t *testing.T) {
	for _, raw := range []string{"15%", "abc", "-0.1", "1.5"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseRate("isv", raw)
			assert.Error(t, err)
			assert.True(t, apperrors.IsInvalidInput(err))
		})
	}
}

func TestImporter_RecordsBadRowsAndContinues(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	importer := NewImporter(NewStore(db))
	ctx := context.Background()

	// Only the valid row reaches the database; its insert is made to fail so
	// the batch records all three errors without aborting.
	sqlMock.ExpectBegin()
	sqlMock.ExpectQuery(`INSERT INTO "tariff_items"`).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	sqlMock.ExpectRollback()

	rows := []ImportRow{
		{Code: "not-a-code", Description: "Malformed"},
		{Code: "0101.21.00.00", Description: "Reproductores de raza pura | Caballos", RateDAI: "0.10", RateISV: "0.15"},
		{Code: "0102.21.00.00", Description: "Bovinos", RateDAI: "bad"},
	}

	result, err := importer.Import(ctx, rows)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 3, result.Failed)
	assert.Len(t, result.Errors, 3)
	assert.Equal(t, 1, result.Errors[0].Line)
	assert.Equal(t, 2, result.Errors[1].Line)
	assert.Equal(t, 3, result.Errors[2].Line)
}

func TestImporter_BuildItemResolvesHierarchy(t *testing.T) {
	importer := NewImporter(nil)

	item, err := importer.buildItem(ImportRow{
		Code:        "6402.99.90.00",
		Description: "Los demás | Calzado",
		RateDAI:     "0.15",
		RateISV:     "0.15",
		Category:    "restricted",
	})
	assert.NoError(t, err)
	assert.Equal(t, "6402", item.ChapterCode)
	assert.Equal(t, "6402.99", item.HeadingCode)
	assert.Equal(t, "6402.99.00.00", item.ParentCode)
	assert.Equal(t, 3, item.HierarchyLevel)
	assert.True(t, item.IsLeaf)
	assert.Equal(t, "RESTRICTED", string(item.CourierCategory))
}

func TestParseCategory_DefaultsToAllowed(t *testing.T) {
	category, err := parseCategory("")
	assert.NoError(t, err)
	assert.Equal(t, "ALLOWED", string(category))

	_, err = parseCategory("FORBIDDEN")
	assert.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
}
