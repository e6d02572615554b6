package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sdscatalog/app/models"
	"github.com/shashiranjanraj/sdscatalog/app/repositories"
	"github.com/shashiranjanraj/sdscatalog/pkg/database"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SafetyDataSheet{}))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func sheet(name, number, cas string) *models.SafetyDataSheet {
	return &models.SafetyDataSheet{
		ProductName:    name,
		ProductNumber:  number,
		ProductBrand:   "sial",
		CASNumber:      cas,
		SignalWord:     "Warning",
		Hazards:        datatypes.JSONSlice[string]{"GHS07"},
		Statements:     datatypes.JSONSlice[string]{"H319"},
		PDFDownloadURL: "http://blobs.local/" + number + ".pdf",
		Data:           datatypes.JSON(`{"v":1}`),
	}
}

func TestSdsRepository_UpsertDeduplicatesOnNaturalKey(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewSdsRepository(newDB(t))

	first := sheet("Acetone", "179124", "67-64-1")
	require.NoError(t, repo.Upsert(ctx, first))
	require.NotZero(t, first.ID)

	other := sheet("Ethanol", "E7023", "64-17-5")
	require.NoError(t, repo.Upsert(ctx, other))

	again := sheet("Acetone", "179124", "67-64-1")
	again.SignalWord = "Danger"
	again.Hazards = datatypes.JSONSlice[string]{"GHS02", "GHS07"}
	again.Statements = datatypes.JSONSlice[string]{"H225", "H319", "H336"}
	again.PDFDownloadURL = "http://blobs.local/v2.pdf"
	again.Data = datatypes.JSON(`{"v":2}`)
	require.NoError(t, repo.Upsert(ctx, again))

	assert.Equal(t, first.ID, again.ID, "upsert keeps the existing row")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stored, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Danger", stored.SignalWord)
	assert.Equal(t, datatypes.JSONSlice[string]{"GHS02", "GHS07"}, stored.Hazards)
	assert.Equal(t, datatypes.JSONSlice[string]{"H225", "H319", "H336"}, stored.Statements)
	assert.Equal(t, "http://blobs.local/v2.pdf", stored.PDFDownloadURL)
	assert.JSONEq(t, `{"v":2}`, string(stored.Data))
}

func TestSdsRepository_FindByIDsOmitsUnknown(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewSdsRepository(newDB(t))

	a := sheet("Acetone", "179124", "67-64-1")
	b := sheet("Ethanol", "E7023", "64-17-5")
	require.NoError(t, repo.Upsert(ctx, a))
	require.NoError(t, repo.Upsert(ctx, b))

	got, err := repo.FindByIDs(ctx, []uint{b.ID, 9999, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	got, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSdsRepository_FindByIDNotFound(t *testing.T) {
	_, err := repositories.NewSdsRepository(newDB(t)).FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSdsRepository_SearchPrefix(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewSdsRepository(newDB(t))

	for _, s := range []*models.SafetyDataSheet{
		sheet("Acetone", "179124", "67-64-1"),
		sheet("Acetonitrile", "271004", "75-05-8"),
		sheet("Ethanol", "E7023", "64-17-5"),
		sheet("100%_Pure", "P100", "0-00-0"),
	} {
		require.NoError(t, repo.Upsert(ctx, s))
	}

	names := func(sheets []models.SafetyDataSheet) []string {
		out := make([]string, len(sheets))
		for i, s := range sheets {
			out[i] = s.ProductName
		}
		return out
	}

	got, err := repo.Search(ctx, "aceto", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acetone", "Acetonitrile"}, names(got))

	got, err = repo.Search(ctx, "64-17", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ethanol"}, names(got))

	got, err = repo.Search(ctx, "e70", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ethanol"}, names(got), "product number, case-insensitive")

	got, err = repo.Search(ctx, "tone", 0)
	require.NoError(t, err)
	assert.Empty(t, got, "prefix only")

	got, err = repo.Search(ctx, "100%_", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"100%_Pure"}, names(got))

	got, err = repo.Search(ctx, "a", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSdsRepository_Page(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewSdsRepository(newDB(t))

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Upsert(ctx, sheet(fmt.Sprintf("Chem %d", i), fmt.Sprintf("N%d", i), fmt.Sprintf("%d-00-0", i))))
	}

	var seen int
	var after uint
	for {
		page, err := repo.Page(ctx, after, 3)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 3)
		seen += len(page)
		after = page[len(page)-1].ID
	}
	assert.Equal(t, 7, seen)
}
