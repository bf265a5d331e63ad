package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NataPeralta/Store/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrator().AutoMigrate(domain.Tables...))
	return db
}

func TestImportDeduplicatesCategoriesWithinRun(t *testing.T) {
	db := newTestDB(t)
	im := New(db)

	result := im.Import(context.Background(), []Row{
		{"Nombre": "Remera lisa", "Precio": "10", "Stock": "5", "Activo": "1", "Categorias": "Verano"},
		{"Nombre": "Short de baño", "Precio": "15", "Stock": "3", "Activo": "1", "Categorias": "Verano"},
	})

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.CategoriesCreated)
	assert.Empty(t, result.Errors)

	var count int64
	require.NoError(t, db.Model(&domain.Category{}).Where("name = ?", "Verano").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var p domain.Product
	require.NoError(t, db.Preload("Categories").Where("name = ?", "Remera lisa").First(&p).Error)
	require.Len(t, p.Categories, 1)
	assert.Equal(t, "Verano", p.Categories[0].Name)
	assert.True(t, p.Active)
	assert.Equal(t, 5, p.Stock)
}

func TestImportReusesExistingCategory(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.Category{Name: "Invierno", Active: true}).Error)
	im := New(db)

	result := im.Import(context.Background(), []Row{
		{"Nombre": "Campera", "Precio": "99", "Categorias": "Invierno"},
	})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.CategoriesCreated)

	var count int64
	require.NoError(t, db.Model(&domain.Category{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportRowFailureDoesNotAbortBatch(t *testing.T) {
	db := newTestDB(t)
	im := New(db)

	result := im.Import(context.Background(), []Row{
		{"Nombre": "Primero", "Precio": "10"},
		{"Precio": "20"},
		{"Nombre": "Tercero", "Precio": "30"},
	})

	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Unknown", result.Errors[0].Product)
	assert.Contains(t, result.Errors[0].Error, "name is required")

	var count int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestImportEnglishColumnNames(t *testing.T) {
	db := newTestDB(t)
	im := New(db)

	result := im.Import(context.Background(), []Row{
		{
			"name": "Basic tee", "price": "12.5", "stock": 7,
			"active": true, "categories": []string{"Summer", "Sale"},
			"margin": "250%", "originalPrice": "5",
		},
	})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.CategoriesCreated)
	assert.Empty(t, result.Errors)

	var p domain.Product
	require.NoError(t, db.Preload("Categories").Where("name = ?", "Basic tee").First(&p).Error)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 7, p.Stock)
	assert.True(t, p.Active)
	require.NotNil(t, p.Margin)
	assert.Equal(t, 250.0, *p.Margin)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, 5.0, *p.OriginalPrice)
	assert.Len(t, p.Categories, 2)
}

func TestImportCommaSeparatedCategories(t *testing.T) {
	db := newTestDB(t)
	im := New(db)

	result := im.Import(context.Background(), []Row{
		{"Nombre": "Vestido", "Precio": "40", "Categorias": "Verano, Fiesta ,Verano"},
	})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.CategoriesCreated)
}

func TestImportInactiveRowStaysInactive(t *testing.T) {
	db := newTestDB(t)
	im := New(db)

	result := im.Import(context.Background(), []Row{
		{"Nombre": "Oculto", "Precio": "10", "Activo": "0"},
		{"Nombre": "Visible", "Precio": "10", "Activo": "1"},
	})
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Errors)

	var hidden, visible domain.Product
	require.NoError(t, db.Where("name = ?", "Oculto").First(&hidden).Error)
	require.NoError(t, db.Where("name = ?", "Visible").First(&visible).Error)
	assert.False(t, hidden.Active)
	assert.True(t, visible.Active)
}

func TestImportRollbackDiscardsCreatedCategories(t *testing.T) {
	db := newTestDB(t)
	im := New(db)

	result := im.Import(context.Background(), []Row{
		{"Nombre": "Roto", "Precio": "abc", "Categorias": "Nueva"},
	})
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.CategoriesCreated)
	require.Len(t, result.Errors, 1)

	// The failed row's category rolled back with it.
	var count int64
	require.NoError(t, db.Model(&domain.Category{}).Where("name = ?", "Nueva").Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// A later run creates it cleanly and links to the real row.
	result = im.Import(context.Background(), []Row{
		{"Nombre": "Sano", "Precio": "10", "Categorias": "Nueva"},
	})
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.CategoriesCreated)

	var p domain.Product
	require.NoError(t, db.Preload("Categories").Where("name = ?", "Sano").First(&p).Error)
	require.Len(t, p.Categories, 1)
	assert.Equal(t, "Nueva", p.Categories[0].Name)
}

func TestParseMargin(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
	}{
		{"250%", 250},
		{" 30 % ", 30},
		{"15.5", 15.5},
		{120, 120},
	}
	for _, tc := range cases {
		got, err := ParseMargin(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseMargin("abc")
	assert.Error(t, err)
}

func TestParseActive(t *testing.T) {
	assert.True(t, parseActive("1"))
	assert.True(t, parseActive("true"))
	assert.True(t, parseActive(true))
	assert.True(t, parseActive(1))
	assert.False(t, parseActive("0"))
	assert.False(t, parseActive(""))
	assert.False(t, parseActive(nil))
}

func TestParseCSVSpanishHeaders(t *testing.T) {
	csv := strings.Join([]string{
		"Nombre,Categorias,Precio,Stock,Activo,Margen",
		"Remera,Verano,10,5,1,250%",
		"Pantalón,\"Invierno, Oferta\",20,2,0,",
	}, "\n")

	rows, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Remera", rows[0]["Nombre"])
	assert.Equal(t, "250%", rows[0]["Margen"])
	assert.Equal(t, "Invierno, Oferta", rows[1]["Categorias"])
	_, hasMargin := rows[1]["Margen"]
	assert.False(t, hasMargin)
}
