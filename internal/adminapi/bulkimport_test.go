package adminapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/importer"
)

func TestBulkImportReportsResults(t *testing.T) {
	db := newTestDB(t)
	importSvc = importer.New(db)

	body := `{"products":[
		{"Nombre":"Remera lisa","Precio":"1000","Stock":"5","Categorias":"Remeras"},
		{"Nombre":"Remera estampada","Precio":"1500","Stock":"3","Categorias":"Remeras"}
	]}`
	c, rec := newTestContext(t, db, http.MethodPost, "/api/admin/products/bulk-import", body)
	require.NoError(t, bulkImport(c))

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, "OK", res.Code)
	assert.NotEmpty(t, res.Message)

	var products int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&products).Error)
	assert.EqualValues(t, 2, products)
	var categories int64
	require.NoError(t, db.Model(&domain.Category{}).Count(&categories).Error)
	assert.EqualValues(t, 1, categories)
}

func TestBulkImportRejectsEmptyPayload(t *testing.T) {
	db := newTestDB(t)
	importSvc = importer.New(db)

	c, rec := newTestContext(t, db, http.MethodPost, "/api/admin/products/bulk-import",
		`{"products":[]}`)
	require.NoError(t, bulkImport(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
