package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NataPeralta/Store/internal/importer"
	"github.com/NataPeralta/Store/internal/webserver"
)

type bulkImportPayload struct {
	Products []importer.Row `json:"products" validate:"required,min=1"`
}

func registerImportRoutes() {
	webserver.ApiPOST("/products/bulk-import", bulkImport)
	webserver.ApiPOST("/products/bulk-import-file", bulkImportFile)
}

func bulkImport(c echo.Context) error {
	var payload bulkImportPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse import payload", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	result := importSvc.Import(c.Request().Context(), payload.Products)
	return okMsg(c, result, "Bulk import completed")
}

// bulkImportFile accepts a CSV or XLSX upload and runs it through the same
// row importer as the JSON variant.
func bulkImportFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No import file provided", nil)
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open import file", err.Error())
	}
	defer src.Close()

	rows, err := importer.ParseFile(fh.Filename, src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to parse import file", err.Error())
	}
	if len(rows) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Import file contains no rows", nil)
	}
	result := importSvc.Import(c.Request().Context(), rows)
	return okMsg(c, result, "Bulk import completed")
}
