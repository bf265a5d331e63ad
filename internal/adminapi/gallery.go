package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NataPeralta/Store/internal/gallery"
	"github.com/NataPeralta/Store/internal/webserver"
)

type galleryRenamePayload struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

func registerGalleryRoutes() {
	webserver.ApiGET("/gallery", listGallery)
	webserver.ApiPOST("/gallery/upload", uploadGalleryImage)
	webserver.ApiPUT("/gallery/:id", renameGalleryImage)
	webserver.ApiDELETE("/gallery/:id", deleteGalleryImage)
	webserver.ApiPOST("/gallery/generate-thumbnails", generateThumbnails)
}

func listGallery(c echo.Context) error {
	page, pageSize := parsePagination(c)
	images, total, err := gallerySvc.List(page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query gallery", err.Error())
	}
	return paged(c, images, total, page, pageSize)
}

func uploadGalleryImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		fh, err = c.FormFile("file")
	}
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No image file provided", nil)
	}
	img, err := gallerySvc.SaveUpload(fh)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store image", err.Error())
	}
	return created(c, img, "Image uploaded")
}

func renameGalleryImage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid image ID", nil)
	}
	var payload galleryRenamePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse rename", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	err = gallerySvc.Rename(id, payload.Name)
	if errors.Is(err, gallery.ErrImageNotFound) {
		return fail(c, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to rename image", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func deleteGalleryImage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid image ID", nil)
	}
	err = gallerySvc.Delete(id)
	if errors.Is(err, gallery.ErrImageNotFound) {
		return fail(c, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete image", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func generateThumbnails(c echo.Context) error {
	generated, failed, err := gallerySvc.GenerateMissingThumbnails()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "THUMBNAIL_FAILED", "Failed to generate thumbnails", err.Error())
	}
	return ok(c, map[string]interface{}{"generated": generated, "failed": failed})
}
