// Package adminapi exposes the JWT-gated back-office REST surface.
package adminapi

import (
	"github.com/NataPeralta/Store/internal/app"
	"github.com/NataPeralta/Store/internal/gallery"
	"github.com/NataPeralta/Store/internal/importer"
	"github.com/NataPeralta/Store/internal/order"
)

var (
	appCtx     *app.Application
	orderSvc   *order.Service
	importSvc  *importer.Importer
	gallerySvc *gallery.Service
)

// Init wires the admin handlers to their services and registers every route.
func Init(application *app.Application) {
	appCtx = application
	orderSvc = order.NewService(application.DB(), application.Bus())
	importSvc = importer.New(application.DB())
	gallerySvc = gallery.NewService(application.DB(), application.Config().UploadDir())

	registerAuthRoutes()
	registerProductRoutes()
	registerCategoryRoutes()
	registerOrderRoutes()
	registerCustomerRoutes()
	registerGalleryRoutes()
	registerImportRoutes()
	registerSettingsRoutes()
	registerStatsRoutes()
}
