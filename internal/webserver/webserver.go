// Package webserver hosts the REST surface: a public /api group for the
// storefront and a JWT-gated /api/admin group for the back-office.
package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/app"
	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/pkg/common"
)

// ContextDBKey is the echo context key the request-scoped *gorm.DB lives under.
const ContextDBKey = "store_db"

type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	admin  *echo.Group
	appCtx *app.Application
}

var server *WebServer

type serverValidator struct {
	validate *validator.Validate
}

func (v *serverValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Init builds the echo instance, groups and shared middleware. Route
// registration happens afterwards through the package-level helpers.
func Init(application *app.Application) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &serverValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Every handler reads the database through the request context rather
	// than a package global.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextDBKey, application.DB())
			return next(c)
		}
	})

	// Uploaded images and their thumbnails are served statically.
	e.Static("/uploads", application.Config().UploadDir())

	api := e.Group("/api")
	admin := api.Group("/admin")
	admin.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(application.Config().Web.Secret),
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/admin/login"
		},
	}))
	admin.Use(operatorLogMiddleware(application))

	server = &WebServer{root: e, api: api, admin: admin, appCtx: application}
	return server
}

// operatorLogMiddleware records mutating admin calls into the audit table.
func operatorLogMiddleware(application *app.Application) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
				if c.Path() == "/api/admin/login" {
					break
				}
				application.DB().Create(&domain.OperatorLog{
					ID:      common.UUIDint64(),
					OprName: OperatorName(c),
					OprIP:   c.RealIP(),
					Action:  c.Request().Method + " " + c.Path(),
					Desc:    fmt.Sprintf("status=%d", c.Response().Status),
					OptTime: time.Now(),
				})
			}
			return err
		}
	}
}

// Listen starts the HTTP server and blocks until it stops.
func Listen() error {
	cfg := server.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("starting web server on %s", addr)
	return server.root.Start(addr)
}

// Shutdown stops the HTTP server gracefully.
func Shutdown() error {
	return server.root.Close()
}

// Echo exposes the underlying instance (tests).
func Echo() *echo.Echo {
	return server.root
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(ContextDBKey).(*gorm.DB)
}

// Public route registration.

func PubGET(path string, h echo.HandlerFunc)  { server.api.GET(path, h) }
func PubPOST(path string, h echo.HandlerFunc) { server.api.POST(path, h) }

// Admin route registration (behind the JWT gate).

func ApiGET(path string, h echo.HandlerFunc)    { server.admin.GET(path, h) }
func ApiPOST(path string, h echo.HandlerFunc)   { server.admin.POST(path, h) }
func ApiPUT(path string, h echo.HandlerFunc)    { server.admin.PUT(path, h) }
func ApiDELETE(path string, h echo.HandlerFunc) { server.admin.DELETE(path, h) }
