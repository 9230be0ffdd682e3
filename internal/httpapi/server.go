// Package httpapi serves the scheduling backend over REST with echo.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

type Server struct {
	backend  backend.Backend
	validate *validator.Validate
	loc      *time.Location
	logger   *zap.Logger
}

func NewServer(b backend.Backend, loc *time.Location, logger *zap.Logger) *Server {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		backend:  b,
		validate: NewValidator(),
		loc:      loc,
		logger:   logger,
	}
}

// NewEcho wires the API, the health check and the middleware.
func NewEcho(srv *Server, db Pinger, token string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(Recovery(srv.logger))
	e.Use(RequestLogger(srv.logger))

	e.GET("/healthz", HealthHandler(db))

	api := e.Group("/api", TokenAuth(token))
	srv.Register(api)
	return e
}

// Register mounts the routes on g.
func (s *Server) Register(g *echo.Group) {
	g.GET("/appointments/", s.listAppointments)
	g.POST("/appointments/", s.createAppointment)
	g.POST("/appointments/create-series/", s.createSeries)
	g.GET("/appointments/:id/", s.getAppointment)
	g.PATCH("/appointments/:id/", s.updateAppointment)
	g.PUT("/appointments/:id/", s.updateAppointment)
	g.DELETE("/appointments/:id/", s.deleteAppointment)

	g.GET("/absences/", s.listAbsences)
	g.POST("/absences/", s.createAbsence)
	g.PUT("/absences/:id/", s.updateAbsence)
	g.DELETE("/absences/:id/", s.deleteAbsence)

	g.GET("/practitioners/", s.listPractitioners)
	g.GET("/rooms/", s.listRooms)

	g.GET("/practice/instance/", s.getPractice)
	g.PUT("/practice/instance/", s.updatePractice)
}

// fail writes err as an ErrorBody.
func (s *Server) fail(c echo.Context, err error) error {
	var ve validator.ValidationErrors
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, backend.ErrorBody{
			Error:  "validation failed",
			Code:   backend.CodeValidation,
			Detail: ve.Error(),
		})
	case errors.As(err, &he) && he.Code < http.StatusInternalServerError:
		return c.JSON(he.Code, backend.ErrorBody{
			Error: http.StatusText(he.Code),
			Code:  backend.CodeValidation,
		})
	}

	code, body := backend.EncodeError(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.JSON(code, body)
}

// bind decodes the body into req and validates it.
func (s *Server) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return s.validate.Struct(req)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a number")
	}
	return id, nil
}

func queryDate(c echo.Context, name string) (model.Date, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be YYYY-MM-DD")
	}
	return d, nil
}

func queryID(c echo.Context, name string) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is not a number")
	}
	return id, nil
}
