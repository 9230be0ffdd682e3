package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

func (s *Server) listAppointments(c echo.Context) error {
	var (
		filter backend.AppointmentFilter
		err    error
	)
	if filter.From, err = queryDate(c, "start_date"); err != nil {
		return s.fail(c, err)
	}
	if filter.To, err = queryDate(c, "end_date"); err != nil {
		return s.fail(c, err)
	}
	if filter.PractitionerID, err = queryID(c, "practitioner"); err != nil {
		return s.fail(c, err)
	}
	if filter.RoomID, err = queryID(c, "room"); err != nil {
		return s.fail(c, err)
	}

	appointments, err := s.backend.ListAppointments(c.Request().Context(), filter)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, appointments)
}

func (s *Server) getAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	appt, err := s.backend.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (s *Server) createAppointment(c echo.Context) error {
	var req appointmentRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	created, err := s.backend.CreateAppointment(c.Request().Context(), req.appointment())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req patchRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	updated, err := s.backend.UpdateAppointment(c.Request().Context(), id, req.patch())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteAppointment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.backend.DeleteAppointment(c.Request().Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) createSeries(c echo.Context) error {
	var req seriesRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	res, err := s.backend.CreateSeries(c.Request().Context(), req.spec())
	if err != nil && res.Requested > 0 {
		s.logger.Warn("Series stopped part way",
			zap.String("series_id", res.SeriesID.String()),
			zap.Int("created", len(res.Created)),
			zap.Int("requested", res.Requested),
			zap.Error(err),
		)
		code, body := backend.EncodeError(err)
		return c.JSON(code, backend.SeriesFailure{
			SeriesResponse: backend.SeriesResponse{SeriesResult: res},
			ErrorBody:      body,
		})
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, backend.SeriesResponse{Success: true, SeriesResult: res})
}

func (s *Server) listAbsences(c echo.Context) error {
	var (
		filter backend.AbsenceFilter
		err    error
	)
	if filter.From, err = queryDate(c, "start_date"); err != nil {
		return s.fail(c, err)
	}
	if filter.To, err = queryDate(c, "end_date"); err != nil {
		return s.fail(c, err)
	}
	if filter.PractitionerID, err = queryID(c, "practitioner"); err != nil {
		return s.fail(c, err)
	}
	if raw := c.QueryParam("is_approved"); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			return s.fail(c, echo.NewHTTPError(http.StatusBadRequest, "is_approved must be a boolean"))
		}
		filter.ApprovedOnly = approved
	}

	absences, err := s.backend.ListAbsences(c.Request().Context(), filter)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, absences)
}

func (s *Server) createAbsence(c echo.Context) error {
	var req absenceRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	created, err := s.backend.CreateAbsence(c.Request().Context(), req.absence(0))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateAbsence(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	var req absenceRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	updated, err := s.backend.UpdateAbsence(c.Request().Context(), req.absence(id))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteAbsence(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}
	if err := s.backend.DeleteAbsence(c.Request().Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listPractitioners(c echo.Context) error {
	practitioners, err := s.backend.ListPractitioners(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, practitioners)
}

func (s *Server) listRooms(c echo.Context) error {
	rooms, err := s.backend.ListRooms(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

func (s *Server) getPractice(c echo.Context) error {
	hours, err := s.backend.GetOpeningHours(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	if hours == nil {
		hours = model.OpeningHours{}
	}
	return c.JSON(http.StatusOK, model.Practice{ID: 1, OpeningHours: hours})
}

func (s *Server) updatePractice(c echo.Context) error {
	var req practiceRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	if err := s.backend.UpdateOpeningHours(c.Request().Context(), req.OpeningHours); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, model.Practice{ID: 1, OpeningHours: req.OpeningHours})
}
