package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

type appointmentRequest struct {
	PatientID       int64                   `json:"patient" validate:"required,gt=0"`
	PractitionerID  int64                   `json:"practitioner" validate:"required,gt=0"`
	RoomID          int64                   `json:"room" validate:"required,gt=0"`
	TreatmentID     int64                   `json:"treatment" validate:"gte=0"`
	PrescriptionID  *int64                  `json:"prescription" validate:"omitempty,gt=0"`
	SeriesID        *uuid.UUID              `json:"series_id"`
	Start           time.Time               `json:"appointment_date" validate:"required"`
	DurationMinutes int                     `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	Status          model.AppointmentStatus `json:"status" validate:"omitempty,appointment_status"`
	Notes           string                  `json:"notes" validate:"max=2000"`
}

func (r appointmentRequest) appointment() model.Appointment {
	return model.Appointment{
		PatientID:       r.PatientID,
		PractitionerID:  r.PractitionerID,
		RoomID:          r.RoomID,
		TreatmentID:     r.TreatmentID,
		PrescriptionID:  r.PrescriptionID,
		SeriesID:        r.SeriesID,
		Start:           r.Start,
		DurationMinutes: r.DurationMinutes,
		Status:          r.Status,
		Notes:           r.Notes,
	}
}

// patchRequest carries either geometry fields or a status.
type patchRequest struct {
	Start           *time.Time               `json:"appointment_date"`
	DurationMinutes *int                     `json:"duration_minutes" validate:"omitempty,gt=0,lte=1440"`
	PractitionerID  *int64                   `json:"practitioner" validate:"omitempty,gt=0"`
	RoomID          *int64                   `json:"room" validate:"omitempty,gt=0"`
	Status          *model.AppointmentStatus `json:"status" validate:"omitempty,appointment_status"`
	Notes           *string                  `json:"notes" validate:"omitempty,max=2000"`
}

func (r patchRequest) patch() backend.AppointmentPatch {
	return backend.AppointmentPatch{
		Start:           r.Start,
		DurationMinutes: r.DurationMinutes,
		PractitionerID:  r.PractitionerID,
		RoomID:          r.RoomID,
		Status:          r.Status,
		Notes:           r.Notes,
	}
}

type seriesRequest struct {
	PrescriptionID  int64           `json:"prescription_id" validate:"gte=0"`
	PatientID       int64           `json:"patient" validate:"required,gt=0"`
	TreatmentID     int64           `json:"treatment" validate:"gte=0"`
	StartDate       model.Date      `json:"start_date"`
	StartTime       model.TimeOfDay `json:"start_time"`
	IntervalDays    int             `json:"days_between_sessions" validate:"required,gte=1,lte=365"`
	Count           int             `json:"number_of_appointments" validate:"required,gte=1,lte=100"`
	PractitionerID  *int64          `json:"practitioner" validate:"omitempty,gt=0"`
	RoomID          *int64          `json:"room" validate:"omitempty,gt=0"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	Notes           string          `json:"notes" validate:"max=2000"`
}

func (r seriesRequest) spec() model.SeriesSpec {
	return model.SeriesSpec{
		PrescriptionID:          r.PrescriptionID,
		PatientID:               r.PatientID,
		TreatmentID:             r.TreatmentID,
		StartDate:               r.StartDate,
		StartTime:               r.StartTime,
		IntervalDays:            r.IntervalDays,
		Count:                   r.Count,
		PreferredPractitionerID: r.PractitionerID,
		PreferredRoomID:         r.RoomID,
		DurationMinutes:         r.DurationMinutes,
		Notes:                   r.Notes,
	}
}

type absenceRequest struct {
	PractitionerID int64             `json:"practitioner" validate:"required,gt=0"`
	Type           model.AbsenceType `json:"absence_type" validate:"omitempty,absence_type"`
	StartDate      model.Date        `json:"start_date"`
	EndDate        model.Date        `json:"end_date"`
	StartTime      *model.TimeOfDay  `json:"start_time"`
	EndTime        *model.TimeOfDay  `json:"end_time"`
	IsFullDay      bool              `json:"is_full_day"`
	IsApproved     bool              `json:"is_approved"`
	Notes          string            `json:"notes" validate:"max=2000"`
}

func (r absenceRequest) absence(id int64) model.Absence {
	return model.Absence{
		ID:             id,
		PractitionerID: r.PractitionerID,
		Type:           r.Type,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		IsFullDay:      r.IsFullDay,
		IsApproved:     r.IsApproved,
		Notes:          r.Notes,
	}
}

type practiceRequest struct {
	OpeningHours model.OpeningHours `json:"opening_hours" validate:"required"`
}

// NewValidator returns a validator with the scheduling tags registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("appointment_status", func(fl validator.FieldLevel) bool {
		return model.AppointmentStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("absence_type", func(fl validator.FieldLevel) bool {
		return model.AbsenceType(fl.Field().String()).Valid()
	})
	return validate
}
