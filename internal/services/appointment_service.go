package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/store"
)

type BookingInput struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	PatientName string `json:"patient_name"`
	PatientID   string `json:"patient_id"`
	Notes       string `json:"notes"`
}

type SlotEntry struct {
	Time        string              `json:"time"`
	Available   bool                `json:"available"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

type DaySchedule struct {
	Date         string               `json:"date"`
	Slots        []SlotEntry          `json:"slots"`
	Appointments []models.Appointment `json:"appointments"`
}

// AppointmentService allocates the clinic's fixed daily slots. The availability
// check and the insert are two calls; the remote schema backs this with a unique
// index on active (date, time) pairs.
type AppointmentService struct {
	store store.Persistence
	now   func() time.Time
}

func NewAppointmentService(persistence store.Persistence) *AppointmentService {
	return &AppointmentService{store: persistence, now: time.Now}
}

func (service *AppointmentService) IsAvailable(ctx context.Context, date string, slot string) (bool, error) {
	date = strings.TrimSpace(date)
	slot = strings.TrimSpace(slot)
	if _, err := ParseDay(date); err != nil {
		return false, err
	}
	if !IsTimeSlot(slot) {
		return false, invalid("time", ReasonInvalidTime)
	}
	return service.isFree(ctx, date, slot)
}

func (service *AppointmentService) isFree(ctx context.Context, date string, slot string) (bool, error) {
	appointments := make([]models.Appointment, 0)
	query := store.Query{}.Eq("date", date).Eq("time", slot)
	if err := service.store.List(ctx, store.Appointments, query, &appointments); err != nil {
		return false, err
	}
	for _, appointment := range appointments {
		if appointment.Occupies() {
			return false, nil
		}
	}
	return true, nil
}

func (service *AppointmentService) Book(ctx context.Context, input BookingInput) (models.Appointment, error) {
	input, err := normalizeBookingInput(input)
	if err != nil {
		return models.Appointment{}, err
	}

	free, err := service.isFree(ctx, input.Date, input.Time)
	if err != nil {
		return models.Appointment{}, err
	}
	if !free {
		return models.Appointment{}, ErrSlotUnavailable
	}

	appointment := models.Appointment{
		ID:          uuid.NewString(),
		PatientName: input.PatientName,
		PatientID:   input.PatientID,
		Date:        input.Date,
		Time:        input.Time,
		Status:      models.AppointmentScheduled,
		Notes:       input.Notes,
		CreatedAt:   stamp(service.now()),
	}
	if err := service.store.Insert(ctx, store.Appointments, &appointment); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Appointment{}, ErrSlotUnavailable
		}
		return models.Appointment{}, err
	}
	return appointment, nil
}

func normalizeBookingInput(input BookingInput) (BookingInput, error) {
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	input.PatientName = strings.TrimSpace(input.PatientName)
	input.PatientID = strings.TrimSpace(input.PatientID)
	input.Notes = strings.TrimSpace(input.Notes)

	if _, err := ParseDay(input.Date); err != nil {
		return BookingInput{}, err
	}
	if !IsTimeSlot(input.Time) {
		return BookingInput{}, invalid("time", ReasonInvalidTime)
	}
	if input.PatientName == "" {
		return BookingInput{}, invalid("patient_name", ReasonRequired)
	}
	return input, nil
}

// Cancel is idempotent: an already cancelled appointment is left untouched.
func (service *AppointmentService) Cancel(ctx context.Context, id string) error {
	appointment, err := service.find(ctx, id)
	if err != nil {
		return err
	}
	if appointment.Status == models.AppointmentCancelled {
		return nil
	}
	return service.setStatus(ctx, id, models.AppointmentCancelled)
}

func (service *AppointmentService) Complete(ctx context.Context, id string) error {
	appointment, err := service.find(ctx, id)
	if err != nil {
		return err
	}
	switch appointment.Status {
	case models.AppointmentCompleted:
		return nil
	case models.AppointmentCancelled:
		return invalid("status", ReasonNotCompletable)
	}
	return service.setStatus(ctx, id, models.AppointmentCompleted)
}

func (service *AppointmentService) setStatus(ctx context.Context, id string, status string) error {
	err := service.store.Update(ctx, store.Appointments, id, map[string]any{"status": status})
	if errors.Is(err, store.ErrNotFound) {
		return ErrAppointmentNotFound
	}
	return err
}

func (service *AppointmentService) find(ctx context.Context, id string) (models.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Appointment{}, ErrAppointmentNotFound
	}

	appointments := make([]models.Appointment, 0, 1)
	if err := service.store.List(ctx, store.Appointments, store.Query{}.Eq("id", id), &appointments); err != nil {
		return models.Appointment{}, err
	}
	if len(appointments) == 0 {
		return models.Appointment{}, ErrAppointmentNotFound
	}
	return appointments[0], nil
}

func (service *AppointmentService) ListByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	if _, err := ParseDay(date); err != nil {
		return nil, err
	}

	appointments := make([]models.Appointment, 0)
	query := store.Query{}.Eq("date", strings.TrimSpace(date)).Asc("time")
	if err := service.store.List(ctx, store.Appointments, query, &appointments); err != nil {
		return nil, fmt.Errorf("list appointments for %s: %w", date, err)
	}
	return appointments, nil
}

// DaySchedule returns one entry per slot; a slot shows the appointment holding it,
// cancelled appointments never hold a slot.
func (service *AppointmentService) DaySchedule(ctx context.Context, date string) (DaySchedule, error) {
	appointments, err := service.ListByDate(ctx, date)
	if err != nil {
		return DaySchedule{}, err
	}

	holders := make(map[string]*models.Appointment, len(appointments))
	for index := range appointments {
		appointment := &appointments[index]
		if appointment.Occupies() {
			holders[appointment.Time] = appointment
		}
	}

	slots := make([]SlotEntry, 0, len(timeSlots))
	for _, slot := range timeSlots {
		holder := holders[slot]
		slots = append(slots, SlotEntry{Time: slot, Available: holder == nil, Appointment: holder})
	}

	return DaySchedule{
		Date:         strings.TrimSpace(date),
		Slots:        slots,
		Appointments: appointments,
	}, nil
}
