package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/store"
)

const (
	TabAll    = "all"
	TabUnread = "unread"

	reminderTitle = "Lembrete Automático de Consulta"
)

var reminderNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dentclinic:appointment-reminder"))

type SendInput struct {
	PatientName string `json:"patient_name"`
	PatientID   string `json:"patient_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
}

type NotificationService struct {
	store    store.Persistence
	location *time.Location
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewNotificationService(persistence store.Persistence, location *time.Location, logger logrus.FieldLogger) *NotificationService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotificationService{store: persistence, location: location, logger: logger, now: time.Now}
}

func IsNotificationTab(tab string) bool {
	return tab == TabAll || tab == TabUnread || models.IsNotificationType(tab)
}

// List returns the notifications of a tab, newest first. An empty tab means "all".
func (service *NotificationService) List(ctx context.Context, tab string) ([]models.Notification, error) {
	tab = strings.TrimSpace(tab)
	if tab == "" {
		tab = TabAll
	}
	if !IsNotificationTab(tab) {
		return nil, invalid("tab", ReasonInvalidChoice)
	}

	query := store.Query{}.Desc("date")
	switch tab {
	case TabAll:
	case TabUnread:
		query = query.Eq("read", false)
	default:
		query = query.Eq("type", tab)
	}

	notifications := make([]models.Notification, 0)
	if err := service.store.List(ctx, store.Notifications, query, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (service *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	unread, err := service.List(ctx, TabUnread)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkRead only moves read from false to true; marking twice is a no-op.
func (service *NotificationService) MarkRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotificationNotFound
	}

	notifications := make([]models.Notification, 0, 1)
	if err := service.store.List(ctx, store.Notifications, store.Query{}.Eq("id", id), &notifications); err != nil {
		return err
	}
	if len(notifications) == 0 {
		return ErrNotificationNotFound
	}
	if notifications[0].Read {
		return nil
	}

	err := service.store.Update(ctx, store.Notifications, id, map[string]any{"read": true})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (service *NotificationService) Send(ctx context.Context, input SendInput) (models.Notification, error) {
	input.PatientName = strings.TrimSpace(input.PatientName)
	input.PatientID = strings.TrimSpace(input.PatientID)
	input.Title = strings.TrimSpace(input.Title)
	input.Message = strings.TrimSpace(input.Message)

	switch {
	case input.PatientName == "":
		return models.Notification{}, invalid("patient_name", ReasonRequired)
	case input.Title == "":
		return models.Notification{}, invalid("title", ReasonRequired)
	case input.Message == "":
		return models.Notification{}, invalid("message", ReasonRequired)
	}

	notification := models.Notification{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Message:     input.Message,
		Type:        models.NotificationMessage,
		Date:        stamp(service.now()),
		PatientName: input.PatientName,
		PatientID:   input.PatientID,
	}
	if err := service.store.Insert(ctx, store.Notifications, &notification); err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}

// CreateAppointmentReminders adds one appointment notification per scheduled
// appointment of the day after now (in the clinic's location). Reminder ids are
// derived from the appointment and day, so a repeated run skips what exists.
func (service *NotificationService) CreateAppointmentReminders(ctx context.Context, now time.Time) ([]models.Notification, error) {
	tomorrow := FormatDay(now.In(service.location).AddDate(0, 0, 1))

	appointments := make([]models.Appointment, 0)
	query := store.Query{}.
		Eq("date", tomorrow).
		Eq("status", models.AppointmentScheduled).
		Asc("time")
	if err := service.store.List(ctx, store.Appointments, query, &appointments); err != nil {
		return nil, fmt.Errorf("list appointments for %s: %w", tomorrow, err)
	}

	created := make([]models.Notification, 0, len(appointments))
	for _, appointment := range appointments {
		reminder := models.Notification{
			ID:          uuid.NewSHA1(reminderNamespace, []byte(appointment.ID+"|"+tomorrow)).String(),
			Title:       reminderTitle,
			Message:     fmt.Sprintf("Lembrete: %s tem consulta agendada para amanhã às %s.", appointment.PatientName, appointment.Time),
			Type:        models.NotificationAppointment,
			Date:        stamp(now),
			PatientName: appointment.PatientName,
			PatientID:   appointment.PatientID,
		}

		err := service.store.Insert(ctx, store.Notifications, &reminder)
		if errors.Is(err, store.ErrDuplicate) {
			service.logger.WithField("appointment_id", appointment.ID).Debug("reminder already exists")
			continue
		}
		if err != nil {
			return created, err
		}
		created = append(created, reminder)
	}
	return created, nil
}

// SeedDemo writes the demo notifications into an empty collection and reports
// whether it did.
func (service *NotificationService) SeedDemo(ctx context.Context, now time.Time) (bool, error) {
	existing := make([]models.Notification, 0)
	if err := service.store.List(ctx, store.Notifications, store.Query{}, &existing); err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	current := stamp(now)
	demo := []models.Notification{
		{
			Title:       "Lembrete de Consulta",
			Message:     "Lembrete: Maria da Silva tem consulta amanhã às 14:30.",
			Type:        models.NotificationAppointment,
			Date:        current.AddDate(0, 0, 1),
			PatientName: "Maria da Silva",
		},
		{
			Title:       "Mensagem Recebida",
			Message:     "João Pereira enviou uma mensagem confirmando a consulta.",
			Type:        models.NotificationMessage,
			Date:        current,
			PatientName: "João Pereira",
		},
		{
			Title:   "Alerta de Sistema",
			Message: "A agenda para a próxima semana está quase cheia.",
			Type:    models.NotificationAlert,
			Date:    current,
			Read:    true,
		},
		{
			Title:       "Consulta Cancelada",
			Message:     "Ana Oliveira cancelou a consulta agendada para ontem às 10:00.",
			Type:        models.NotificationAppointment,
			Date:        current.AddDate(0, 0, -1),
			Read:        true,
			PatientName: "Ana Oliveira",
		},
	}

	for index := range demo {
		demo[index].ID = uuid.NewString()
		if err := service.store.Insert(ctx, store.Notifications, &demo[index]); err != nil {
			return false, err
		}
	}
	return true, nil
}
