package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DefaultReminderSchedule = "0 18 * * *"

// ReminderJob creates tomorrow's appointment reminders on a cron schedule.
type ReminderJob struct {
	scheduler     *cron.Cron
	notifications *NotificationService
	logger        logrus.FieldLogger
	now           func() time.Time
	timeout       time.Duration
	onCreated     func(int)
}

func NewReminderJob(notifications *NotificationService, schedule string, location *time.Location, logger logrus.FieldLogger) (*ReminderJob, error) {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	job := &ReminderJob{
		scheduler:     cron.New(cron.WithLocation(location)),
		notifications: notifications,
		logger:        logger.WithField("job", "appointment_reminders"),
		now:           time.Now,
		timeout:       30 * time.Second,
	}
	if _, err := job.scheduler.AddFunc(schedule, job.Run); err != nil {
		return nil, fmt.Errorf("schedule reminder job %q: %w", schedule, err)
	}
	return job, nil
}

// OnCreated registers a callback receiving the number of reminders each run created.
func (job *ReminderJob) OnCreated(callback func(int)) {
	job.onCreated = callback
}

func (job *ReminderJob) Start() {
	job.scheduler.Start()
}

// Stop halts scheduling and returns a context that is done once a running job finishes.
func (job *ReminderJob) Stop() context.Context {
	return job.scheduler.Stop()
}

func (job *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), job.timeout)
	defer cancel()

	created, err := job.notifications.CreateAppointmentReminders(ctx, job.now())
	if err != nil {
		job.logger.WithError(err).Error("create appointment reminders failed")
		return
	}
	job.logger.WithField("created", len(created)).Info("appointment reminders created")
	if job.onCreated != nil {
		job.onCreated(len(created))
	}
}
