package models

import "time"

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

type Appointment struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	PatientName string    `json:"patient_name" gorm:"not null"`
	PatientID   string    `json:"patient_id,omitempty"`
	Date        string    `json:"date" gorm:"not null"`
	Time        string    `json:"time" gorm:"not null"`
	Status      string    `json:"status" gorm:"not null;default:scheduled"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Occupies reports whether the appointment still holds its slot.
func (appointment Appointment) Occupies() bool {
	return appointment.Status != AppointmentCancelled
}
