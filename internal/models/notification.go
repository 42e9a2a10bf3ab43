package models

import "time"

const (
	NotificationAppointment = "appointment"
	NotificationMessage     = "message"
	NotificationAlert       = "alert"
)

type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Message     string    `json:"message" gorm:"not null"`
	Type        string    `json:"type" gorm:"not null"`
	Date        time.Time `json:"date" gorm:"not null"`
	Read        bool      `json:"read" gorm:"not null;default:false"`
	PatientName string    `json:"patient_name,omitempty"`
	PatientID   string    `json:"patient_id,omitempty"`
}

func IsNotificationType(value string) bool {
	switch value {
	case NotificationAppointment, NotificationMessage, NotificationAlert:
		return true
	default:
		return false
	}
}
