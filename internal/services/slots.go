package services

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var timeSlots = buildTimeSlots()

// buildTimeSlots lists the half-hour slots of the working day with the lunch
// break (12:00-13:00) left out.
func buildTimeSlots() []string {
	slots := make([]string, 0, 18)
	for _, block := range [][2]int{{8, 12}, {13, 18}} {
		for hour := block[0]; hour < block[1]; hour++ {
			slots = append(slots, fmt.Sprintf("%02d:00", hour), fmt.Sprintf("%02d:30", hour))
		}
	}
	return slots
}

func TimeSlots() []string {
	return append([]string(nil), timeSlots...)
}

func IsTimeSlot(value string) bool {
	for _, slot := range timeSlots {
		if slot == value {
			return true
		}
	}
	return false
}

func ParseDay(raw string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid("date", ReasonInvalidDate)
	}
	return day, nil
}

func FormatDay(value time.Time) string {
	return value.Format(dateLayout)
}

func stamp(now time.Time) time.Time {
	return now.UTC().Truncate(time.Second)
}
