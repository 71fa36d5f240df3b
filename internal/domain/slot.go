package domain

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type TimeSlot struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Date        string    `gorm:"size:10;not null;index:idx_slot_date_start,priority:1" json:"date"`
	StartTime   string    `gorm:"size:5;not null;index:idx_slot_date_start,priority:2" json:"startTime"`
	EndTime     string    `gorm:"size:5;not null" json:"endTime"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	BookedCount int       `gorm:"not null;default:0" json:"bookedCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (TimeSlot) TableName() string { return "time_slots" }

func (s TimeSlot) Available() int { return s.Capacity - s.BookedCount }

// SlotFilter 按单日或日期区间过滤，全空则不过滤
type SlotFilter struct {
	Date      string
	StartDate string
	EndDate   string
}

type BlockedDate struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Date      string    `gorm:"uniqueIndex;size:10;not null" json:"date"`
	Reason    string    `gorm:"size:255" json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (BlockedDate) TableName() string { return "blocked_dates" }

// ValidDate 严格校验 YYYY-MM-DD
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// ValidClock 严格校验 HH:mm
func ValidClock(s string) bool {
	if len(s) != len(ClockLayout) || strings.Count(s, ":") != 1 {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}
