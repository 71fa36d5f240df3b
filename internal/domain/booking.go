package domain

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// ActiveStatuses 占用名额的状态
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) Active() bool { return slices.Contains(ActiveStatuses, s) }

type Booking struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	UserID    string        `gorm:"size:36;not null;index" json:"userId"`
	SlotID    string        `gorm:"size:36;not null;index" json:"slotId"`
	Status    BookingStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	User *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	// 时段删除后预约保留，Slot 为空
	Slot *TimeSlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

type BookingFilter struct {
	UserID string
}
