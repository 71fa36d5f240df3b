package notify

import (
	"time"

	"appointly/internal/domain"
)

type Kind string

// Kind 同时作为 RabbitMQ routing key
const (
	KindNewBooking       Kind = "booking.created"
	KindBookingConfirmed Kind = "booking.confirmed"
	KindBookingCancelled Kind = "booking.cancelled"
	KindWelcome          Kind = "user.welcome"
)

var AllKinds = []string{
	string(KindNewBooking),
	string(KindBookingConfirmed),
	string(KindBookingCancelled),
	string(KindWelcome),
}

type Contact struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// Message 自包含的通知载荷，消费端无需访问数据库
type Message struct {
	Kind      Kind      `json:"kind"`
	BookingID string    `json:"bookingId,omitempty"`
	Customer  Contact   `json:"customer"`
	Date      string    `json:"date,omitempty"`
	StartTime string    `json:"startTime,omitempty"`
	EndTime   string    `json:"endTime,omitempty"`
	At        time.Time `json:"at"`
}

func contactOf(u *domain.User) Contact {
	if u == nil {
		return Contact{}
	}
	return Contact{Username: u.Username, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

func bookingMessage(kind Kind, b *domain.Booking) Message {
	m := Message{Kind: kind, BookingID: b.ID, Customer: contactOf(b.User), At: time.Now().UTC()}
	if b.Slot != nil {
		m.Date, m.StartTime, m.EndTime = b.Slot.Date, b.Slot.StartTime, b.Slot.EndTime
	}
	return m
}

func welcomeMessage(u *domain.User) Message {
	return Message{Kind: KindWelcome, Customer: contactOf(u), At: time.Now().UTC()}
}
