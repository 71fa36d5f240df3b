package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:customer" json:"role"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Phone        string    `gorm:"size:32" json:"phone"`
	AvatarURL    string    `gorm:"size:255" json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Actor 发起操作的身份；ID 为空表示匿名
type Actor struct {
	ID   string
	Role Role
}

var Anonymous = Actor{}

func (a Actor) Authenticated() bool { return a.ID != "" }
func (a Actor) IsAdmin() bool       { return a.ID != "" && a.Role == RoleAdmin }

// OTP 注册验证码
type OTP struct {
	Email     string    `gorm:"primaryKey;size:191"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (OTP) TableName() string { return "otps" }
