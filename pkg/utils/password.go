package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只取前 72 字节，超长直接拒绝
var ErrPasswordTooLong = errors.New("password too long")

// PasswordCost 测试里可调低
var PasswordCost = bcrypt.DefaultCost

func HashPassword(pw string) (string, error) {
	if len(pw) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	return string(b), err
}

// CheckPassword 空 hash（未设密码的账号）一律不通过
func CheckPassword(pw, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
