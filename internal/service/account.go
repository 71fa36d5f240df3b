package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"appointly/internal/authz"
	"appointly/internal/domain"
	"appointly/internal/service/ports"
	"appointly/pkg/utils"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72
	minPhoneLen    = 10
	minUsernameLen = 3
)

var avatarExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

type AccountService struct {
	users    ports.UserRepo
	otps     ports.OTPStore
	mailer   ports.Mailer
	tokens   ports.TokenIssuer
	files    ports.FileStore
	notifier ports.Notifier
	log      *zap.Logger

	otpTTL  time.Duration
	newCode func() (string, error)
}

type AccountDeps struct {
	Users    ports.UserRepo
	OTPs     ports.OTPStore
	Mailer   ports.Mailer
	Tokens   ports.TokenIssuer
	Files    ports.FileStore
	Notifier ports.Notifier
	Log      *zap.Logger
	OTPTTL   time.Duration
}

func NewAccountService(d AccountDeps) *AccountService {
	ttl := d.OTPTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &AccountService{
		users:    d.Users,
		otps:     d.OTPs,
		mailer:   d.Mailer,
		tokens:   d.Tokens,
		files:    d.Files,
		notifier: d.Notifier,
		log:      d.Log,
		otpTTL:   ttl,
		newCode:  utils.NewOTP,
	}
}

func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", domain.Validation("email", "invalid email address")
	}
	return s, nil
}

// SendOTP 邮箱已注册则拒绝；邮件发送失败直接返回
func (s *AccountService) SendOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.Conflict("email is already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.otps.Save(ctx, email, code, s.otpTTL); err != nil {
		return err
	}
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	s.log.Info("otp sent", zap.String("email", email))
	return nil
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	OTP      string `json:"otp"`
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) < minUsernameLen {
		return nil, "", domain.Validation("username", "username must be at least 3 characters")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, "", err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", domain.Validation("name", "name is required")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone != "" && len(phone) < minPhoneLen {
		return nil, "", domain.Validation("phone", "phone must be at least 10 characters")
	}

	ok, err := s.otps.Verify(ctx, email, strings.TrimSpace(in.OTP))
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", domain.Validation("otp", "invalid or expired OTP")
	}
	if err := s.ensureFree(ctx, username, email); err != nil {
		return nil, "", err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Name:         name,
		Phone:        phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	if err := s.otps.Delete(ctx, email); err != nil {
		s.log.Warn("delete otp failed", zap.String("email", email), zap.Error(err))
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	s.notifier.NotifyWelcome(context.WithoutCancel(ctx), u)

	tok, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, tok, nil
}

func (s *AccountService) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.Conflict("username already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.Conflict("email already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.Unauthenticated("invalid username or password")
	}
	if err != nil {
		return nil, "", err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", domain.Unauthenticated("invalid username or password")
	}
	tok, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, tok, nil
}

func (s *AccountService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := authz.Authorize(actor, authz.ProfileRead, authz.Resource{}).Err(); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, actor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		// token 有效但用户已不存在
		return nil, domain.Unauthenticated("user no longer exists")
	}
	return u, err
}

// ProfilePatch nil 字段表示不修改
type ProfilePatch struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, actor domain.Actor, p ProfilePatch) (*domain.User, error) {
	u, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, domain.Validation("name", "name cannot be empty")
		}
		u.Name = name
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		if phone != "" && len(phone) < minPhoneLen {
			return nil, domain.Validation("phone", "phone must be at least 10 characters")
		}
		u.Phone = phone
	}
	if p.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*p.AvatarURL)
	}
	if p.Email != nil {
		email, err := normalizeEmail(*p.Email)
		if err != nil {
			return nil, err
		}
		if email != u.Email {
			if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != u.ID {
				return nil, domain.Conflict("email already in use")
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			u.Email = email
		}
	}
	if p.Password != nil {
		if err := checkPassword(*p.Password); err != nil {
			return nil, err
		}
		hash, err := utils.HashPassword(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("profile updated", zap.String("user_id", u.ID))
	return u, nil
}

// UploadAvatar 只接受常见图片扩展名，返回可访问路径
func (s *AccountService) UploadAvatar(ctx context.Context, actor domain.Actor, filename string, r io.Reader) (string, error) {
	if err := authz.Authorize(actor, authz.ProfileUpdate, authz.Resource{}).Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarExts[ext] {
		return "", domain.Validation("file", "unsupported file type")
	}
	url, err := s.files.Save(ctx, ext, r)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	s.log.Info("file uploaded", zap.String("user_id", actor.ID), zap.String("url", url))
	return url, nil
}

func (s *AccountService) ListUsers(ctx context.Context, actor domain.Actor, q string, offset, limit int) ([]domain.User, int64, error) {
	if err := authz.Authorize(actor, authz.UserList, authz.Resource{}).Err(); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, q, offset, limit)
}

func checkPassword(pw string) error {
	switch {
	case len(pw) < minPasswordLen:
		return domain.Validation("password", "password must be at least 6 characters")
	case len(pw) > maxPasswordLen:
		return domain.Validation("password", "password must be at most 72 bytes")
	}
	return nil
}
