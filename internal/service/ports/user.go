package ports

import (
	"context"
	"io"
	"time"

	"appointly/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error)
	Update(ctx context.Context, u *domain.User) error
}

type OTPStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// Mailer 同步发送验证码邮件，错误需返回给调用方
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

type TokenIssuer interface {
	Issue(uid, role string) (string, error)
}

// FileStore 保存上传文件，返回可访问的 URL 路径
type FileStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
}
