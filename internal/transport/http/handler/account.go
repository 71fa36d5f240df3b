package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"appointly/internal/domain"
	"appointly/internal/service"
	"appointly/internal/transport/http/ez"
	mdw "appointly/internal/transport/http/middleware"
	resp "appointly/internal/transport/http/response"
)

// Cookie 会话 cookie；Name 为空则只返回 token 不写 cookie
type Cookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AccountHandler struct {
	svc       AccountService
	log       *zap.Logger
	cookie    Cookie
	maxUpload int64
}

func NewAccountHandler(svc AccountService, log *zap.Logger, cookie Cookie, maxUpload int64) *AccountHandler {
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &AccountHandler{svc: svc, log: log, cookie: cookie, maxUpload: maxUpload}
}

func (h *AccountHandler) Priority() int { return 1 }

type sendOTPIn struct {
	Email string `json:"email" binding:"required"`
}

type loginIn struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type usersQuery struct {
	Q      string `form:"q"`
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
}

type usersOut struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

func (h *AccountHandler) setSession(c *gin.Context, tok string) {
	if h.cookie.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, tok, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *AccountHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[sendOTPIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/send-otp",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *sendOTPIn) (gin.H, error) {
			if err := h.svc.SendOTP(c.Request.Context(), in.Email); err != nil {
				return nil, err
			}
			return gin.H{"sent": true}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[service.RegisterInput, session]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (session, error) {
			u, tok, err := h.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return session{}, err
			}
			h.setSession(c, tok)
			return session{Token: tok, User: u}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, session]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (session, error) {
			u, tok, err := h.svc.Login(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return session{}, err
			}
			h.setSession(c, tok)
			return session{Token: tok, User: u}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if h.cookie.Name != "" {
				c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
			}
			return gin.H{"loggedOut": true}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/user",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Me(c.Request.Context(), mdw.ActorFrom(c))
		},
	})

	ez.RegisterAction(e, ez.Action[service.ProfilePatch, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/user",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.ProfilePatch) (*domain.User, error) {
			return h.svc.UpdateProfile(c.Request.Context(), mdw.ActorFrom(c), *in)
		},
	})

	g.POST("/upload", mdw.MaxBodyBytes(h.maxUpload+1<<20), h.upload)
}

func (h *AccountHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[usersQuery, usersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *usersQuery) (usersOut, error) {
			items, total, err := h.svc.ListUsers(c.Request.Context(), mdw.ActorFrom(c), in.Q, in.Offset, in.Limit)
			if err != nil {
				return usersOut{}, err
			}
			return usersOut{Total: total, Items: items}, nil
		},
	})
}

// upload multipart 字段 file
func (h *AccountHandler) upload(c *gin.Context) {
	actor := mdw.ActorFrom(c)
	if !actor.Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "login required"))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, resp.FieldError("file", "file is required"))
		return
	}
	if fh.Size > h.maxUpload {
		c.AbortWithStatusJSON(http.StatusBadRequest, resp.FieldError("file", "file is too large"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		ez.WriteError(c, h.log, err, 0)
		return
	}
	defer f.Close()

	url, err := h.svc.UploadAvatar(c.Request.Context(), actor, fh.Filename, f)
	if err != nil {
		ez.WriteError(c, h.log, err, 0)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"url": url}))
}
