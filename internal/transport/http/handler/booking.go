package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"appointly/internal/domain"
	"appointly/internal/transport/http/ez"
	mdw "appointly/internal/transport/http/middleware"
)

type BookingHandler struct {
	svc BookingService
	log *zap.Logger
}

func NewBookingHandler(svc BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, log: log}
}

func (h *BookingHandler) Priority() int { return 20 }

type bookingQuery struct {
	UserID string `form:"userId"`
}

type createBookingIn struct {
	SlotID string `json:"slotId"`
}

func (h *BookingHandler) MountAPI(g *gin.RouterGroup)   { h.mount(g) }
func (h *BookingHandler) MountAdmin(g *gin.RouterGroup) { h.mount(g) }

func (h *BookingHandler) mount(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[bookingQuery, []domain.Booking]{
		Method: http.MethodGet,
		Path:   "/bookings",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *bookingQuery) ([]domain.Booking, error) {
			return h.svc.List(c.Request.Context(), mdw.ActorFrom(c), domain.BookingFilter{UserID: in.UserID})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Booking]{
		Method: http.MethodGet,
		Path:   "/bookings/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Booking, error) {
			return h.svc.Get(c.Request.Context(), mdw.ActorFrom(c), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[createBookingIn, *domain.Booking]{
		Method: http.MethodPost,
		Path:   "/bookings",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createBookingIn) (*domain.Booking, error) {
			return h.svc.Create(c.Request.Context(), mdw.ActorFrom(c), in.SlotID)
		},
	})

	// 重复确认返回 409，其余冲突仍是 400
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Booking]{
		Method:         http.MethodPatch,
		Path:           "/bookings/:id/confirm",
		Binder:         ez.BindNone,
		ConflictStatus: http.StatusConflict,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Booking, error) {
			return h.svc.Confirm(c.Request.Context(), mdw.ActorFrom(c), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Booking]{
		Method: http.MethodPatch,
		Path:   "/bookings/:id/cancel",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Booking, error) {
			return h.svc.Cancel(c.Request.Context(), mdw.ActorFrom(c), c.Param("id"))
		},
	})
}
