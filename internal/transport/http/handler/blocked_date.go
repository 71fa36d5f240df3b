package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"appointly/internal/domain"
	"appointly/internal/transport/http/ez"
	mdw "appointly/internal/transport/http/middleware"
)

type BlockedDateHandler struct {
	svc BlockedDateService
	log *zap.Logger
}

func NewBlockedDateHandler(svc BlockedDateService, log *zap.Logger) *BlockedDateHandler {
	return &BlockedDateHandler{svc: svc, log: log}
}

func (h *BlockedDateHandler) Priority() int { return 30 }

type blockDateIn struct {
	Date   string `json:"date"`
	Reason string `json:"reason" binding:"max=255"`
}

func (h *BlockedDateHandler) MountAPI(g *gin.RouterGroup)   { h.mount(g) }
func (h *BlockedDateHandler) MountAdmin(g *gin.RouterGroup) { h.mount(g) }

func (h *BlockedDateHandler) mount(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.BlockedDate]{
		Method: http.MethodGet,
		Path:   "/blocked-dates",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.BlockedDate, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[blockDateIn, *domain.BlockedDate]{
		Method: http.MethodPost,
		Path:   "/blocked-dates",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *blockDateIn) (*domain.BlockedDate, error) {
			return h.svc.Block(c.Request.Context(), mdw.ActorFrom(c), in.Date, in.Reason)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/blocked-dates/:id",
		Binder: ez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			return struct{}{}, h.svc.Unblock(c.Request.Context(), mdw.ActorFrom(c), c.Param("id"))
		},
	})
}
