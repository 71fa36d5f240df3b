package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"appointly/internal/domain"
	"appointly/internal/service"
	"appointly/internal/transport/http/ez"
	mdw "appointly/internal/transport/http/middleware"
)

type SlotHandler struct {
	svc SlotService
	log *zap.Logger
}

func NewSlotHandler(svc SlotService, log *zap.Logger) *SlotHandler {
	return &SlotHandler{svc: svc, log: log}
}

func (h *SlotHandler) Priority() int { return 10 }

type slotQuery struct {
	Date      string `form:"date"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (h *SlotHandler) MountAPI(g *gin.RouterGroup)   { h.mount(g) }
func (h *SlotHandler) MountAdmin(g *gin.RouterGroup) { h.mount(g) }

func (h *SlotHandler) mount(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[slotQuery, []domain.TimeSlot]{
		Method: http.MethodGet,
		Path:   "/slots",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *slotQuery) ([]domain.TimeSlot, error) {
			return h.svc.List(c.Request.Context(), domain.SlotFilter{
				Date: in.Date, StartDate: in.StartDate, EndDate: in.EndDate,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[service.CreateSlotInput, *domain.TimeSlot]{
		Method: http.MethodPost,
		Path:   "/slots",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.CreateSlotInput) (*domain.TimeSlot, error) {
			return h.svc.Create(c.Request.Context(), mdw.ActorFrom(c), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/slots/:id",
		Binder: ez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			return struct{}{}, h.svc.Delete(c.Request.Context(), mdw.ActorFrom(c), c.Param("id"))
		},
	})
}
