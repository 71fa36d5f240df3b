package ez

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"appointly/internal/domain"
	mdw "appointly/internal/transport/http/middleware"
	resp "appointly/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	useJSONFieldNames()
	return EZ{g: g, log: log}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method string // GET | POST | PUT | PATCH | DELETE
	Path   string
	Binder Binder
	Auth   bool          // 要求登录，匿名 401
	Roles  []domain.Role // 限定角色，不符 403
	Status int           // 成功状态码，默认 200；204 不写 body
	// ConflictStatus 冲突错误的状态码，默认 400
	ConflictStatus int
	Handler        func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth || len(a.Roles) > 0 {
			actor := mdw.ActorFrom(c)
			if !actor.Authenticated() {
				c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "login required"))
				return
			}
			if len(a.Roles) > 0 && !hasRole(actor.Role, a.Roles) {
				c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			_ = c.Error(bindErr)
			field, msg := describeBindError(bindErr)
			c.AbortWithStatusJSON(http.StatusBadRequest, resp.FieldError(field, msg))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, e.log, err, a.ConflictStatus)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func hasRole(r domain.Role, roles []domain.Role) bool {
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// StatusOf 业务错误 -> HTTP 状态码
func StatusOf(err error, conflictStatus int) int {
	if conflictStatus == 0 {
		conflictStatus = http.StatusBadRequest
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return conflictStatus
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteError 统一错误映射；非业务错误只回 500，细节进日志
func WriteError(c *gin.Context, log *zap.Logger, err error, conflictStatus int) {
	_ = c.Error(err)
	status := StatusOf(err, conflictStatus)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, resp.Error(resp.CodeServerError, ""))
		return
	}
	body := resp.Error(status, err.Error())
	body.Field = domain.FieldOf(err)
	c.AbortWithStatusJSON(status, body)
}

func describeBindError(err error) (field, msg string) {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		switch fe.Tag() {
		case "required":
			return fe.Field(), fe.Field() + " is required"
		default:
			return fe.Field(), fe.Field() + " is invalid"
		}
	}
	return "", "invalid request: " + err.Error()
}

var tagNameOnce sync.Once

// 校验错误里使用 json/form 字段名
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}
