package router

import (
	"context"
	"fmt"
	"reflect"

	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/ayxworxfr/gsms/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	contextType  = reflect.TypeOf(&mycontext.Context{})
	responseType = reflect.TypeOf(&mycontext.Response{})
)

type RouterGroup struct {
	group   *route.RouterGroup
	routers []*Router
}

func NewRouterGroup(group *route.RouterGroup) *RouterGroup {
	return &RouterGroup{
		group:   group,
		routers: make([]*Router, 0),
	}
}

// Group 创建子分组，中间件挂在 hertz 分组上，写入 context 的值可以传到处理函数
func (rg *RouterGroup) Group(path string, middleware ...app.HandlerFunc) *RouterGroup {
	return NewRouterGroup(rg.group.Group(path, middleware...))
}

// Use 添加中间件
func (rg *RouterGroup) Use(middleware ...app.HandlerFunc) {
	rg.group.Use(middleware...)
}

func (rg *RouterGroup) BasePath() string {
	return rg.group.BasePath()
}

// Handle 注册处理函数，签名不合法时直接 panic
func (rg *RouterGroup) Handle(method RouterMethod, path string, handler any) {
	rg.routers = append(rg.routers, NewRouter(method, path, handler))
	logger.Debug(context.Background(), fmt.Sprintf("register route: %s %s%s", method, rg.group.BasePath(), path))
	rg.group.Handle(method.Value(), path, adapt(handler))
}

func (rg *RouterGroup) GetRouter() []*Router {
	return rg.routers
}

func (rg *RouterGroup) FindRouter(method, path string) (*Router, bool) {
	router := lo.Filter(rg.routers, func(r *Router, index int) bool {
		return r.GetMethod().Value() == method && r.GetPath() == path
	})
	if len(router) != 1 {
		return nil, false
	}
	return router[0], true
}

func (rg *RouterGroup) GET(path string, handler any) {
	rg.Handle(MethodGet, path, handler)
}

func (rg *RouterGroup) POST(path string, handler any) {
	rg.Handle(MethodPost, path, handler)
}

func (rg *RouterGroup) PUT(path string, handler any) {
	rg.Handle(MethodPut, path, handler)
}

func (rg *RouterGroup) DELETE(path string, handler any) {
	rg.Handle(MethodDelete, path, handler)
}

// adapt 将处理函数适配为 hertz 处理函数，支持两种签名：
//
//	func(*context.Context) *context.Response
//	func(*context.Context, *Req) *context.Response
//
// 第二种先 BindAndValidate 请求参数，失败返回 400
func adapt(handler any) app.HandlerFunc {
	if fn, ok := handler.(app.HandlerFunc); ok {
		return fn
	}
	if fn, ok := handler.(func(context.Context, *app.RequestContext)); ok {
		return fn
	}

	invoker, err := utils.NewFuncInvoker(handler)
	if err != nil {
		panic(err)
	}
	if err := checkSignature(invoker); err != nil {
		panic(err)
	}

	return func(ctx context.Context, c *app.RequestContext) {
		myCtx := mycontext.NewContext(ctx, c)
		args := []any{myCtx}

		if invoker.NumIn() == 2 {
			param := invoker.NewArg(1)
			if err := c.BindAndValidate(param); err != nil {
				mycontext.ParamError(err.Error()).Write(myCtx)
				return
			}
			args = append(args, param)
		}

		results, err := invoker.Call(args...)
		if err != nil {
			logger.Error(ctx, "invoke handler failed", zap.String("handler", invoker.Name()), zap.Error(err))
			mycontext.InternalError().Write(myCtx)
			return
		}
		if len(results) == 0 || results[0] == nil {
			return
		}
		writeResponse(myCtx, results[0].(*mycontext.Response))
	}
}

func checkSignature(invoker *utils.FuncInvoker) error {
	if n := invoker.NumIn(); n < 1 || n > 2 || invoker.In(0) != contextType {
		return fmt.Errorf("handler %s: first argument must be *context.Context and at most one request argument", invoker.Name())
	}
	if invoker.NumIn() == 2 {
		if t := invoker.In(1); t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("handler %s: request argument must be a pointer to struct", invoker.Name())
		}
	}
	if n := invoker.NumOut(); n > 1 || (n == 1 && invoker.Out(0) != responseType) {
		return fmt.Errorf("handler %s: must return nothing or *context.Response", invoker.Name())
	}
	return nil
}

// writeResponse 5xx 记录原始错误，客户端只看到统一提示
func writeResponse(c *mycontext.Context, rsp *mycontext.Response) {
	if err := rsp.Err(); err != nil {
		if rsp.Status() >= 500 {
			logger.Error(c.Context(), "request failed", zap.Error(err))
		} else {
			logger.Debug(c.Context(), "request rejected", zap.Int("code", rsp.Code), zap.String("reason", err.Error()))
		}
	}
	rsp.Write(c)
}
