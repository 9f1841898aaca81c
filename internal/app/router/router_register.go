package router

// RouteTable 由处理器提供自身的路由表，路径相对于注册时的分组
type RouteTable interface {
	Routes() []*Router
}

// Register 依次注册各处理器的路由表
func Register(group *RouterGroup, tables ...RouteTable) {
	if group == nil {
		panic("group is nil")
	}
	for _, table := range tables {
		for _, r := range table.Routes() {
			if !r.IsValid() {
				panic("invalid router: " + r.method.Value() + " " + r.path)
			}
			group.Handle(r.method, r.path, r.handlerFunc)
		}
	}
}

// Router 路由定义
type Router struct {
	path        string
	method      RouterMethod
	handlerFunc any
}

func NewRouter(method RouterMethod, path string, handlerFunc any) *Router {
	return &Router{
		path:        path,
		method:      method,
		handlerFunc: handlerFunc,
	}
}

func GET(path string, handlerFunc any) *Router {
	return NewRouter(MethodGet, path, handlerFunc)
}

func POST(path string, handlerFunc any) *Router {
	return NewRouter(MethodPost, path, handlerFunc)
}

func PUT(path string, handlerFunc any) *Router {
	return NewRouter(MethodPut, path, handlerFunc)
}

func DELETE(path string, handlerFunc any) *Router {
	return NewRouter(MethodDelete, path, handlerFunc)
}

func (r *Router) GetPath() string {
	return r.path
}

func (r *Router) GetMethod() RouterMethod {
	return r.method
}

func (r *Router) GetHandlerFunc() any {
	return r.handlerFunc
}

func (r *Router) IsValid() bool {
	if r.path == "" || r.method == "" || r.handlerFunc == nil {
		return false
	}
	return true
}

// RouterMethod HTTP方法
type RouterMethod string

const (
	MethodGet    RouterMethod = "GET"
	MethodPost   RouterMethod = "POST"
	MethodPut    RouterMethod = "PUT"
	MethodDelete RouterMethod = "DELETE"
)

func (r RouterMethod) Value() string {
	return string(r)
}
