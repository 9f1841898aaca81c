package params

const (
	DefaultPageNum  = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page 分页参数，缺省 pageNum=1、pageSize=10，pageSize 上限 100
type Page struct {
	PageNum  int `query:"pageNum" json:"-"`
	PageSize int `query:"pageSize" json:"-"`
}

// Normalize 补默认值并截断上限
func (p *Page) Normalize() {
	if p.PageNum < 1 {
		p.PageNum = DefaultPageNum
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Limit 每页条数
func (p *Page) Limit() int {
	p.Normalize()
	return p.PageSize
}

// Offset 跳过的条数
func (p *Page) Offset() int {
	p.Normalize()
	return (p.PageNum - 1) * p.PageSize
}

// IDRequest 路径参数 :id
type IDRequest struct {
	ID uint64 `path:"id" vd:"$>0"`
}

// IDsRequest 批量删除
type IDsRequest struct {
	IDs []uint64 `json:"ids" vd:"len($)>0"`
}
