package resource

import (
	"context"

	"github.com/xiebiao/bookstore-admin/internal/domain/query"
)

// Gateway 远端资源网关接口
// 设计说明：
// 1. 接口定义在领域层，HTTP实现在基础设施层（依赖倒置）
// 2. 每个方法对应上游REST API的一类操作
// 3. 错误统一为AppError：网络不可达、上游拒绝（带上游原话）、响应格式异常
type Gateway interface {
	// List 按筛选状态拉取一页数据
	// 非空的筛选字段逐一翻译为该资源约定的查询参数名
	List(ctx context.Context, desc *Descriptor, filter query.FilterState) (*ListResult, error)

	// Create 创建记录，返回上游回传的完整记录
	Create(ctx context.Context, desc *Descriptor, values map[string]interface{}) (Record, error)

	// Update 按ID更新记录
	Update(ctx context.Context, desc *Descriptor, id string, values map[string]interface{}) (Record, error)

	// Delete 按ID删除记录
	Delete(ctx context.Context, desc *Descriptor, id string) error
}
