package listing

import (
	"context"
	"net/url"

	"github.com/xiebiao/bookstore-admin/internal/domain/query"
	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
)

// Service 列表查询用例
// 职责：解析筛选参数 → 查缓存 → 产出分页结果
type Service struct {
	registry *resource.Registry
	cache    *Cache
}

// NewService 创建列表查询用例
func NewService(registry *resource.Registry, cache *Cache) *Service {
	return &Service{registry: registry, cache: cache}
}

// List 按URL查询参数返回一页列表
// URL query是筛选状态的规范序列化：相同的地址还原相同的视图
func (s *Service) List(ctx context.Context, resourceName string, values url.Values) (*Outcome, error) {
	desc, err := s.registry.Get(resourceName)
	if err != nil {
		return nil, err
	}

	filter := query.ParseValues(values, desc.FilterParams)
	return s.cache.Get(ctx, desc, filter)
}

// Invalidate 标记资源缓存过期（变更操作成功后由mutation调用）
func (s *Service) Invalidate(resourceName string) {
	s.cache.Invalidate(resourceName)
}
