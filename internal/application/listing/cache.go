// Package listing 列表查询的应用层：缓存、去重、兜底
//
// 设计说明：
// 1. 缓存键是资源名+规范化后的筛选状态（见query.FilterState.Key），
//    等价的筛选条件无论构造顺序如何都命中同一条目
// 2. 单飞（single-flight）：同一个键的并发请求只触发一次上游拉取，
//    其余请求等待并共享结果
// 3. 失效不清空：变更后条目只标记为过期（stale），下次访问触发重拉；
//    重拉失败时旧数据继续展示并附带过期标记，列表页不白屏
// 4. 每个资源记录"当前键"（最近一次请求的筛选条件）；
//    慢响应返回时若当前键已变化，结果照常入缓存但计为superseded，
//    保证快速连续变更筛选条件时旧条件的慢响应不会顶掉新视图
//
// 缓存放在进程内存而非Redis：条目的生命周期与失效完全由本服务的
// 变更操作驱动，无跨实例共享需求，进程内map加锁即可。
package listing

import (
	"context"
	"strings"
	"sync"

	"github.com/xiebiao/bookstore-admin/internal/domain/query"
	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	"github.com/xiebiao/bookstore-admin/pkg/metrics"
)

// Outcome 一次列表查询的结果
type Outcome struct {
	Result *resource.ListResult
	Filter query.FilterState
	// Stale 为true表示重拉失败，返回的是上次成功的数据
	Stale bool
	// FetchErr 重拉失败的原因（仅Stale时非nil，供日志用）
	FetchErr error
}

// entry 一个缓存键的状态
type entry struct {
	resource string
	data     *resource.ListResult
	stale    bool

	// fetching 为true表示有一次上游拉取正在进行
	fetching bool
	// done 本轮拉取完成时关闭，等待者借此唤醒
	done chan struct{}
	// fetchErr 本轮拉取的错误（done关闭后有效）
	fetchErr error
}

// Cache 列表查询缓存
type Cache struct {
	gateway resource.Gateway

	mu      sync.Mutex
	entries map[string]*entry
	// current 每个资源当前正在查看的键
	current map[string]string
}

// NewCache 创建列表缓存
func NewCache(gateway resource.Gateway) *Cache {
	return &Cache{
		gateway: gateway,
		entries: map[string]*entry{},
		current: map[string]string{},
	}
}

// Get 获取一页列表数据
//
// 路径：
// 1. 新鲜缓存 → 直接返回
// 2. 无数据/已过期，且无人在拉 → 本请求发起拉取
// 3. 已有同键拉取在途 → 等待并共享其结果
func (c *Cache) Get(ctx context.Context, desc *resource.Descriptor, filter query.FilterState) (*Outcome, error) {
	key := filter.Key(desc.Name)

	c.mu.Lock()
	c.current[desc.Name] = key

	e, ok := c.entries[key]
	if !ok {
		e = &entry{resource: desc.Name}
		c.entries[key] = e
	}

	// 命中新鲜数据
	if e.data != nil && !e.stale && !e.fetching {
		data := e.data
		c.mu.Unlock()
		c.count(desc.Name, "hit")
		return &Outcome{Result: data, Filter: filter}, nil
	}

	// 同键拉取在途：等待共享
	if e.fetching {
		done := e.done
		c.mu.Unlock()
		c.count(desc.Name, "inflight_join")

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return c.afterFetch(desc, filter, key)
	}

	// 本请求负责拉取
	if e.stale {
		c.count(desc.Name, "stale_refetch")
	} else {
		c.count(desc.Name, "miss")
	}
	e.fetching = true
	e.done = make(chan struct{})
	c.mu.Unlock()

	result, err := c.gateway.List(ctx, desc, filter)

	c.mu.Lock()
	e.fetching = false
	e.fetchErr = err
	if err == nil {
		e.data = result
		e.stale = false
		if c.current[desc.Name] != key {
			// 筛选条件已变化，本结果入缓存但不再是当前视图
			c.countSuperseded(desc.Name)
		}
	}
	close(e.done)
	c.mu.Unlock()

	return c.afterFetch(desc, filter, key)
}

// afterFetch 拉取结束后依据条目状态产出结果（兜底逻辑在这里）
func (c *Cache) afterFetch(desc *resource.Descriptor, filter query.FilterState, key string) (*Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		// 条目只标记过期从不删除，正常不会走到这里
		return nil, apperrors.ErrInternal
	}

	if e.fetchErr == nil {
		return &Outcome{Result: e.data, Filter: filter}, nil
	}

	// 拉取失败：有旧数据则兜底展示
	if e.data != nil {
		metrics.IncCounterVec(metrics.ListStaleServedTotal,
			map[string]string{"resource": desc.Name})
		return &Outcome{Result: e.data, Filter: filter, Stale: true, FetchErr: e.fetchErr}, nil
	}

	return nil, e.fetchErr
}

// Invalidate 将一个资源的全部缓存条目标记为过期
// 数据保留，下次访问触发重拉；重拉失败时旧数据仍可兜底
func (c *Cache) Invalidate(resourceName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := resourceName + "|"
	for key, e := range c.entries {
		if key == resourceName || strings.HasPrefix(key, prefix) {
			e.stale = true
		}
	}
}

// CurrentKey 返回资源当前正在查看的缓存键（调试端点用）
func (c *Cache) CurrentKey(resourceName string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current[resourceName]
}

func (c *Cache) count(resourceName, result string) {
	metrics.IncCounterVec(metrics.ListCacheLookupsTotal,
		map[string]string{"resource": resourceName, "result": result})
}

func (c *Cache) countSuperseded(resourceName string) {
	metrics.IncCounterVec(metrics.ListSupersededTotal,
		map[string]string{"resource": resourceName})
}
