// Package form 表单会话的应用层
//
// 会话生命周期：Open → SetField*（可多次）→ Submit / Close。
// 草稿保存在进程内存中，带TTL定期清扫（弃置的表单不会永久占内存）。
// 提交前先走域层校验，有错误时请求不会到达变更派发器；
// 上游拒绝时草稿原样保留，用户修正后可直接重交。
package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainform "github.com/xiebiao/bookstore-admin/internal/domain/form"
	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
)

// DefaultTTL 会话默认存活时间
const DefaultTTL = 30 * time.Minute

// Mutator 变更派发接口（由mutation.Dispatcher实现）
type Mutator interface {
	Create(ctx context.Context, resourceName string, values map[string]interface{}) (resource.Record, error)
	Update(ctx context.Context, resourceName, id string, values map[string]interface{}) (resource.Record, error)
}

// session 一个打开的表单会话
type session struct {
	draft     *domainform.Draft
	desc      *resource.Descriptor
	expiresAt time.Time
}

// Manager 表单会话管理器
type Manager struct {
	registry *resource.Registry
	mutator  Mutator
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*session

	stopOnce sync.Once
	stop     chan struct{}
}

// NewManager 创建会话管理器并启动清扫协程
func NewManager(registry *resource.Registry, mutator Mutator, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		registry: registry,
		mutator:  mutator,
		ttl:      ttl,
		sessions: map[string]*session{},
		stop:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Stop 停止清扫协程（优雅关闭用）
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// sweep 定期清理过期会话
func (m *Manager) sweep() {
	interval := m.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for id, s := range m.sessions {
				if now.After(s.expiresAt) {
					delete(m.sessions, id)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Open 打开表单会话
// 编辑模式时initial为被编辑记录的快照（弹窗打开时的当前值）
func (m *Manager) Open(resourceName string, mode domainform.Mode, targetID string, initial resource.Record) (*domainform.Draft, error) {
	desc, err := m.registry.Get(resourceName)
	if err != nil {
		return nil, err
	}

	switch mode {
	case domainform.ModeCreate:
		if !desc.CanCreate {
			return nil, apperrors.ErrOperationForbidden
		}
	case domainform.ModeEdit:
		if !desc.CanUpdate {
			return nil, apperrors.ErrOperationForbidden
		}
		if targetID == "" {
			return nil, apperrors.ErrInvalidParams
		}
	default:
		return nil, apperrors.ErrInvalidParams
	}

	id := uuid.New().String()
	draft := domainform.NewDraft(id, desc, mode, targetID, initial)

	m.mu.Lock()
	m.sessions[id] = &session{
		draft:     draft,
		desc:      desc,
		expiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()

	return draft, nil
}

// SetField 更新会话中的一个字段
func (m *Manager) SetField(formID, field string, value interface{}) (*domainform.Draft, error) {
	m.mu.Lock()
	s, ok := m.sessions[formID]
	if ok {
		s.expiresAt = time.Now().Add(m.ttl)
	}
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrFormNotFound
	}

	if err := s.draft.SetField(s.desc, field, value); err != nil {
		return nil, err
	}
	return s.draft, nil
}

// Validate 校验会话草稿，返回字段→错误信息（无错误时为空map）
func (m *Manager) Validate(formID string) (map[string]string, error) {
	m.mu.Lock()
	s, ok := m.sessions[formID]
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrFormNotFound
	}
	return s.draft.Validate(s.desc), nil
}

// SubmitResult 提交结果
type SubmitResult struct {
	Record resource.Record `json:"record"`
	// FieldErrors 非空表示校验失败，提交未发出
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// Submit 提交会话
//
// 1. 域层校验有错误 → 返回错误详情，不触达变更派发器
// 2. 上游拒绝 → 错误原样返回，草稿保留（可修正后重交）
// 3. 成功 → 会话关闭
func (m *Manager) Submit(ctx context.Context, formID string) (*SubmitResult, error) {
	m.mu.Lock()
	s, ok := m.sessions[formID]
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrFormNotFound
	}

	if errs := s.draft.Validate(s.desc); len(errs) > 0 {
		return &SubmitResult{FieldErrors: errs}, apperrors.ErrValidationFailed
	}

	var record resource.Record
	var err error
	if s.draft.Mode == domainform.ModeCreate {
		record, err = m.mutator.Create(ctx, s.desc.Name, s.draft.Values)
	} else {
		record, err = m.mutator.Update(ctx, s.desc.Name, s.draft.TargetID, s.draft.Values)
	}
	if err != nil {
		// 草稿保留，错误（含上游message）原样上抛
		return nil, err
	}

	m.mu.Lock()
	delete(m.sessions, formID)
	m.mu.Unlock()

	return &SubmitResult{Record: record}, nil
}

// Close 关闭会话（用户取消弹窗）
// 关闭不存在的会话不算错误：弹窗关闭必须幂等
func (m *Manager) Close(formID string) {
	m.mu.Lock()
	delete(m.sessions, formID)
	m.mu.Unlock()
}

// Get 读取会话草稿（回显用）
func (m *Manager) Get(formID string) (*domainform.Draft, error) {
	m.mu.Lock()
	s, ok := m.sessions[formID]
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrFormNotFound
	}
	return s.draft, nil
}
