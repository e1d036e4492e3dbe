// Package mutation 变更操作的应用层：派发、缓存失效、审计
//
// 设计说明：
// 1. 所有写操作（创建/更新/删除）集中从这里派发到上游网关
// 2. 成功后才失效对应资源的列表缓存；失败不触碰缓存
// 3. 审计事件发布到RabbitMQ，fire-and-forget：
//    发布失败只记日志和指标，绝不影响主流程
// 4. 删除必须显式确认，未确认时不会发出任何上游请求
package mutation

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	"github.com/xiebiao/bookstore-admin/pkg/metrics"
)

// Invalidator 列表缓存失效接口（由listing.Cache实现）
type Invalidator interface {
	Invalidate(resourceName string)
}

// AuditPublisher 审计事件发布接口（由pkg/mq.Publisher实现）
type AuditPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// AuditEvent 审计事件
// 路由键格式：{resource}.{action}，如 products.delete
type AuditEvent struct {
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	RecordID  string    `json:"record_id"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// Dispatcher 变更派发器
type Dispatcher struct {
	registry    *resource.Registry
	gateway     resource.Gateway
	invalidator Invalidator
	audit       AuditPublisher // 可为nil（未启用MQ）
}

// NewDispatcher 创建变更派发器
func NewDispatcher(registry *resource.Registry, gateway resource.Gateway, invalidator Invalidator, audit AuditPublisher) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		gateway:     gateway,
		invalidator: invalidator,
		audit:       audit,
	}
}

// actorKey 操作人在Context中的键
type actorKey struct{}

// WithActor 把操作人写入Context（认证中间件调用）
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

func actorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// Create 创建记录
func (d *Dispatcher) Create(ctx context.Context, resourceName string, values map[string]interface{}) (resource.Record, error) {
	desc, err := d.registry.Get(resourceName)
	if err != nil {
		return nil, err
	}
	if !desc.CanCreate {
		return nil, apperrors.ErrOperationForbidden
	}

	record, err := d.gateway.Create(ctx, desc, values)
	if err != nil {
		return nil, err
	}

	d.invalidator.Invalidate(desc.Name)
	d.publishAudit(ctx, desc.Name, "create", record.ID(desc.IDField))

	return record, nil
}

// Update 更新记录
func (d *Dispatcher) Update(ctx context.Context, resourceName, id string, values map[string]interface{}) (resource.Record, error) {
	desc, err := d.registry.Get(resourceName)
	if err != nil {
		return nil, err
	}
	if !desc.CanUpdate {
		return nil, apperrors.ErrOperationForbidden
	}

	record, err := d.gateway.Update(ctx, desc, id, values)
	if err != nil {
		return nil, err
	}

	d.invalidator.Invalidate(desc.Name)
	d.publishAudit(ctx, desc.Name, "update", id)

	return record, nil
}

// Delete 删除记录
// confirmed为false时直接拒绝，不发出上游请求（误删保护）
func (d *Dispatcher) Delete(ctx context.Context, resourceName, id string, confirmed bool) error {
	desc, err := d.registry.Get(resourceName)
	if err != nil {
		return err
	}
	if !confirmed {
		return apperrors.ErrConfirmRequired
	}
	if !desc.CanDelete {
		return apperrors.ErrOperationForbidden
	}

	if err := d.gateway.Delete(ctx, desc, id); err != nil {
		return err
	}

	d.invalidator.Invalidate(desc.Name)
	d.publishAudit(ctx, desc.Name, "delete", id)

	return nil
}

// publishAudit 发布审计事件（异步，不阻塞主流程）
func (d *Dispatcher) publishAudit(ctx context.Context, resourceName, action, recordID string) {
	if d.audit == nil {
		return
	}

	event := AuditEvent{
		Resource:  resourceName,
		Action:    action,
		RecordID:  recordID,
		Actor:     actorFrom(ctx),
		Timestamp: time.Now(),
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		result := "success"
		if err := d.audit.Publish(pubCtx, resourceName+"."+action, event); err != nil {
			result = "failure"
			log.Printf("[mutation] 审计事件发布失败: %s.%s id=%s err=%v", resourceName, action, recordID, err)
		}
		metrics.IncCounterVec(metrics.AuditEventsPublishedTotal,
			map[string]string{"resource": resourceName, "action": action, "result": result})
	}()
}
