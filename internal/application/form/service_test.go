package form

import (
	"context"
	"sync"
	"testing"
	"time"

	domainform "github.com/xiebiao/bookstore-admin/internal/domain/form"
	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
)

// fakeMutator 可控的假派发器
type fakeMutator struct {
	mu      sync.Mutex
	creates int
	updates int
	fail    error
}

func (f *fakeMutator) Create(ctx context.Context, resourceName string, values map[string]interface{}) (resource.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.creates++
	return resource.Record{"_id": "new1"}, nil
}

func (f *fakeMutator) Update(ctx context.Context, resourceName, id string, values map[string]interface{}) (resource.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.updates++
	return resource.Record{"_id": id}, nil
}

func (f *fakeMutator) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.updates
}

func setupManager(t *testing.T) (*Manager, *fakeMutator) {
	t.Helper()
	mut := &fakeMutator{}
	m := NewManager(resource.NewRegistry(), mut, time.Minute)
	t.Cleanup(m.Stop)
	return m, mut
}

// TestManager_OpenSetSubmit 测试完整的创建流程
func TestManager_OpenSetSubmit(t *testing.T) {
	m, mut := setupManager(t)

	draft, err := m.Open("categories", domainform.ModeCreate, "", nil)
	if err != nil {
		t.Fatalf("Open失败: %v", err)
	}

	if _, err := m.SetField(draft.ID, "name", "Văn Học"); err != nil {
		t.Fatalf("SetField失败: %v", err)
	}

	result, err := m.Submit(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("Submit失败: %v", err)
	}
	if result.Record.ID("_id") != "new1" {
		t.Errorf("提交结果错误: %+v", result)
	}

	// 提交成功后会话关闭
	if _, err := m.Get(draft.ID); apperrors.CodeOf(err) != apperrors.ErrCodeFormNotFound {
		t.Errorf("提交成功后会话应已关闭，实际: %v", err)
	}

	creates, _ := mut.calls()
	if creates != 1 {
		t.Errorf("派发器应被调用一次，实际%d", creates)
	}
}

// TestManager_ValidationBlocksSubmit 测试校验失败不触达派发器
func TestManager_ValidationBlocksSubmit(t *testing.T) {
	m, mut := setupManager(t)

	draft, err := m.Open("categories", domainform.ModeCreate, "", nil)
	if err != nil {
		t.Fatalf("Open失败: %v", err)
	}

	// 必填的name未填
	result, err := m.Submit(context.Background(), draft.ID)
	if apperrors.CodeOf(err) != apperrors.ErrCodeValidationFailed {
		t.Fatalf("应返回校验失败，实际: %v", err)
	}
	if result.FieldErrors["name"] != "Vui lòng nhập tên thể loại" {
		t.Errorf("校验错误信息不匹配: %v", result.FieldErrors)
	}

	creates, updates := mut.calls()
	if creates != 0 || updates != 0 {
		t.Error("校验失败时不应调用派发器")
	}

	// 会话仍然存在
	if _, err := m.Get(draft.ID); err != nil {
		t.Errorf("校验失败后会话应保留: %v", err)
	}
}

// TestManager_UpstreamRejectionKeepsDraft 测试上游拒绝后草稿保留且message透传
func TestManager_UpstreamRejectionKeepsDraft(t *testing.T) {
	m, mut := setupManager(t)
	mut.fail = apperrors.New(apperrors.ErrCodeUpstreamRejected, "Tên đã tồn tại")

	draft, _ := m.Open("categories", domainform.ModeCreate, "", nil)
	_, _ = m.SetField(draft.ID, "name", "Văn Học")

	_, err := m.Submit(context.Background(), draft.ID)
	if err == nil {
		t.Fatal("上游拒绝应返回错误")
	}
	if apperrors.GetAppError(err).Message != "Tên đã tồn tại" {
		t.Errorf("上游message应原样透传，实际: %v", err)
	}

	// 草稿原样保留，已填内容不丢
	kept, err := m.Get(draft.ID)
	if err != nil {
		t.Fatalf("上游拒绝后会话应保留: %v", err)
	}
	if kept.Values["name"] != "Văn Học" {
		t.Errorf("已填内容不应丢失: %v", kept.Values)
	}

	// 修正后可重交
	mut.fail = nil
	if _, err := m.Submit(context.Background(), draft.ID); err != nil {
		t.Errorf("修正后重交应成功: %v", err)
	}
}

// TestManager_EditSubmitUpdates 测试编辑模式提交走更新
func TestManager_EditSubmitUpdates(t *testing.T) {
	m, mut := setupManager(t)

	initial := resource.Record{"name": "Văn Học", "slug": "van-hoc"}
	draft, err := m.Open("categories", domainform.ModeEdit, "c1", initial)
	if err != nil {
		t.Fatalf("Open失败: %v", err)
	}

	_, _ = m.SetField(draft.ID, "name", "Văn Học Việt Nam")
	if _, err := m.Submit(context.Background(), draft.ID); err != nil {
		t.Fatalf("Submit失败: %v", err)
	}

	creates, updates := mut.calls()
	if creates != 0 || updates != 1 {
		t.Errorf("编辑提交应走更新，实际creates=%d updates=%d", creates, updates)
	}
}

// TestManager_OrdersCreateForbidden 测试orders不允许打开创建表单
func TestManager_OrdersCreateForbidden(t *testing.T) {
	m, _ := setupManager(t)

	_, err := m.Open("orders", domainform.ModeCreate, "", nil)
	if apperrors.CodeOf(err) != apperrors.ErrCodeOperationForbidden {
		t.Errorf("orders创建表单应被拒绝，实际: %v", err)
	}
}

// TestManager_CloseIsIdempotent 测试关闭幂等
func TestManager_CloseIsIdempotent(t *testing.T) {
	m, _ := setupManager(t)

	draft, _ := m.Open("categories", domainform.ModeCreate, "", nil)
	m.Close(draft.ID)
	m.Close(draft.ID) // 重复关闭不报错

	if _, err := m.Get(draft.ID); apperrors.CodeOf(err) != apperrors.ErrCodeFormNotFound {
		t.Errorf("关闭后会话应不存在，实际: %v", err)
	}
}

// TestManager_UnknownFormID 测试不存在的会话
func TestManager_UnknownFormID(t *testing.T) {
	m, _ := setupManager(t)

	if _, err := m.SetField("nope", "name", "x"); apperrors.CodeOf(err) != apperrors.ErrCodeFormNotFound {
		t.Errorf("不存在的会话应返回对应错误，实际: %v", err)
	}
	if _, err := m.Submit(context.Background(), "nope"); apperrors.CodeOf(err) != apperrors.ErrCodeFormNotFound {
		t.Errorf("不存在的会话应返回对应错误，实际: %v", err)
	}
}
