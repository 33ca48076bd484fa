package domain

import (
	"context"

	"signaldesk.com/internal/model"
)

// ===========================
// 草稿会话服务接口
// ===========================

// DraftService 定义信号草稿编辑会话的业务操作
// 每次修改后都会完整重算派生字段并返回最新预览
type DraftService interface {
	// 创建新草稿 (默认值: points / buy / 1 手 / MARKET / 一个空止盈)
	Create(ctx context.Context) (*model.Preview, error)
	// 获取草稿预览
	Get(ctx context.Context, draftID string) (*model.Preview, error)
	// 应用字段修改
	Apply(ctx context.Context, draftID string, edit model.DraftEdit) (*model.Preview, error)
	// 追加一个止盈目标
	AddTarget(ctx context.Context, draftID string) (*model.Preview, error)
	// 删除止盈目标 (仅剩一个时静默忽略)
	RemoveTarget(ctx context.Context, draftID string, index int) (*model.Preview, error)
	// 修改止盈目标数值
	UpdateTarget(ctx context.Context, draftID string, index int, magnitude float64) (*model.Preview, error)
	// 附加图片 (data URI, 原样透传)
	AttachImage(ctx context.Context, draftID string, dataURI string) (*model.Preview, error)
	// 重置表单
	Reset(ctx context.Context, draftID string) (*model.Preview, error)
	// 结束会话
	Delete(ctx context.Context, draftID string) error
}

// ===========================
// 草稿存储接口
// ===========================

// DraftStore 保存会话期间的草稿；会话过期即销毁
type DraftStore interface {
	Save(ctx context.Context, draft *model.Draft) error
	// 不存在或已过期时返回 ErrNotFound
	Load(ctx context.Context, draftID string) (*model.Draft, error)
	Delete(ctx context.Context, draftID string) error
}

// ===========================
// WebSocket 推送接口
// ===========================

// Notifier 定义推送通知的接口
type Notifier interface {
	// 推送给正在查看该草稿的所有客户端
	PushToDraft(draftID string, data interface{})
}
