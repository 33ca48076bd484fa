package constants

// 事件类型常量
const (
	// 草稿事件
	EventDraftCreated = "draft.created"
	EventDraftUpdated = "draft.updated"
	EventDraftReset   = "draft.reset"
	EventDraftDeleted = "draft.deleted"
)
