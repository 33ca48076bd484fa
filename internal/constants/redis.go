package constants

// Redis 键前缀
const (
	// RedisKeyDraftPrefix 草稿会话 (msgpack) 键前缀, 完整键为 prefix + draftID
	RedisKeyDraftPrefix = "signal:draft:"
)

// Redis Pub/Sub 频道
const (
	// RedisChannelDraftPrefix 草稿预览更新频道前缀, 完整频道为 prefix + draftID
	RedisChannelDraftPrefix = "signal.draft."
)
