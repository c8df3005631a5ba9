package consts

// ==================== 通知类型 ====================

// 下行 notification 事件的 type 取值。
const (
	NotifyLike    = "LIKE"    // 被喜欢
	NotifyMatch   = "MATCH"   // 配对成功
	NotifyUnmatch = "UNMATCH" // 配对解除
	NotifyUnlike  = "UNLIKE"  // 被取消喜欢
	NotifyMessage = "MESSAGE" // 收到新消息
	NotifyVisit   = "VISIT"   // 被访问主页
)

// ==================== 下行事件名 ====================

const (
	EventMessage            = "message"            // 会话内新消息
	EventNotification       = "notification"       // 通知
	EventNewChat            = "newChat"            // 新会话建立
	EventDeleteChat         = "deleteChat"         // 会话删除（载荷为对方用户id）
	EventFetchChatsResponse = "fetchChatsResponse" // fetchChats 的应答
	EventConnected          = "connected"          // 内部对端接入确认
	EventHeartbeatAck       = "heartbeat_ack"      // 心跳应答
	EventError              = "error"              // 协议层错误帧
)

// ==================== 上行事件名 ====================

const (
	ActionFetchChats  = "fetchChats"  // 拉取当前用户全部会话
	ActionCreateChat  = "createChat"  // 手动创建会话
	ActionSendMessage = "sendMessage" // 发送消息
	ActionHeartbeat   = "heartbeat"   // 心跳
	ActionRedirect    = "redirect"    // 内部对端转发下行事件
)

// InternalPeerToken 内部可信对端的保留 token。
// 局域网信任假设：仅用于部署边界内的服务间通道，不得暴露到公网。
const InternalPeerToken = "server"

// ==================== 通用错误码 ====================

const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeTooManyRequests  = 10005 // 请求过于频繁
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized = 20001 // 未认证
	CodeInvalidToken = 20002 // Token 无效或会话已失效
)

// 关系模块错误 (12xxx)
const (
	CodeCannotLikeSelf = 12001 // 不能喜欢自己
	CodeUserNotFound   = 12002 // 目标用户不存在
)

// 会话模块错误 (13xxx)
const (
	CodeChatNotFound  = 13001 // 会话不存在
	CodeDuplicateChat = 13002 // 该用户对已存在会话
	CodeNotChatMember = 13003 // 不是会话成员
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError = 30001 // 服务器内部错误
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeTooManyRequests:  "请求过于频繁",

	CodeUnauthorized: "未认证",
	CodeInvalidToken: "Token 无效或会话已失效",

	CodeCannotLikeSelf: "不能喜欢自己",
	CodeUserNotFound:   "目标用户不存在",

	CodeChatNotFound:  "会话不存在",
	CodeDuplicateChat: "该用户对已存在会话",
	CodeNotChatMember: "不是会话成员",

	CodeInternalError: "服务器内部错误",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}
