package dto

// FlipLikeRequest 翻转喜欢请求。
type FlipLikeRequest struct {
	TargetID string `json:"targetId" binding:"required"`
}

// FlipLikeResponse 翻转喜欢响应，Liked 为翻转后的状态。
type FlipLikeResponse struct {
	Liked bool `json:"liked"`
}

// VisitRequest 记录主页访问请求。
type VisitRequest struct {
	TargetID string `json:"targetId" binding:"required"`
}

// UserListResponse 用户 id 列表响应。
type UserListResponse struct {
	Users []string `json:"users"`
}
