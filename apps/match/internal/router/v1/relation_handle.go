package v1

import (
	"errors"

	"MatchServer/apps/match/internal/dto"
	"MatchServer/apps/match/internal/middleware"
	"MatchServer/apps/match/internal/service"
	"MatchServer/consts"
	"MatchServer/pkg/logger"
	"MatchServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// RelationHandler 配对关系处理器
type RelationHandler struct {
	matchService service.IMatchService
	dispatcher   service.EventDispatcher
}

// NewRelationHandler 创建配对关系处理器
func NewRelationHandler(matchService service.IMatchService, dispatcher service.EventDispatcher) *RelationHandler {
	return &RelationHandler{
		matchService: matchService,
		dispatcher:   dispatcher,
	}
}

// FlipLike 翻转喜欢接口
// @Summary 翻转喜欢
// @Description 翻转当前用户对目标用户的喜欢状态，驱动配对状态迁移
// @Tags 关系接口
// @Accept json
// @Produce json
// @Param request body dto.FlipLikeRequest true "翻转喜欢请求"
// @Success 200 {object} dto.FlipLikeResponse
// @Router /api/v1/relation/flip [post]
func (h *RelationHandler) FlipLike(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	var req dto.FlipLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	liked, events, err := h.matchService.FlipLike(c.Request.Context(), userID, req.TargetID)
	if err != nil {
		h.failWith(c, err, "翻转喜欢服务内部错误")
		return
	}

	// 事件在事务提交后异步投递，失败不影响本次响应。
	h.dispatcher.DispatchAsync(c.Request.Context(), events)
	result.Success(c, dto.FlipLikeResponse{Liked: liked})
}

// Status 查询配对状态接口
// @Summary 查询配对状态
// @Description 查询当前用户与目标用户的配对状态
// @Tags 关系接口
// @Produce json
// @Param userId query string true "目标用户id"
// @Router /api/v1/relation/status [get]
func (h *RelationHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	otherID := c.Query("userId")
	if otherID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	status, err := h.matchService.MatchStatus(c.Request.Context(), userID, otherID)
	if err != nil {
		h.failWith(c, err, "查询配对状态服务内部错误")
		return
	}
	result.Success(c, status)
}

// Matches 查询配对列表接口
// @Summary 查询配对列表
// @Description 查询当前用户的全部 MATCHED 配对
// @Tags 关系接口
// @Produce json
// @Router /api/v1/relation/matches [get]
func (h *RelationHandler) Matches(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	matches, err := h.matchService.MatchesFor(c.Request.Context(), userID)
	if err != nil {
		h.failWith(c, err, "查询配对列表服务内部错误")
		return
	}
	result.Success(c, matches)
}

// Likes 查询喜欢列表接口
// @Summary 查询喜欢列表
// @Description 查询当前用户喜欢的全部用户
// @Tags 关系接口
// @Produce json
// @Router /api/v1/relation/likes [get]
func (h *RelationHandler) Likes(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	users, err := h.matchService.LikesBy(c.Request.Context(), userID)
	if err != nil {
		h.failWith(c, err, "查询喜欢列表服务内部错误")
		return
	}
	result.Success(c, dto.UserListResponse{Users: users})
}

// LikedBy 查询被喜欢列表接口
// @Summary 查询被喜欢列表
// @Description 查询喜欢当前用户的全部用户
// @Tags 关系接口
// @Produce json
// @Router /api/v1/relation/liked-by [get]
func (h *RelationHandler) LikedBy(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	users, err := h.matchService.LikedBy(c.Request.Context(), userID)
	if err != nil {
		h.failWith(c, err, "查询被喜欢列表服务内部错误")
		return
	}
	result.Success(c, dto.UserListResponse{Users: users})
}

// Visit 记录主页访问接口
// @Summary 记录主页访问
// @Description 记录当前用户访问目标用户主页，目标在线时收到 VISIT 通知
// @Tags 关系接口
// @Accept json
// @Produce json
// @Param request body dto.VisitRequest true "记录主页访问请求"
// @Router /api/v1/relation/visit [post]
func (h *RelationHandler) Visit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	var req dto.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	events, err := h.matchService.Visit(c.Request.Context(), userID, req.TargetID)
	if err != nil {
		h.failWith(c, err, "记录主页访问服务内部错误")
		return
	}

	h.dispatcher.DispatchAsync(c.Request.Context(), events)
	result.Success(c, nil)
}

// failWith 统一的错误响应：业务错误映射错误码，其余按内部错误记日志。
func (h *RelationHandler) failWith(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrSelfTarget):
		result.Fail(c, nil, consts.CodeCannotLikeSelf)
	case errors.Is(err, service.ErrInvalidUser):
		result.Fail(c, nil, consts.CodeParamError)
	default:
		logger.Error(c.Request.Context(), logMsg, logger.ErrorField(err))
		result.Fail(c, nil, consts.CodeInternalError)
	}
}
