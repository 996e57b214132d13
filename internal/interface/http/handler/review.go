package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bigbooks/internal/application/review"
	"github.com/xiebiao/bigbooks/internal/interface/http/dto"
	"github.com/xiebiao/bigbooks/internal/interface/http/middleware"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// ReviewHandler 评论HTTP处理器
type ReviewHandler struct {
	addUseCase  *appreview.AddReviewUseCase
	listUseCase *appreview.ListReviewsUseCase
}

// NewReviewHandler 创建评论处理器
func NewReviewHandler(addUseCase *appreview.AddReviewUseCase, listUseCase *appreview.ListReviewsUseCase) *ReviewHandler {
	return &ReviewHandler{addUseCase: addUseCase, listUseCase: listUseCase}
}

// List 图书的评论
// @Summary      评论列表
// @Description  匿名评论的作者显示为ANONYMOUS
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]dto.ReviewItem}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的图书ID")
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appreview.ListReviewsRequest{BookID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReviewList(result))
}

// Add 发表评论
// @Summary      发表评论
// @Description  评分0-10，每个账户对每本书只能评论一次(匿名评论也计入)
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.AddReviewRequest true "评论内容"
// @Success      200 {object} response.Response{data=dto.ReviewItem}
// @Failure      400 {object} response.Response "重复评论或账户已停用"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *ReviewHandler) Add(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的图书ID")
		return
	}
	var req dto.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.addUseCase.Execute(c.Request.Context(), appreview.AddReviewRequest{
		Identity:    middleware.GetIdentity(c),
		BookID:      id,
		Score:       *req.Score,
		Description: req.Description,
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	item := dto.NewReviewItem(*result)
	response.Success(c, &item)
}
