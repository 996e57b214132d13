package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bigbooks/internal/application/book"
	"github.com/xiebiao/bigbooks/internal/interface/http/dto"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	getUseCase     *appbook.GetBookUseCase
	listUseCase    *appbook.ListBooksUseCase
	authorsUseCase *appbook.ListAuthorsUseCase
	addUseCase     *appbook.AddBookUseCase
	updateUseCase  *appbook.UpdateBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	getUseCase *appbook.GetBookUseCase,
	listUseCase *appbook.ListBooksUseCase,
	authorsUseCase *appbook.ListAuthorsUseCase,
	addUseCase *appbook.AddBookUseCase,
	updateUseCase *appbook.UpdateBookUseCase,
) *BookHandler {
	return &BookHandler{
		getUseCase:     getUseCase,
		listUseCase:    listUseCase,
		authorsUseCase: authorsUseCase,
		addUseCase:     addUseCase,
		updateUseCase:  updateUseCase,
	}
}

// Get 图书详情
// @Summary      图书详情
// @Description  含平均评分(没有评论时为null)
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的图书ID")
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), appbook.GetBookRequest{BookID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(result))
}

// ByGenre 按分类查询
// @Summary      按分类查询图书
// @Description  按评分降序，没有评分的排在最后
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        name query string true "分类名" Enums(Mystery, Romance, SelfHelp, Fantasy, Health)
// @Success      200 {object} response.Response{data=[]dto.BookListItem}
// @Failure      400 {object} response.Response "未知分类"
// @Router       /api/v1/books/genre [get]
func (h *BookHandler) ByGenre(c *gin.Context) {
	var q dto.GenreQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{Genre: q.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookList(result))
}

// ByAuthor 按作者查询
// @Summary      按作者查询图书
// @Description  作者名精确匹配(忽略大小写)，name为空返回全部图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        name query string false "作者"
// @Success      200 {object} response.Response{data=[]dto.BookListItem}
// @Router       /api/v1/books/author [get]
func (h *BookHandler) ByAuthor(c *gin.Context) {
	var q dto.AuthorQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{Author: q.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookList(result))
}

// Authors 作者列表
// @Summary      作者列表
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.AuthorItem}
// @Router       /api/v1/books/authors [get]
func (h *BookHandler) Authors(c *gin.Context) {
	result, err := h.authorsUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAuthorList(result))
}

// Add 上架图书
// @Summary      上架图书
// @Description  价格0.01-1000，库存0-1000，ISBN为GUID且唯一
// @Tags         图书管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "无权限"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) Add(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.addUseCase.Execute(c.Request.Context(), appbook.AddBookRequest{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Genre:       req.Genre,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(result))
}

// Update 修改图书
// @Summary      修改图书
// @Tags         图书管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的图书ID")
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		BookID:      id,
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Genre:       req.Genre,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(result))
}
