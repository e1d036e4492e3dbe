package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-admin/internal/application/listing"
	"github.com/xiebiao/bookstore-admin/internal/application/mutation"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	"github.com/xiebiao/bookstore-admin/pkg/response"
)

// ResourceHandler 资源CRUD处理器
// 七种资源共用同一组Handler，差异由资源契约（Descriptor）驱动
type ResourceHandler struct {
	listing    *listing.Service
	dispatcher *mutation.Dispatcher
}

// NewResourceHandler 创建资源处理器
func NewResourceHandler(listingService *listing.Service, dispatcher *mutation.Dispatcher) *ResourceHandler {
	return &ResourceHandler{
		listing:    listingService,
		dispatcher: dispatcher,
	}
}

// List 资源列表
// @Summary      资源列表
// @Description  按筛选/分页参数返回一页数据；URL query即筛选状态的规范序列化
// @Tags         资源
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "资源名" Enums(products, categories, customers, orders, staffs, suppliers, publishers)
// @Param        page query int false "页码（默认1）"
// @Param        limit query int false "每页大小（默认5）"
// @Param        keyword query string false "搜索关键词（orders用search）"
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      404 {object} response.Response "未知资源"
// @Router       /admin/api/v1/resources/{resource} [get]
func (h *ResourceHandler) List(c *gin.Context) {
	outcome, err := h.listing.List(c.Request.Context(), c.Param("resource"), c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	page := response.NewPageData(outcome.Result.Items, outcome.Result.TotalCount,
		outcome.Filter.Page, outcome.Filter.Limit)
	page.Stale = outcome.Stale

	if outcome.Stale {
		response.SuccessWithMessage(c, "数据服务暂不可用，展示的是上次成功的数据", page)
		return
	}
	response.Success(c, page)
}

// Create 创建记录
// @Summary      创建记录
// @Tags         资源
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "资源名"
// @Param        request body object true "记录字段（结构因资源而异）"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "上游拒绝（message原样返回）"
// @Router       /admin/api/v1/resources/{resource} [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return
	}

	record, err := h.dispatcher.Create(c.Request.Context(), c.Param("resource"), values)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "创建成功", record)
}

// Update 更新记录
// @Summary      更新记录
// @Tags         资源
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "资源名"
// @Param        id path string true "记录ID"
// @Param        request body object true "待更新字段"
// @Success      200 {object} response.Response
// @Router       /admin/api/v1/resources/{resource}/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return
	}

	record, err := h.dispatcher.Update(c.Request.Context(), c.Param("resource"), c.Param("id"), values)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", record)
}

// Delete 删除记录
// @Summary      删除记录
// @Description  必须携带confirm=true，否则直接拒绝且不发出上游请求
// @Tags         资源
// @Produce      json
// @Security     BearerAuth
// @Param        resource path string true "资源名"
// @Param        id path string true "记录ID"
// @Param        confirm query bool true "删除确认"
// @Success      200 {object} response.Response
// @Failure      409 {object} response.Response "缺少确认"
// @Router       /admin/api/v1/resources/{resource}/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	confirmed := strings.EqualFold(c.Query("confirm"), "true")

	err := h.dispatcher.Delete(c.Request.Context(), c.Param("resource"), c.Param("id"), confirmed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
