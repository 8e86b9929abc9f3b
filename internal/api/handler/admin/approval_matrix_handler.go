package admin

import (
	"net/http"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/repository"
	"github.com/gin-gonic/gin"
)

// ApprovalMatrixHandler 审批矩阵管理处理器
type ApprovalMatrixHandler struct {
	matrixRepo *repository.ApprovalMatrixRepository
}

// NewApprovalMatrixHandler 创建审批矩阵管理处理器
func NewApprovalMatrixHandler(matrixRepo *repository.ApprovalMatrixRepository) *ApprovalMatrixHandler {
	return &ApprovalMatrixHandler{matrixRepo: matrixRepo}
}

// List 审批矩阵列表
func (h *ApprovalMatrixHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	matrices, total, err := h.matrixRepo.FindAll(page, pageSize)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取审批矩阵列表失败")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	c.JSON(http.StatusOK, model.Success(model.PaginatedResponse{
		Data:       matrices,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}))
}

// Get 按申请人查询审批矩阵
func (h *ApprovalMatrixHandler) Get(c *gin.Context) {
	empCode := c.Param("empCode")

	matrix, err := h.matrixRepo.FindByRequester(empCode)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取审批矩阵失败")
		return
	}
	if matrix == nil {
		c.JSON(http.StatusNotFound, model.Error(404, "该申请人未配置审批矩阵"))
		return
	}

	c.JSON(http.StatusOK, model.Success(matrix))
}

// Upsert 创建或更新审批矩阵行
//
// 每个申请人一行，一级审批人必填，3a/3b 可只配置其一（单人终审）。
func (h *ApprovalMatrixHandler) Upsert(c *gin.Context) {
	var matrix model.ApprovalMatrix
	if err := c.ShouldBindJSON(&matrix); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}
	if matrix.RequesterEmpCode == "" || matrix.Approver1EmpCode == "" {
		c.JSON(http.StatusBadRequest, model.Error(400, "申请人和一级审批人不能为空"))
		return
	}

	if err := h.matrixRepo.Upsert(&matrix); err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "保存审批矩阵失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(matrix))
}

// Delete 删除申请人的审批矩阵行
func (h *ApprovalMatrixHandler) Delete(c *gin.Context) {
	empCode := c.Param("empCode")

	if err := h.matrixRepo.DeleteByRequester(empCode); err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "删除审批矩阵失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(nil))
}
