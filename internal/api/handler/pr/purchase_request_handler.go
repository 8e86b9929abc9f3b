package pr

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/repository"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/service"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseRequestHandler 采购申请处理器
type PurchaseRequestHandler struct {
	svc        *service.PurchaseRequestService
	prRepo     *repository.PurchaseRequestRepository
	matrixRepo *repository.ApprovalMatrixRepository
	escRepo    *repository.EscalationRepository
	auditRepo  *repository.AuditLogRepository
}

// NewPurchaseRequestHandler 创建采购申请处理器
func NewPurchaseRequestHandler(
	svc *service.PurchaseRequestService,
	prRepo *repository.PurchaseRequestRepository,
	matrixRepo *repository.ApprovalMatrixRepository,
	escRepo *repository.EscalationRepository,
	auditRepo *repository.AuditLogRepository,
) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{
		svc:        svc,
		prRepo:     prRepo,
		matrixRepo: matrixRepo,
		escRepo:    escRepo,
		auditRepo:  auditRepo,
	}
}

type submitRequest struct {
	Title                        string            `json:"title" binding:"required"`
	Entity                       string            `json:"entity" binding:"required"`
	Department                   string            `json:"department"`
	Location                     string            `json:"location"`
	RequesterEmpCode             string            `json:"requester_emp_code" binding:"required"`
	RequesterName                string            `json:"requester_name"`
	BusinessJustificationCode    string            `json:"business_justification_code"`
	BusinessJustificationDetails string            `json:"business_justification_details"`
	LineItems                    []model.LineItem  `json:"line_items"`
	TotalEstimatedCost           decimal.Decimal   `json:"total_estimated_cost"`
}

// Submit 提交采购申请
func (h *PurchaseRequestHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	result, err := h.svc.Submit(service.SubmitInput{
		Title:                        req.Title,
		Entity:                       req.Entity,
		Department:                   req.Department,
		Location:                     req.Location,
		RequesterEmpCode:             req.RequesterEmpCode,
		RequesterName:                req.RequesterName,
		BusinessJustificationCode:    req.BusinessJustificationCode,
		BusinessJustificationDetails: req.BusinessJustificationDetails,
		LineItems:                    req.LineItems,
		TotalEstimatedCost:           req.TotalEstimatedCost,
	})
	if err != nil {
		if errors.Is(err, workflow.ErrNoApprovalMatrix) {
			c.JSON(http.StatusBadRequest, model.Error(400, "未配置审批矩阵，无法提交申请"))
			return
		}
		model.HandleError(c, http.StatusInternalServerError, err, "提交采购申请失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(result))
}

type actionRequest struct {
	EmpCode string `json:"emp_code" binding:"required"`
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

// Action 执行审批动作（approve / reject / return）
func (h *PurchaseRequestHandler) Action(c *gin.Context) {
	prNumber := c.Param("prNumber")

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	result, err := h.svc.Act(prNumber, req.EmpCode, req.Action, req.Comment)
	if err != nil {
		h.writeActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(result))
}

type resubmitRequest struct {
	EmpCode string `json:"emp_code" binding:"required"`
	Comment string `json:"comment"`
}

// Resubmit 重新提交被退回的申请单
func (h *PurchaseRequestHandler) Resubmit(c *gin.Context) {
	prNumber := c.Param("prNumber")

	var req resubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}

	result, err := h.svc.Resubmit(prNumber, req.EmpCode, req.Comment)
	if err != nil {
		h.writeActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Success(result))
}

func (h *PurchaseRequestHandler) writeActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "申请单不存在"))
	case errors.Is(err, workflow.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, model.Error(400, "不支持的审批动作"))
	case errors.Is(err, workflow.ErrNoApprovalMatrix):
		c.JSON(http.StatusBadRequest, model.Error(400, "未配置审批矩阵"))
	case errors.Is(err, workflow.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, model.Error(403, "您无权操作该申请单"))
	case errors.Is(err, workflow.ErrInvalidState):
		c.JSON(http.StatusConflict, model.Error(409, "申请单状态已变更，请刷新后重试"))
	default:
		model.HandleError(c, http.StatusInternalServerError, err, "审批操作失败")
	}
}

// List 采购申请列表
//
// role: my 我提交的 / approve 待我审批的 / all 全部。
// approve 视角对升级后审批人为空的单，再按授权谓词过滤一遍，
// 只有原审批人或升级经理能看到；总数和分页按过滤后的结果算。
func (h *PurchaseRequestHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	role := c.Query("role")
	empCode := c.Query("emp_code")
	status := c.Query("status")

	if (role == "my" || role == "approve") && empCode == "" {
		c.JSON(http.StatusBadRequest, model.Error(400, "emp_code 不能为空"))
		return
	}

	var requests []model.PurchaseRequest
	var total int64
	var err error

	if role == "approve" {
		// 授权过滤无法在 SQL 里表达，取全量候选后过滤再分页
		requests, err = h.prRepo.FindPendingForApprover(empCode)
		if err == nil {
			actionable := h.filterActionable(requests, empCode)
			total = int64(len(actionable))
			requests = pageSlice(actionable, page, pageSize)
		}
	} else {
		requests, total, err = h.prRepo.List(page, pageSize, role, empCode, status)
	}
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取申请列表失败")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	c.JSON(http.StatusOK, model.Success(model.PaginatedResponse{
		Data:       requests,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}))
}

// pageSlice 对已过滤的结果做内存分页，越界页返回空页
func pageSlice(requests []model.PurchaseRequest, page, pageSize int) []model.PurchaseRequest {
	start := (page - 1) * pageSize
	if start >= len(requests) {
		return []model.PurchaseRequest{}
	}
	end := start + pageSize
	if end > len(requests) {
		end = len(requests)
	}
	return requests[start:end]
}

// filterActionable 保留 empCode 真正可操作的申请单
func (h *PurchaseRequestHandler) filterActionable(requests []model.PurchaseRequest, empCode string) []model.PurchaseRequest {
	out := make([]model.PurchaseRequest, 0, len(requests))
	for i := range requests {
		req := &requests[i]

		// 指定了当前审批人的单，仓储层已按工号过滤
		if req.CurrentApproverEmpCode != nil {
			out = append(out, *req)
			continue
		}

		matrix, err := h.matrixRepo.FindByRequester(req.RequesterEmpCode)
		if err != nil || matrix == nil {
			continue
		}
		snapshot, err := h.escRepo.FindMatrixByPRNumber(req.PRNumber)
		if err != nil {
			continue
		}
		escLogs, err := h.escRepo.FindLogsByPRNumber(req.PRNumber)
		if err != nil {
			continue
		}
		if workflow.CanAct(req, snapshot, matrix, escLogs, empCode) {
			out = append(out, *req)
		}
	}
	return out
}

// Detail 申请单详情（含审批历史和升级记录）
func (h *PurchaseRequestHandler) Detail(c *gin.Context) {
	prNumber := c.Param("prNumber")

	request, err := h.prRepo.FindByPRNumber(prNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, model.Error(404, "申请单不存在"))
			return
		}
		model.HandleError(c, http.StatusInternalServerError, err, "获取申请详情失败")
		return
	}

	auditTrail, err := h.auditRepo.FindByPRNumber(prNumber)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取审批历史失败")
		return
	}
	escalations, err := h.escRepo.FindLogsByPRNumber(prNumber)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取升级记录失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(gin.H{
		"request":     request,
		"audit_trail": auditTrail,
		"escalations": escalations,
	}))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
