package admin

import (
	"net/http"
	"strconv"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/repository"
	"github.com/gin-gonic/gin"
)

// UserHandler 组织人员管理处理器
type UserHandler struct {
	userRepo *repository.UserRepository
}

// NewUserHandler 创建组织人员管理处理器
func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// List 人员列表（支持关键字搜索）
func (h *UserHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	keyword := c.Query("keyword")

	users, total, err := h.userRepo.FindAll(page, pageSize, keyword)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取人员列表失败")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	c.JSON(http.StatusOK, model.Success(model.PaginatedResponse{
		Data:       users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}))
}

// Get 按工号查询人员
func (h *UserHandler) Get(c *gin.Context) {
	empCode := c.Param("empCode")

	user, err := h.userRepo.FindByEmpCode(empCode)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "获取人员信息失败")
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, model.Error(404, "人员不存在"))
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}

// Upsert 创建或更新人员（经理通过 manager_name 按姓名关联）
func (h *UserHandler) Upsert(c *gin.Context) {
	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "请求参数错误: "+err.Error()))
		return
	}
	if user.EmpCode == "" || user.Name == "" {
		c.JSON(http.StatusBadRequest, model.Error(400, "工号和姓名不能为空"))
		return
	}

	if err := h.userRepo.Upsert(&user); err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "保存人员信息失败")
		return
	}

	c.JSON(http.StatusOK, model.Success(user))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
