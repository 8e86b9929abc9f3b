// Package handler 提供统一的 handler 导出
// 所有 handler 按功能模块分类到子目录中
package handler

import (
	// Admin handlers
	adminHandler "github.com/AdityaDodda/purchasekandhari-sub000/internal/api/handler/admin"
	// Purchase request handlers
	prHandler "github.com/AdityaDodda/purchasekandhari-sub000/internal/api/handler/pr"
)

// Purchase request handlers
type PurchaseRequestHandler = prHandler.PurchaseRequestHandler

var NewPurchaseRequestHandler = prHandler.NewPurchaseRequestHandler

// Admin handlers
type ApprovalMatrixHandler = adminHandler.ApprovalMatrixHandler
type UserHandler = adminHandler.UserHandler

var NewApprovalMatrixHandler = adminHandler.NewApprovalMatrixHandler
var NewUserHandler = adminHandler.NewUserHandler
