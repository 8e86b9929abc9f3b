package workflow

import (
	"errors"
)

// 工作流的类型化错误。handler 层据此映射为具体的 HTTP 状态码，
// 避免把所有失败都归为 500。
var (
	// ErrNoApprovalMatrix 申请人未配置审批矩阵（阻断提交，不可重试）
	ErrNoApprovalMatrix = errors.New("no approval matrix configured for requester")

	// ErrNotAuthorized 操作人不是当前审批人，也不在升级后的授权范围内
	ErrNotAuthorized = errors.New("user is not authorized to act on this request")

	// ErrInvalidState 申请单不在可操作状态（已终结，或已被并发操作推进到其他级别）
	ErrInvalidState = errors.New("request has already been acted upon or is not pending")

	// ErrInvalidAction 未知的审批动作
	ErrInvalidAction = errors.New("invalid approval action")
)
