// Package handler 每个资源一个 handler，按需实现 MountAPI / MountAdmin，由 router.Registry 统一挂载
package handler

import (
	"go-gin-rbac/pkg/utils"
)

type pageQuery struct {
	Page  int `form:"page"  binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q pageQuery) paging() utils.Paging { return utils.NewPaging(q.Page, q.Limit) }

// idsReq 整体重算关联
type idsReq struct {
	IDs []uint64 `json:"ids" binding:"required,dive,gt=0"`
}

type descReq struct {
	Name        string  `json:"name"        binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

type descPatchReq struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}
