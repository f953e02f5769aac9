package handler

import (
	"Fieldclip/internal/api/dto"
	"Fieldclip/internal/model"
	"Fieldclip/internal/pkg/response"
	"Fieldclip/internal/pkg/util"
	"Fieldclip/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type ClipHandler struct {
	clipSvc    service.ClipService
	catalogSvc service.CatalogService
}

func NewClipHandler(clipSvc service.ClipService, catalogSvc service.CatalogService) *ClipHandler {
	return &ClipHandler{
		clipSvc:    clipSvc,
		catalogSvc: catalogSvc,
	}
}

// CreateClip 新建切片
func (h *ClipHandler) CreateClip(c *gin.Context) {
	var req dto.CreateClipDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	clipID, err := h.clipSvc.CreateClip(c.Request.Context(), &service.CreateClipInput{
		DeviceSerial: req.DeviceSerial,
		UploadedBy:   req.UploadedBy,
		Path:         req.Path,
		Duration:     *req.Duration,
		Tags:         req.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.CreatedWith(c, dto.CreateClipResultDTO{ClipID: clipID})
}

// UpdateClipsStatus 批量修改待审核切片状态
func (h *ClipHandler) UpdateClipsStatus(c *gin.Context) {
	var req dto.UpdateClipStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.clipSvc.BulkUpdateStatus(c.Request.Context(), req.ClipIDs, model.ClipStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.UpdateClipStatusResultDTO{Updated: updated})
}

// ReviewClip 审核切片
func (h *ClipHandler) ReviewClip(c *gin.Context) {
	clipID, ok := util.ParseID(c.Param("clip_id"))
	if !ok {
		response.Error(c, service.ErrClipIDInvalid)
		return
	}

	var req dto.ReviewClipDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	review, err := h.clipSvc.RecordReview(c.Request.Context(), clipID, req.Reviewer, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}

	var res dto.ClipReviewDTO
	if !copyResult(c, &res, review) {
		return
	}
	response.CreatedWith(c, res)
}

// ReopenClip 撤销审核
func (h *ClipHandler) ReopenClip(c *gin.Context) {
	clipID, ok := util.ParseID(c.Param("clip_id"))
	if !ok {
		response.Error(c, service.ErrClipIDInvalid)
		return
	}

	if err := h.clipSvc.ReopenClip(c.Request.Context(), clipID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteClip 删除切片
func (h *ClipHandler) DeleteClip(c *gin.Context) {
	clipID, ok := util.ParseID(c.Param("clip_id"))
	if !ok {
		response.Error(c, service.ErrClipIDInvalid)
		return
	}

	if err := h.clipSvc.DeleteClip(c.Request.Context(), clipID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetClipStats 获取切片统计
func (h *ClipHandler) GetClipStats(c *gin.Context) {
	clipID, ok := util.ParseID(c.Param("clip_id"))
	if !ok {
		response.Error(c, service.ErrClipIDInvalid)
		return
	}

	stats, err := h.catalogSvc.GetStatistics(c.Request.Context(), clipID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var res dto.ClipStatsDTO
	if !copyResult(c, &res, stats) {
		return
	}
	response.Success(c, res)
}

// ListPendingClips 待审核切片列表
func (h *ClipHandler) ListPendingClips(c *gin.Context) {
	h.listClips(c, model.ClipStatusPending)
}

// ListClips 按状态查询切片，默认 pending
func (h *ClipHandler) ListClips(c *gin.Context) {
	status := model.ClipStatus(c.DefaultQuery("status", string(model.ClipStatusPending)))
	h.listClips(c, status)
}

func (h *ClipHandler) listClips(c *gin.Context, status model.ClipStatus) {
	var req dto.ClipListQueryDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	after, err := util.ParseDate(req.CreatedAfter)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	before, err := util.ParseDate(req.CreatedBefore)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := h.catalogSvc.ListByStatus(c.Request.Context(), &service.ListQuery{
		Status:        status,
		DeviceSerial:  req.DeviceSerial,
		Reviewer:      req.Reviewer,
		Tags:          util.SplitTags(req.Tags),
		CreatedAfter:  after,
		CreatedBefore: before,
		Sort:          req.Sort,
		Page:          req.Page,
		PerPage:       req.PerPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	res := dto.ClipPageDTO{
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: result.TotalPages,
		Results:    make([]*dto.ClipItemDTO, 0, len(result.Results)),
	}
	if len(result.Results) > 0 && !copyResult(c, &res.Results, &result.Results) {
		return
	}
	response.Success(c, res)
}

// copyResult 拷贝到响应 DTO，失败时直接返回错误响应
func copyResult(c *gin.Context, to, from any) bool {
	if err := copier.Copy(to, from); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}
