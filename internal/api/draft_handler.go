package api

import (
	"github.com/gofiber/fiber/v2"
	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/model"
	"signaldesk.com/internal/service"
)

// DraftHandler 处理信号草稿相关的 HTTP 请求
type DraftHandler struct {
	draftSvc domain.DraftService
}

// NewDraftHandler 创建草稿处理器
func NewDraftHandler(draftSvc domain.DraftService) *DraftHandler {
	return &DraftHandler{draftSvc: draftSvc}
}

// TargetRequest 止盈目标请求
type TargetRequest struct {
	Magnitude float64 `json:"Magnitude"`
}

// ImageRequest 图片请求
type ImageRequest struct {
	Image string `json:"Image"`
}

// PreviewSignal 无状态预览, 未提供的字段取表单默认值
// POST /api/signals/preview
func (h *DraftHandler) PreviewSignal(c *fiber.Ctx) error {
	draft := model.NewDraft("")
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Error": "Invalid request body"})
	}
	if len(draft.Targets) == 0 {
		draft.AddTarget()
	}
	if err := service.ValidateDraft(draft); err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, service.PreviewDraft(draft))
}

// CreateDraft 创建草稿
// POST /api/drafts
func (h *DraftHandler) CreateDraft(c *fiber.Ctx) error {
	p, err := h.draftSvc.Create(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusCreated, p)
}

// GetDraft 获取草稿预览
// GET /api/drafts/:id
func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	p, err := h.draftSvc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, p)
}

// UpdateDraft 修改草稿字段
// PATCH /api/drafts/:id
func (h *DraftHandler) UpdateDraft(c *fiber.Ctx) error {
	var edit model.DraftEdit
	if err := c.BodyParser(&edit); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Error": "Invalid request body"})
	}

	p, err := h.draftSvc.Apply(c.UserContext(), c.Params("id"), edit)
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, p)
}

// DeleteDraft 结束会话
// DELETE /api/drafts/:id
func (h *DraftHandler) DeleteDraft(c *fiber.Ctx) error {
	if err := h.draftSvc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"Status": true, "Message": "Draft deleted"})
}

// ResetDraft 重置表单
// POST /api/drafts/:id/reset
func (h *DraftHandler) ResetDraft(c *fiber.Ctx) error {
	p, err := h.draftSvc.Reset(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, p)
}

// AddTarget 追加止盈目标
// POST /api/drafts/:id/targets
func (h *DraftHandler) AddTarget(c *fiber.Ctx) error {
	p, err := h.draftSvc.AddTarget(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, p)
}

// UpdateTarget 修改止盈目标
// PUT /api/drafts/:id/targets/:index
func (h *DraftHandler) UpdateTarget(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Error": "Invalid target index"})
	}
	var req TargetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Error": "Invalid request body"})
	}

	p, err := h.draftSvc.UpdateTarget(c.UserContext(), c.Params("id"), index, req.Magnitude)
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, p)
}

// RemoveTarget 删除止盈目标; 最后一个目标不会被删除
// DELETE /api/drafts/:id/targets/:index
func (h *DraftHandler) RemoveTarget(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Error": "Invalid target index"})
	}

	p, err := h.draftSvc.RemoveTarget(c.UserContext(), c.Params("id"), index)
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, p)
}

// AttachImage 附加或移除 (空字符串) 图片
// PUT /api/drafts/:id/image
func (h *DraftHandler) AttachImage(c *fiber.Ctx) error {
	var req ImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Error": "Invalid request body"})
	}

	p, err := h.draftSvc.AttachImage(c.UserContext(), c.Params("id"), req.Image)
	if err != nil {
		return handleError(c, err)
	}
	return sendData(c, fiber.StatusOK, p)
}
