package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"signaldesk.com/internal/calculator"
	"signaldesk.com/internal/catalog"
	"signaldesk.com/internal/constants"
	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/event"
	"signaldesk.com/internal/model"
	"signaldesk.com/internal/preview"
)

const imagePrefix = "data:image/"

// DraftServiceImpl 实现 domain.DraftService 接口
type DraftServiceImpl struct {
	store domain.DraftStore
	bus   *event.Bus
	log   zerolog.Logger

	// 同一进程内串行化 load-modify-save
	mu sync.Mutex
}

// NewDraftService 创建草稿服务, bus 可为 nil (不推送)
func NewDraftService(store domain.DraftStore, bus *event.Bus, log zerolog.Logger) *DraftServiceImpl {
	return &DraftServiceImpl{
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "draft_service").Logger(),
	}
}

// PreviewDraft derives and renders a draft without touching any store.
// The returned draft carries the recomputed target percentages.
func PreviewDraft(d model.Draft) model.Preview {
	d = d.Clone()
	resolveContract(&d)
	derived := calculator.Apply(&d)
	return model.Preview{
		Draft:   d,
		Derived: derived,
		Card:    preview.Render(d, derived),
	}
}

// Create 创建新草稿
func (s *DraftServiceImpl) Create(ctx context.Context) (*model.Preview, error) {
	d := model.NewDraft(uuid.NewString())
	p, err := s.save(ctx, &d, constants.EventDraftCreated)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("draft_id", d.ID).Msg("Draft created")
	return p, nil
}

// Get 获取草稿预览
func (s *DraftServiceImpl) Get(ctx context.Context, draftID string) (*model.Preview, error) {
	d, err := s.store.Load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	p := PreviewDraft(*d)
	return &p, nil
}

// Apply 应用字段修改; 任一字段不合法则整个修改被拒绝
func (s *DraftServiceImpl) Apply(ctx context.Context, draftID string, edit model.DraftEdit) (*model.Preview, error) {
	if err := ValidateEdit(edit); err != nil {
		return nil, err
	}
	return s.mutate(ctx, draftID, constants.EventDraftUpdated, func(d *model.Draft) error {
		applyEdit(d, edit)
		return nil
	})
}

// AddTarget 追加一个空止盈目标
func (s *DraftServiceImpl) AddTarget(ctx context.Context, draftID string) (*model.Preview, error) {
	return s.mutate(ctx, draftID, constants.EventDraftUpdated, func(d *model.Draft) error {
		d.AddTarget()
		return nil
	})
}

// RemoveTarget 删除止盈目标; 仅剩一个或下标越界时不做修改
func (s *DraftServiceImpl) RemoveTarget(ctx context.Context, draftID string, index int) (*model.Preview, error) {
	return s.mutate(ctx, draftID, constants.EventDraftUpdated, func(d *model.Draft) error {
		if !d.RemoveTarget(index) {
			s.log.Debug().Str("draft_id", draftID).Int("index", index).Msg("Target removal ignored")
		}
		return nil
	})
}

// UpdateTarget 修改止盈目标数值
func (s *DraftServiceImpl) UpdateTarget(ctx context.Context, draftID string, index int, magnitude float64) (*model.Preview, error) {
	if !finite(magnitude) {
		return nil, domain.NewBadRequestError("target magnitude must be a finite number")
	}
	return s.mutate(ctx, draftID, constants.EventDraftUpdated, func(d *model.Draft) error {
		if !d.SetTarget(index, magnitude) {
			return domain.NewBadRequestError(fmt.Sprintf("target index %d out of range", index))
		}
		return nil
	})
}

// AttachImage 附加图片; 空字符串表示移除
func (s *DraftServiceImpl) AttachImage(ctx context.Context, draftID string, dataURI string) (*model.Preview, error) {
	if dataURI != "" && !strings.HasPrefix(dataURI, imagePrefix) {
		return nil, domain.NewBadRequestError("image must be a data:image/ URI")
	}
	return s.mutate(ctx, draftID, constants.EventDraftUpdated, func(d *model.Draft) error {
		d.Image = dataURI
		return nil
	})
}

// Reset 恢复默认值, 保留草稿 ID 与创建时间
func (s *DraftServiceImpl) Reset(ctx context.Context, draftID string) (*model.Preview, error) {
	return s.mutate(ctx, draftID, constants.EventDraftReset, func(d *model.Draft) error {
		fresh := model.NewDraft(d.ID)
		fresh.CreatedAt = d.CreatedAt
		*d = fresh
		return nil
	})
}

// Delete 结束会话
func (s *DraftServiceImpl) Delete(ctx context.Context, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Load(ctx, draftID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, draftID); err != nil {
		return domain.NewInternalError("failed to delete draft", err)
	}
	s.publish(constants.EventDraftDeleted, draftID, nil)
	s.log.Info().Str("draft_id", draftID).Msg("Draft deleted")
	return nil
}

func (s *DraftServiceImpl) mutate(ctx context.Context, draftID, eventType string, fn func(d *model.Draft) error) (*model.Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.store.Load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now()
	return s.save(ctx, d, eventType)
}

func (s *DraftServiceImpl) save(ctx context.Context, d *model.Draft, eventType string) (*model.Preview, error) {
	p := PreviewDraft(*d)
	if err := s.store.Save(ctx, &p.Draft); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, domain.NewInternalError("failed to save draft", err)
	}
	s.publish(eventType, d.ID, &p)
	return &p, nil
}

func (s *DraftServiceImpl) publish(eventType, draftID string, data interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Type:   eventType,
		Key:    draftID,
		Source: "draft_service",
		Data:   data,
	})
}

// ValidateEdit rejects unknown enum values, quantities below one and
// non-finite numbers. Symbols are never rejected.
func ValidateEdit(edit model.DraftEdit) error {
	if edit.InputMode != nil && !edit.InputMode.Valid() {
		return domain.NewBadRequestError(fmt.Sprintf("unknown input mode %q", *edit.InputMode))
	}
	if edit.Direction != nil && !edit.Direction.Valid() {
		return domain.NewBadRequestError(fmt.Sprintf("unknown direction %q", *edit.Direction))
	}
	if edit.OrderKind != nil && !edit.OrderKind.Valid() {
		return domain.NewBadRequestError(fmt.Sprintf("unknown order type %q", *edit.OrderKind))
	}
	if edit.ContractQuantity != nil && *edit.ContractQuantity < 1 {
		return domain.NewBadRequestError("contract quantity must be at least 1")
	}
	for name, v := range map[string]*float64{
		"entry price":   edit.EntryPrice,
		"current price": edit.CurrentPrice,
		"stop loss":     edit.StopLoss,
	} {
		if v != nil && !finite(*v) {
			return domain.NewBadRequestError(name + " must be a finite number")
		}
	}
	return nil
}

func applyEdit(d *model.Draft, edit model.DraftEdit) {
	if edit.Symbol != nil {
		d.Symbol = catalog.Normalize(*edit.Symbol)
		d.Contract = nil
		d.AssetName = ""
	}
	if edit.InputMode != nil {
		d.InputMode = *edit.InputMode
	}
	if edit.Direction != nil {
		d.Direction = *edit.Direction
	}
	if edit.EntryPrice != nil {
		d.EntryPrice = *edit.EntryPrice
	}
	if edit.CurrentPrice != nil {
		d.CurrentPrice = *edit.CurrentPrice
	}
	if edit.StopLoss != nil {
		d.StopLoss = *edit.StopLoss
	}
	if edit.ContractQuantity != nil {
		d.ContractQuantity = *edit.ContractQuantity
	}
	if edit.OrderKind != nil {
		d.OrderKind = *edit.OrderKind
	}
	if edit.Description != nil {
		d.Description = *edit.Description
	}
}

// resolveContract attaches the catalog entry for d.Symbol. Unknown symbols
// leave the contract unresolved and clear the asset name.
func resolveContract(d *model.Draft) {
	d.Symbol = catalog.Normalize(d.Symbol)
	c, ok := catalog.Lookup(d.Symbol)
	if !ok {
		d.Contract = nil
		d.AssetName = ""
		return
	}
	d.Contract = &c
	d.AssetName = c.Name
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateDraft applies the edit rules to a whole draft, as submitted to
// the stateless preview.
func ValidateDraft(d model.Draft) error {
	if err := ValidateEdit(model.DraftEdit{
		InputMode:        &d.InputMode,
		Direction:        &d.Direction,
		EntryPrice:       &d.EntryPrice,
		CurrentPrice:     &d.CurrentPrice,
		StopLoss:         &d.StopLoss,
		ContractQuantity: &d.ContractQuantity,
		OrderKind:        &d.OrderKind,
	}); err != nil {
		return err
	}
	for i, t := range d.Targets {
		if !finite(t.Magnitude) {
			return domain.NewBadRequestError(fmt.Sprintf("target %d must be a finite number", i))
		}
	}
	if d.Image != "" && !strings.HasPrefix(d.Image, imagePrefix) {
		return domain.NewBadRequestError("image must be a data:image/ URI")
	}
	return nil
}
