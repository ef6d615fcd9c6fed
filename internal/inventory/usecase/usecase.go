package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/fekuna/omnipos-backoffice-service/pkg/search"
	"github.com/fekuna/omnipos-backoffice-service/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	IndexName = "inventory_items"

	maxNameLength     = 200
	maxCategoryLength = 100
	defaultPageSize   = 50
	lockTTL           = 5 * time.Second
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"business_id": { "type": "keyword" },
			"name": { "type": "text" },
			"category": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"created_at": { "type": "date" }
		}
	}
}`

// Options carries the optional collaborators; nil members disable their feature.
type Options struct {
	Cache         *cache.RedisClient
	Search        *search.Client
	Storage       storage.Uploader
	ImageBucket   string
	MaxImageBytes int64
}

type inventoryUseCase struct {
	repo   inventory.Repository
	opts   Options
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, opts Options, log logger.ZapLogger) inventory.UseCase {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 5 << 20
	}
	return &inventoryUseCase{
		repo:   repo,
		opts:   opts,
		logger: log,
	}
}

func (uc *inventoryUseCase) CreateItem(ctx context.Context, input *dto.ItemInput) (*dto.ItemView, error) {
	now := time.Now()
	item := &model.InventoryItem{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		BusinessID: input.BusinessID,
	}
	if err := applyInput(item, input); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.afterWrite(ctx, item)
	return uc.view(ctx, *item)
}

func (uc *inventoryUseCase) GetItem(ctx context.Context, businessID, id string) (*dto.ItemView, error) {
	item, err := uc.find(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, *item)
}

func (uc *inventoryUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*dto.ItemView, error) {
	var item *model.InventoryItem
	update := func() error {
		var err error
		item, err = uc.find(ctx, input.BusinessID, input.ID)
		if err != nil {
			return err
		}
		if err := applyInput(item, &input.ItemInput); err != nil {
			return err
		}
		item.UpdatedAt = time.Now()

		m, err := uc.repo.Update(ctx, item, actorOf(input.UserID))
		if err != nil {
			return err
		}
		if m != nil {
			uc.logger.Info("Inventory quantity edited",
				zap.String("business_id", item.BusinessID),
				zap.String("item_id", item.ID),
				zap.Float64("before", m.QuantityBefore),
				zap.Float64("after", m.QuantityAfter),
			)
		}
		return nil
	}
	if err := uc.withItemLock(ctx, input.BusinessID, input.ID, update); err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, item)
	return uc.view(ctx, *item)
}

func (uc *inventoryUseCase) DeleteItem(ctx context.Context, businessID, id string) error {
	item, err := uc.find(ctx, businessID, id)
	if err != nil {
		return err
	}
	uses, err := uc.repo.CountComponentUses(ctx, item.ID)
	if err != nil {
		return err
	}
	if uses > 0 {
		return apperror.Conflictf("%s is used by %d product(s) and cannot be deleted", item.Name, uses)
	}

	if err := uc.repo.Delete(ctx, businessID, id); err != nil {
		return err
	}

	dashboard.InvalidateAsync(uc.opts.Cache, uc.logger, businessID)
	if uc.opts.Search != nil {
		go func() {
			if err := uc.opts.Search.Delete(context.Background(), IndexName, id); err != nil {
				uc.logger.Error("failed to delete inventory item from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *inventoryUseCase) ListItems(ctx context.Context, filters *dto.InventoryFilters) (*dto.ListResult, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultPageSize
	}
	filters.Search = strings.TrimSpace(filters.Search)

	query := *filters
	if query.Search != "" {
		if ids, ok := uc.searchIDs(ctx, filters); ok {
			query.IDs = ids
		}
	}

	// Availability depends on product reservations, so status filtering happens after loading.
	if query.StockStatus != "" {
		query.Page, query.PageSize = 0, 0
	}

	items, total, err := uc.repo.FindAll(ctx, &query)
	if err != nil {
		return nil, err
	}
	reserved, err := uc.reserved(ctx, filters.BusinessID)
	if err != nil {
		return nil, err
	}

	views := make([]*dto.ItemView, 0, len(items))
	for _, item := range items {
		v := dto.NewItemView(item, reserved)
		if filters.StockStatus != "" && v.StockStatus() != filters.StockStatus {
			continue
		}
		views = append(views, v)
	}

	if filters.StockStatus != "" {
		total = len(views)
		start := (filters.Page - 1) * filters.PageSize
		if start > len(views) {
			start = len(views)
		}
		end := start + filters.PageSize
		if end > len(views) {
			end = len(views)
		}
		views = views[start:end]
	}

	return &dto.ListResult{Items: views, Total: total, Page: filters.Page, PageSize: filters.PageSize}, nil
}

// searchIDs asks Elasticsearch for matching item ids. ok is false when the
// caller should fall back to the database search.
func (uc *inventoryUseCase) searchIDs(ctx context.Context, filters *dto.InventoryFilters) ([]string, bool) {
	if uc.opts.Search == nil {
		return nil, false
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  fmt.Sprintf("*%s*", search.EscapeQuery(filters.Search)),
							"fields": []string{"name^3", "category"},
						},
					},
					{
						"term": map[string]interface{}{
							"business_id": filters.BusinessID,
						},
					},
				},
			},
		},
		"_source": false,
		"size":    1000,
	}

	res, err := uc.opts.Search.Search(ctx, IndexName, q)
	if err != nil {
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		return nil, false
	}
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, true
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, businessID string) ([]costing.StockLevel, error) {
	items, _, err := uc.repo.FindAll(ctx, &dto.InventoryFilters{BusinessID: businessID, SortBy: "name", SortOrder: "asc"})
	if err != nil {
		return nil, err
	}
	reserved, err := uc.reserved(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return costing.LowStock(items, reserved), nil
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustInput) (*dto.ItemView, error) {
	if input.Quantity <= 0 {
		return nil, apperror.Validation("Quantity must be greater than zero")
	}
	if input.Type != dto.AdjustAdd && input.Type != dto.AdjustRemove {
		return nil, apperror.Validation("Adjustment type must be add or remove")
	}

	var updated *model.InventoryItem
	adjust := func() error {
		item, err := uc.find(ctx, input.BusinessID, input.ItemID)
		if err != nil {
			return err
		}

		change := input.Quantity
		if input.Type == dto.AdjustRemove {
			reserved, err := uc.reserved(ctx, input.BusinessID)
			if err != nil {
				return err
			}
			available := costing.Available(item.Quantity, reserved[item.ID])
			if input.Quantity > available {
				return apperror.Validationf("Cannot remove %g. Only %g available", input.Quantity, available)
			}
			change = -input.Quantity
		}

		refType := model.ReferenceManual
		movement := &model.InventoryMovement{
			ID:              uuid.New().String(),
			BusinessID:      input.BusinessID,
			InventoryItemID: item.ID,
			MovementType:    model.MovementAdjustment,
			QuantityChange:  change,
			ReferenceType:   &refType,
			Notes:           strings.TrimSpace(input.Reason),
			CreatedBy:       actorOf(input.UserID),
			CreatedAt:       time.Now(),
		}

		updated, err = uc.repo.AdjustStockWithMovement(ctx, movement)
		return err
	}

	if err := uc.withItemLock(ctx, input.BusinessID, input.ItemID, adjust); err != nil {
		return nil, err
	}

	uc.logger.Info("Inventory adjusted",
		zap.String("business_id", input.BusinessID),
		zap.String("item_id", input.ItemID),
		zap.String("type", input.Type),
		zap.Float64("quantity", input.Quantity),
	)
	uc.afterWrite(ctx, updated)
	return uc.view(ctx, *updated)
}

func (uc *inventoryUseCase) UploadImage(ctx context.Context, input *dto.ImageInput) (*dto.ItemView, error) {
	if uc.opts.Storage == nil {
		return nil, apperror.Internal("Image storage is not configured", errors.New("no uploader"))
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, apperror.Validation("File must be an image")
	}
	if input.Size > uc.opts.MaxImageBytes {
		return nil, apperror.Validationf("Image must be at most %d MB", uc.opts.MaxImageBytes>>20)
	}

	item, err := uc.find(ctx, input.BusinessID, input.ItemID)
	if err != nil {
		return nil, err
	}

	name := uuid.New().String() + imageExt(input.Filename, input.ContentType)
	url, err := uc.opts.Storage.Put(ctx, uc.opts.ImageBucket, name, input.Body, input.Size, input.ContentType)
	if err != nil {
		return nil, apperror.Internal("Failed to upload image", err)
	}
	if err := uc.repo.UpdateImage(ctx, input.BusinessID, item.ID, url); err != nil {
		return nil, err
	}

	item.ImageURL = &url
	uc.afterWrite(ctx, item)
	return uc.view(ctx, *item)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) (*dto.MovementList, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultPageSize
	}
	movements, total, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, err
	}
	return &dto.MovementList{Movements: movements, Total: total}, nil
}

func (uc *inventoryUseCase) find(ctx context.Context, businessID, id string) (*model.InventoryItem, error) {
	item, err := uc.repo.FindByID(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFound("Inventory item not found")
	}
	return item, nil
}

func (uc *inventoryUseCase) reserved(ctx context.Context, businessID string) (map[string]float64, error) {
	usage, err := uc.repo.ComponentUsage(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return costing.Reserved(usage), nil
}

func (uc *inventoryUseCase) view(ctx context.Context, item model.InventoryItem) (*dto.ItemView, error) {
	reserved, err := uc.reserved(ctx, item.BusinessID)
	if err != nil {
		return nil, err
	}
	return dto.NewItemView(item, reserved), nil
}

// withItemLock serializes writes to one item across instances.
func (uc *inventoryUseCase) withItemLock(ctx context.Context, businessID, itemID string, fn func() error) error {
	if uc.opts.Cache == nil {
		return fn()
	}
	lockKey := fmt.Sprintf("lock:inventory:%s:%s", businessID, itemID)
	err := uc.opts.Cache.WithLock(ctx, lockKey, uuid.New().String(), lockTTL, fn)
	if errors.Is(err, cache.ErrLockNotAcquired) {
		return apperror.Conflict("This item is being updated, please try again")
	}
	return err
}

// afterWrite runs after every item change. Product lists carry component
// costs and stock, so they are dropped before the caller is answered.
func (uc *inventoryUseCase) afterWrite(ctx context.Context, item *model.InventoryItem) {
	if err := product.InvalidateLists(ctx, uc.opts.Cache, item.BusinessID); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("business_id", item.BusinessID), zap.Error(err))
	}
	dashboard.InvalidateAsync(uc.opts.Cache, uc.logger, item.BusinessID)
	if uc.opts.Search != nil {
		doc := *item
		go uc.syncToElastic(context.Background(), &doc)
	}
}

func (uc *inventoryUseCase) syncToElastic(ctx context.Context, item *model.InventoryItem) {
	_ = uc.opts.Search.CreateIndex(ctx, IndexName, indexMapping)

	doc := map[string]interface{}{
		"business_id": item.BusinessID,
		"name":        item.Name,
		"category":    item.Category,
		"created_at":  item.CreatedAt,
	}
	if err := uc.opts.Search.Index(ctx, IndexName, item.ID, doc); err != nil {
		uc.logger.Error("failed to index inventory item", zap.String("item_id", item.ID), zap.Error(err))
	}
}

// applyInput validates input and normalizes it onto item.
func applyInput(item *model.InventoryItem, input *dto.ItemInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperror.Validation("Name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperror.Validationf("Name must be at most %d characters", maxNameLength)
	}
	item.Name = name

	item.Category = nil
	if input.Category != nil {
		if c := strings.TrimSpace(*input.Category); c != "" {
			if utf8.RuneCountInString(c) > maxCategoryLength {
				return apperror.Validationf("Category must be at most %d characters", maxCategoryLength)
			}
			item.Category = &c
		}
	}
	if input.ImageURL != nil {
		if u := strings.TrimSpace(*input.ImageURL); u != "" {
			item.ImageURL = &u
		} else {
			item.ImageURL = nil
		}
	}

	item.Quantity = 0
	if input.Quantity != nil && *input.Quantity > 0 {
		item.Quantity = *input.Quantity
	}

	item.ReorderLevel = costing.DefaultReorderLevel
	if input.ReorderLevel != nil && *input.ReorderLevel >= 0 {
		item.ReorderLevel = *input.ReorderLevel
	}

	switch {
	case input.UnitCost != nil:
		if input.UnitCost.IsNegative() {
			return apperror.Validation("Unit cost cannot be negative")
		}
		item.UnitCost = *input.UnitCost
		if input.TotalCost != nil {
			if input.TotalCost.IsNegative() {
				return apperror.Validation("Total cost cannot be negative")
			}
			item.TotalCost = input.TotalCost.Round(2)
		} else {
			item.TotalCost = costing.ItemTotalCost(item.Quantity, item.UnitCost)
		}
	case input.TotalCost != nil:
		if input.TotalCost.IsNegative() {
			return apperror.Validation("Total cost cannot be negative")
		}
		item.TotalCost = input.TotalCost.Round(2)
		item.UnitCost = costing.UnitCostFromTotal(item.Quantity, item.TotalCost)
	default:
		item.UnitCost = decimal.Zero
		item.TotalCost = decimal.Zero
	}
	return nil
}

func actorOf(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

func imageExt(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
