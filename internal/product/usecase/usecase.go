package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/internal/ledger"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/internal/product/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/fekuna/omnipos-backoffice-service/pkg/search"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	IndexName = "products"

	maxNameLength   = 200
	maxQuantity     = 100000
	defaultPageSize = 50
	lockTTL         = 5 * time.Second
)

var maxProfitMargin = decimal.NewFromInt(1000)

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

// evaluation is a validated product input priced against current inventory.
type evaluation struct {
	name         string
	margin       decimal.Decimal
	components   []dto.ComponentDetail
	totalCost    decimal.Decimal
	requirements []costing.Requirement
	warnings     []string
	errors       []string
}

func (uc *productUseCase) QuoteProduct(ctx context.Context, input *dto.ProductInput) (*dto.Quote, error) {
	ev, err := uc.evaluate(ctx, input, input.ProductID)
	if err != nil {
		return nil, err
	}
	return &dto.Quote{
		TotalCost:    ev.totalCost,
		SalePrice:    costing.SalePrice(ev.totalCost, ev.margin),
		Requirements: ev.requirements,
		Warnings:     ev.warnings,
		Errors:       ev.errors,
	}, nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.ProductInput) (*dto.ProductView, error) {
	ev, err := uc.evaluate(ctx, input, "")
	if err != nil {
		return nil, err
	}
	if len(ev.errors) > 0 {
		return nil, apperror.Validation(ev.errors[0])
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		BusinessID:        input.BusinessID,
		Name:              ev.name,
		QuantityAvailable: input.QuantityAvailable,
		ProfitMargin:      ev.margin,
		SalePrice:         costing.SalePrice(ev.totalCost, ev.margin),
	}
	ev.bind(p, now)

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info("Product created",
		zap.String("business_id", p.BusinessID),
		zap.String("product_id", p.ID),
		zap.Int("components", len(p.Components)),
	)
	uc.afterWrite(p)
	return ev.view(p), nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, businessID, id string) (*dto.ProductView, error) {
	p, err := uc.find(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	views, err := uc.withComponents(ctx, businessID, []model.Product{*p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) (*dto.ListResult, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultPageSize
	}
	filters.Search = strings.TrimSpace(filters.Search)

	cacheKey := uc.generateCacheKey(filters)
	if uc.cache != nil && cacheKey != "" {
		var cached dto.ListResult
		hit, err := uc.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			uc.logger.Warn("product list cache read failed", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	query := *filters
	if query.Search != "" {
		if ids, ok := uc.searchIDs(ctx, filters); ok {
			query.IDs = ids
		}
	}

	products, total, err := uc.repo.FindAll(ctx, &query)
	if err != nil {
		return nil, err
	}
	views, err := uc.withComponents(ctx, filters.BusinessID, products)
	if err != nil {
		return nil, err
	}

	res := &dto.ListResult{Products: views, Total: total, Page: filters.Page, PageSize: filters.PageSize}
	if uc.cache != nil && cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, res, product.ListCacheTTL); err != nil {
			uc.logger.Warn("product list cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*dto.ProductView, error) {
	p, err := uc.find(ctx, input.BusinessID, input.ID)
	if err != nil {
		return nil, err
	}

	var ev *evaluation
	update := func() error {
		var err error
		ev, err = uc.evaluate(ctx, &input.ProductInput, p.ID)
		if err != nil {
			return err
		}
		if len(ev.errors) > 0 {
			return apperror.Validation(ev.errors[0])
		}

		now := time.Now()
		p.Name = ev.name
		p.QuantityAvailable = input.QuantityAvailable
		p.ProfitMargin = ev.margin
		p.SalePrice = costing.SalePrice(ev.totalCost, ev.margin)
		p.UpdatedAt = now
		ev.bind(p, now)
		return uc.repo.Update(ctx, p)
	}

	if uc.cache != nil {
		err = uc.cache.WithLock(ctx, ledger.ProductLockKey(p.BusinessID, p.ID), uuid.New().String(), lockTTL, update)
		if errors.Is(err, cache.ErrLockNotAcquired) {
			return nil, apperror.Conflict("This product is being updated, please try again")
		}
	} else {
		err = update()
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Product updated",
		zap.String("business_id", p.BusinessID),
		zap.String("product_id", p.ID),
	)
	uc.afterWrite(p)
	return ev.view(p), nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, businessID, id string) error {
	p, err := uc.find(ctx, businessID, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, businessID, p.ID); err != nil {
		return err
	}

	uc.logger.Info("Product deleted", zap.String("business_id", businessID), zap.String("product_id", id))
	go uc.invalidateProductCache(context.Background(), businessID)
	dashboard.InvalidateAsync(uc.cache, uc.logger, businessID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), IndexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

// evaluate validates input and prices it. Stock shortages are collected in
// errors (requirement above what is on hand) and warnings (requirement above
// what other products leave available) rather than returned.
func (uc *productUseCase) evaluate(ctx context.Context, input *dto.ProductInput, productID string) (*evaluation, error) {
	ev := &evaluation{
		name:         strings.TrimSpace(input.Name),
		margin:       costing.DefaultProfitMargin,
		components:   []dto.ComponentDetail{},
		requirements: []costing.Requirement{},
		warnings:     []string{},
		errors:       []string{},
	}
	if ev.name == "" {
		return nil, apperror.Validation("Product name is required")
	}
	if utf8.RuneCountInString(ev.name) > maxNameLength {
		return nil, apperror.Validationf("Product name must be less than %d characters", maxNameLength)
	}
	if input.QuantityAvailable < 0 || input.QuantityAvailable > maxQuantity {
		return nil, apperror.Validationf("Quantity must be between 0 and %d", maxQuantity)
	}
	if input.ProfitMargin != nil {
		if input.ProfitMargin.IsNegative() || input.ProfitMargin.GreaterThan(maxProfitMargin) {
			return nil, apperror.Validation("Profit margin must be between 0 and 1000%")
		}
		ev.margin = *input.ProfitMargin
	}

	ids := make([]string, 0, len(input.Components))
	seen := make(map[string]bool, len(input.Components))
	for _, c := range input.Components {
		if c.InventoryItemID == "" {
			return nil, apperror.Validation("Every component needs an inventory item")
		}
		if seen[c.InventoryItemID] {
			return nil, apperror.Validation("Each inventory item can only be used once per product")
		}
		if c.Quantity <= 0 {
			return nil, apperror.Validation("Component quantity must be greater than zero")
		}
		seen[c.InventoryItemID] = true
		ids = append(ids, c.InventoryItemID)
	}

	items, err := uc.repo.FindItems(ctx, input.BusinessID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.InventoryItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	usage, err := uc.repo.ComponentUsage(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	reserved := costing.ReservedExcluding(usage, productID)

	lines := make([]costing.CostLine, 0, len(input.Components))
	for _, c := range input.Components {
		item, ok := byID[c.InventoryItemID]
		if !ok {
			return nil, apperror.Validation("Inventory item not found")
		}

		lines = append(lines, costing.CostLine{UnitCost: item.UnitCost, Quantity: c.Quantity})
		ev.components = append(ev.components, dto.ComponentDetail{
			ProductComponent: model.ProductComponent{
				BusinessID:      input.BusinessID,
				InventoryItemID: item.ID,
				Quantity:        c.Quantity,
			},
			ItemName: item.Name,
			UnitCost: item.UnitCost,
		})

		req := costing.Requirement{
			InventoryItemID: item.ID,
			Name:            item.Name,
			Required:        c.Quantity * float64(input.QuantityAvailable),
			OnHand:          item.Quantity,
			Available:       costing.Available(item.Quantity, reserved[item.ID]),
		}
		ev.requirements = append(ev.requirements, req)
		switch {
		case req.Exceeds():
			ev.errors = append(ev.errors, fmt.Sprintf("Not enough inventory for %s. Available: %g, Required: %g",
				req.Name, req.OnHand, req.Required))
		case req.Short():
			ev.warnings = append(ev.warnings, fmt.Sprintf("%s: need %g but only %g available after other products",
				req.Name, req.Required, req.Available))
		}
	}
	ev.totalCost = costing.TotalCost(lines)
	return ev, nil
}

// bind stamps the evaluated components onto p.
func (ev *evaluation) bind(p *model.Product, now time.Time) {
	p.Components = make([]model.ProductComponent, len(ev.components))
	for i := range ev.components {
		c := &ev.components[i]
		c.ID = uuid.New().String()
		c.ProductID = p.ID
		c.CreatedAt = now
		p.Components[i] = c.ProductComponent
	}
}

func (ev *evaluation) view(p *model.Product) *dto.ProductView {
	return &dto.ProductView{
		Product:    *p,
		Components: ev.components,
		TotalCost:  ev.totalCost,
		Warnings:   ev.warnings,
	}
}

func (uc *productUseCase) find(ctx context.Context, businessID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("Product not found")
	}
	return p, nil
}

// withComponents attaches components and the current cost to each product.
func (uc *productUseCase) withComponents(ctx context.Context, businessID string, products []model.Product) ([]*dto.ProductView, error) {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	comps, err := uc.repo.FindComponents(ctx, businessID, ids)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string][]dto.ComponentDetail)
	for _, c := range comps {
		byProduct[c.ProductID] = append(byProduct[c.ProductID], c)
	}

	views := make([]*dto.ProductView, 0, len(products))
	for _, p := range products {
		pc := byProduct[p.ID]
		if pc == nil {
			pc = []dto.ComponentDetail{}
		}
		lines := make([]costing.CostLine, len(pc))
		for i, c := range pc {
			lines[i] = costing.CostLine{UnitCost: c.UnitCost, Quantity: c.Quantity}
		}
		views = append(views, &dto.ProductView{
			Product:    p,
			Components: pc,
			TotalCost:  costing.TotalCost(lines),
		})
	}
	return views, nil
}

func (uc *productUseCase) searchIDs(ctx context.Context, filters *dto.ProductFilters) ([]string, bool) {
	if uc.es == nil {
		return nil, false
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  fmt.Sprintf("*%s*", search.EscapeQuery(filters.Search)),
							"fields": []string{"name"},
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

	res, err := uc.es.Search(ctx, IndexName, q)
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

func (uc *productUseCase) afterWrite(p *model.Product) {
	go uc.invalidateProductCache(context.Background(), p.BusinessID)
	dashboard.InvalidateAsync(uc.cache, uc.logger, p.BusinessID)
	if uc.es != nil {
		doc := *p
		go uc.syncToElastic(context.Background(), &doc)
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	mapping := `{
		"mappings": {
			"properties": {
				"business_id": { "type": "keyword" },
				"name": { "type": "text" },
				"sale_price": { "type": "double" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, IndexName, mapping)

	doc := map[string]interface{}{
		"business_id": p.BusinessID,
		"name":        p.Name,
		"sale_price":  p.SalePrice.InexactFloat64(),
		"created_at":  p.CreatedAt,
	}
	if err := uc.es.Index(ctx, IndexName, p.ID, doc); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) string {
	data, err := json.Marshal(filters)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%x", product.ListCachePrefix(filters.BusinessID), md5.Sum(data))
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, businessID string) {
	if err := product.InvalidateLists(ctx, uc.cache, businessID); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("business_id", businessID), zap.Error(err))
	}
}
