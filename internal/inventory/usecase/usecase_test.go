package usecase

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	items     map[string]*model.InventoryItem
	usage     []costing.Reservation
	movements []model.InventoryMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]*model.InventoryItem{}}
}

func (f *fakeRepo) add(id, name string, qty float64, unitCost string, reorder float64) {
	f.items[id] = &model.InventoryItem{
		BaseModel:    model.BaseModel{ID: id},
		BusinessID:   "b1",
		Name:         name,
		Quantity:     qty,
		UnitCost:     decimal.RequireFromString(unitCost),
		ReorderLevel: reorder,
	}
}

func (f *fakeRepo) Create(_ context.Context, item *model.InventoryItem) error {
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, businessID, id string) (*model.InventoryItem, error) {
	if it, ok := f.items[id]; ok && it.BusinessID == businessID {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindAll(_ context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, int, error) {
	var out []model.InventoryItem
	for _, it := range f.items {
		if it.BusinessID == filters.BusinessID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, item *model.InventoryItem, actor *string) (*model.InventoryMovement, error) {
	var m *model.InventoryMovement
	if before := f.items[item.ID].Quantity; before != item.Quantity {
		m = &model.InventoryMovement{
			InventoryItemID: item.ID,
			MovementType:    model.MovementAdjustment,
			QuantityChange:  item.Quantity - before,
			QuantityBefore:  before,
			QuantityAfter:   item.Quantity,
			CreatedBy:       actor,
		}
		f.movements = append(f.movements, *m)
	}
	cp := *item
	f.items[item.ID] = &cp
	return m, nil
}

func (f *fakeRepo) UpdateImage(_ context.Context, _, id, url string) error {
	f.items[id].ImageURL = &url
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _, id string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) CountComponentUses(_ context.Context, id string) (int, error) {
	n := 0
	for _, r := range f.usage {
		if r.InventoryItemID == id {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ComponentUsage(context.Context, string) ([]costing.Reservation, error) {
	return f.usage, nil
}

func (f *fakeRepo) AdjustStockWithMovement(_ context.Context, m *model.InventoryMovement) (*model.InventoryItem, error) {
	it := f.items[m.InventoryItemID]
	m.QuantityBefore = it.Quantity
	m.QuantityAfter = it.Quantity + m.QuantityChange
	it.Quantity = m.QuantityAfter
	it.TotalCost = costing.ItemTotalCost(it.Quantity, it.UnitCost)
	f.movements = append(f.movements, *m)
	cp := *it
	return &cp, nil
}

func (f *fakeRepo) ListMovements(context.Context, *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return f.movements, len(f.movements), nil
}

type fakeUploader struct {
	bucket, name string
	body         []byte
}

func (u *fakeUploader) Remove(context.Context, string, string) error {
	u.name, u.body = "", nil
	return nil
}

func (u *fakeUploader) Put(_ context.Context, bucket, name string, r io.Reader, _ int64, _ string) (string, error) {
	u.bucket, u.name = bucket, name
	u.body, _ = io.ReadAll(r)
	return "http://cdn/" + bucket + "/" + name, nil
}

func newRedis(t *testing.T) *cache.RedisClient {
	t.Helper()
	mr := miniredis.RunT(t)
	return &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func f64(v float64) *float64 { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateItemDefaults(t *testing.T) {
	uc := NewInventoryUseCase(newFakeRepo(), Options{}, logger.NewNop())
	ctx := context.Background()

	tests := []struct {
		name         string
		input        dto.ItemInput
		wantQty      float64
		wantUnit     string
		wantTotal    string
		wantReorder  float64
		wantCategory *string
	}{
		{
			name:        "missing numbers",
			input:       dto.ItemInput{Name: " Flour "},
			wantUnit:    "0",
			wantTotal:   "0",
			wantReorder: 10,
		},
		{
			name:        "negative quantity and reorder",
			input:       dto.ItemInput{Name: "Sugar", Quantity: f64(-4), ReorderLevel: f64(-1), UnitCost: dec("2")},
			wantUnit:    "2",
			wantTotal:   "0",
			wantReorder: 10,
		},
		{
			name:        "total derived from unit cost",
			input:       dto.ItemInput{Name: "Eggs", Quantity: f64(12), UnitCost: dec("0.35"), ReorderLevel: f64(0)},
			wantQty:     12,
			wantUnit:    "0.35",
			wantTotal:   "4.2",
			wantReorder: 0,
		},
		{
			name:        "unit cost derived from total",
			input:       dto.ItemInput{Name: "Butter", Quantity: f64(4), TotalCost: dec("10")},
			wantQty:     4,
			wantUnit:    "2.5",
			wantTotal:   "10",
			wantReorder: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.BusinessID = "b1"
			v, err := uc.CreateItem(ctx, &in)
			if err != nil {
				t.Fatalf("CreateItem: %v", err)
			}
			if v.Quantity != tt.wantQty || v.ReorderLevel != tt.wantReorder {
				t.Errorf("quantity=%g reorder=%g", v.Quantity, v.ReorderLevel)
			}
			if !v.UnitCost.Equal(decimal.RequireFromString(tt.wantUnit)) || !v.TotalCost.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("unit=%s total=%s", v.UnitCost, v.TotalCost)
			}
		})
	}

	blank := "   "
	v, err := uc.CreateItem(ctx, &dto.ItemInput{BusinessID: "b1", Name: "Salt", Category: &blank})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if v.Category != nil {
		t.Errorf("blank category stored as %q", *v.Category)
	}

	if _, err := uc.CreateItem(ctx, &dto.ItemInput{BusinessID: "b1", Name: "  "}); !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("blank name err = %v", err)
	}
}

func TestAdjustStock(t *testing.T) {
	repo := newFakeRepo()
	repo.add("flour", "Flour", 100, "0.5", 10)
	// 2 units of flour per cake, 30 cakes available: 60 reserved.
	repo.usage = []costing.Reservation{{InventoryItemID: "flour", ProductID: "cake", ComponentQuantity: 2, ProductQuantity: 30}}

	uc := NewInventoryUseCase(repo, Options{Cache: newRedis(t)}, logger.NewNop())
	ctx := context.Background()

	_, err := uc.AdjustStock(ctx, &dto.AdjustInput{BusinessID: "b1", ItemID: "flour", Type: dto.AdjustRemove, Quantity: 41})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("remove beyond available err = %v", err)
	}

	v, err := uc.AdjustStock(ctx, &dto.AdjustInput{BusinessID: "b1", ItemID: "flour", UserID: "u1", Type: dto.AdjustRemove, Quantity: 40, Reason: "spoiled"})
	if err != nil {
		t.Fatalf("AdjustStock remove: %v", err)
	}
	if v.Quantity != 60 || v.Available != 0 || !v.IsOut {
		t.Errorf("after remove: %+v", v)
	}
	if !v.TotalCost.Equal(decimal.NewFromInt(30)) {
		t.Errorf("total cost = %s", v.TotalCost)
	}

	v, err = uc.AdjustStock(ctx, &dto.AdjustInput{BusinessID: "b1", ItemID: "flour", Type: dto.AdjustAdd, Quantity: 5})
	if err != nil {
		t.Fatalf("AdjustStock add: %v", err)
	}
	if v.Available != 5 || !v.IsLow || v.IsOut {
		t.Errorf("after add: %+v", v)
	}

	if len(repo.movements) != 2 {
		t.Fatalf("movements = %d", len(repo.movements))
	}
	m := repo.movements[0]
	if m.QuantityChange != -40 || m.QuantityBefore != 100 || m.QuantityAfter != 60 || m.Notes != "spoiled" || m.MovementType != model.MovementAdjustment {
		t.Errorf("movement = %+v", m)
	}

	tests := []struct {
		name  string
		input dto.AdjustInput
		kind  apperror.Kind
	}{
		{"zero quantity", dto.AdjustInput{BusinessID: "b1", ItemID: "flour", Type: dto.AdjustAdd}, apperror.KindValidation},
		{"bad type", dto.AdjustInput{BusinessID: "b1", ItemID: "flour", Type: "set", Quantity: 1}, apperror.KindValidation},
		{"unknown item", dto.AdjustInput{BusinessID: "b1", ItemID: "nope", Type: dto.AdjustAdd, Quantity: 1}, apperror.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.AdjustStock(ctx, &tt.input); !apperror.Is(err, tt.kind) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestUpdateItemRecordsQuantityChange(t *testing.T) {
	repo := newFakeRepo()
	repo.add("flour", "Flour", 100, "0.5", 10)
	rc := newRedis(t)
	ctx := context.Background()
	listKey := product.ListCachePrefix("b1") + "page1"
	if err := rc.Client.Set(ctx, listKey, "{}", 0).Err(); err != nil {
		t.Fatal(err)
	}
	uc := NewInventoryUseCase(repo, Options{Cache: rc}, logger.NewNop())

	v, err := uc.UpdateItem(ctx, &dto.UpdateItemInput{
		ItemInput: dto.ItemInput{BusinessID: "b1", Name: "Flour", Quantity: f64(80), UnitCost: dec("0.5")},
		ID:        "flour",
		UserID:    "u1",
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if v.Quantity != 80 || !v.TotalCost.Equal(decimal.NewFromInt(40)) {
		t.Errorf("item = %+v", v)
	}
	if len(repo.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(repo.movements))
	}
	m := repo.movements[0]
	if m.QuantityChange != -20 || m.QuantityBefore != 100 || m.QuantityAfter != 80 ||
		m.MovementType != model.MovementAdjustment || m.CreatedBy == nil || *m.CreatedBy != "u1" {
		t.Errorf("movement = %+v", m)
	}
	if n, _ := rc.Client.Exists(ctx, listKey).Result(); n != 0 {
		t.Error("product lists should be dropped after an item edit")
	}

	// A rename keeps the quantity and records nothing.
	if _, err := uc.UpdateItem(ctx, &dto.UpdateItemInput{
		ItemInput: dto.ItemInput{BusinessID: "b1", Name: "Bread flour", Quantity: f64(80), UnitCost: dec("0.5")},
		ID:        "flour",
	}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(repo.movements) != 1 {
		t.Errorf("rename recorded a movement: %+v", repo.movements)
	}

	if err := rc.Client.Set(ctx, "lock:inventory:b1:flour", "someone", 0).Err(); err != nil {
		t.Fatal(err)
	}
	_, err = uc.UpdateItem(ctx, &dto.UpdateItemInput{
		ItemInput: dto.ItemInput{BusinessID: "b1", Name: "Flour", Quantity: f64(1)},
		ID:        "flour",
	})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("locked item err = %v", err)
	}
	if repo.items["flour"].Quantity != 80 {
		t.Error("stock changed while locked")
	}
}

func TestItemNameCountsCharacters(t *testing.T) {
	uc := NewInventoryUseCase(newFakeRepo(), Options{}, logger.NewNop())
	ctx := context.Background()

	name := strings.Repeat("ñ", maxNameLength)
	if _, err := uc.CreateItem(ctx, &dto.ItemInput{BusinessID: "b1", Name: name}); err != nil {
		t.Fatalf("%d-character name rejected: %v", maxNameLength, err)
	}
	if _, err := uc.CreateItem(ctx, &dto.ItemInput{BusinessID: "b1", Name: name + "ñ"}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("over-long name err = %v", err)
	}
}

func TestAdjustStockLocked(t *testing.T) {
	repo := newFakeRepo()
	repo.add("flour", "Flour", 10, "1", 0)
	rc := newRedis(t)
	if err := rc.Client.Set(context.Background(), "lock:inventory:b1:flour", "someone", 0).Err(); err != nil {
		t.Fatal(err)
	}

	uc := NewInventoryUseCase(repo, Options{Cache: rc}, logger.NewNop())
	_, err := uc.AdjustStock(context.Background(), &dto.AdjustInput{BusinessID: "b1", ItemID: "flour", Type: dto.AdjustAdd, Quantity: 1})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("err = %v", err)
	}
	if repo.items["flour"].Quantity != 10 {
		t.Error("stock changed while locked")
	}
}

func TestListItemsStockStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.add("a", "Apples", 50, "1", 10)
	repo.add("b", "Bananas", 5, "1", 10)
	repo.add("c", "Cherries", 8, "1", 10)
	repo.usage = []costing.Reservation{{InventoryItemID: "c", ProductID: "pie", ComponentQuantity: 4, ProductQuantity: 2}}
	uc := NewInventoryUseCase(repo, Options{}, logger.NewNop())
	ctx := context.Background()

	tests := []struct {
		status string
		want   []string
	}{
		{dto.StockIn, []string{"Apples"}},
		{dto.StockLow, []string{"Bananas"}},
		{dto.StockOut, []string{"Cherries"}},
		{"", []string{"Apples", "Bananas", "Cherries"}},
	}
	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			res, err := uc.ListItems(ctx, &dto.InventoryFilters{BusinessID: "b1", StockStatus: tt.status})
			if err != nil {
				t.Fatalf("ListItems: %v", err)
			}
			if res.Total != len(tt.want) || len(res.Items) != len(tt.want) {
				t.Fatalf("total=%d items=%d", res.Total, len(res.Items))
			}
			for i, v := range res.Items {
				if v.Name != tt.want[i] {
					t.Errorf("item %d = %s, want %s", i, v.Name, tt.want[i])
				}
			}
		})
	}

	low, err := uc.ListLowStock(ctx, "b1")
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if len(low) != 2 {
		t.Errorf("low stock = %+v", low)
	}
}

func TestDeleteItemInUse(t *testing.T) {
	repo := newFakeRepo()
	repo.add("flour", "Flour", 1, "1", 0)
	repo.add("salt", "Salt", 1, "1", 0)
	repo.usage = []costing.Reservation{{InventoryItemID: "flour", ProductID: "bread", ComponentQuantity: 1, ProductQuantity: 0}}
	uc := NewInventoryUseCase(repo, Options{}, logger.NewNop())
	ctx := context.Background()

	if err := uc.DeleteItem(ctx, "b1", "flour"); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("delete in use err = %v", err)
	}
	if err := uc.DeleteItem(ctx, "b1", "salt"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, ok := repo.items["salt"]; ok {
		t.Error("salt still present")
	}
}

func TestUploadImage(t *testing.T) {
	repo := newFakeRepo()
	repo.add("flour", "Flour", 1, "1", 0)
	up := &fakeUploader{}
	uc := NewInventoryUseCase(repo, Options{Storage: up, ImageBucket: "inventory-images", MaxImageBytes: 16}, logger.NewNop())
	ctx := context.Background()

	body := []byte("fake-png")
	v, err := uc.UploadImage(ctx, &dto.ImageInput{
		BusinessID: "b1", ItemID: "flour", Filename: "Photo.PNG", ContentType: "image/png",
		Size: int64(len(body)), Body: bytes.NewReader(body),
	})
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if up.bucket != "inventory-images" || len(up.name) != 36+4 || up.name[36:] != ".png" {
		t.Errorf("stored as %s/%s", up.bucket, up.name)
	}
	if v.ImageURL == nil || *v.ImageURL != "http://cdn/inventory-images/"+up.name {
		t.Errorf("image url = %v", v.ImageURL)
	}

	tests := []struct {
		name  string
		input dto.ImageInput
	}{
		{"not an image", dto.ImageInput{BusinessID: "b1", ItemID: "flour", ContentType: "application/pdf", Size: 1, Body: bytes.NewReader(nil)}},
		{"too large", dto.ImageInput{BusinessID: "b1", ItemID: "flour", ContentType: "image/jpeg", Size: 17, Body: bytes.NewReader(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.UploadImage(ctx, &tt.input); !apperror.Is(err, apperror.KindValidation) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}
