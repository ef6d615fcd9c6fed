package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/ledger"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `
        INSERT INTO inventory_items (
            id, business_id, name, category, image_url,
            quantity, unit_cost, total_cost, reorder_level, created_at, updated_at
        )
        VALUES (
            :id, :business_id, :name, :category, :image_url,
            :quantity, :unit_cost, :total_cost, :reorder_level, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, businessID, id string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.DB.GetContext(ctx, &item,
		`SELECT * FROM inventory_items WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryItem, int, error) {
	var items []model.InventoryItem
	var count int

	conditions := []string{"business_id = :business_id"}
	args := map[string]interface{}{"business_id": f.BusinessID}

	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []model.InventoryItem{}, 0, nil
		}
		placeholders := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			key := fmt.Sprintf("id%d", i)
			placeholders[i] = ":" + key
			args[key] = id
		}
		conditions = append(conditions, "id IN ("+strings.Join(placeholders, ", ")+")")
	} else if f.Search != "" {
		conditions = append(conditions, "(name ILIKE :search OR category ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM inventory_items" + whereClause
	cstmt, err := r.DB.PrepareNamedContext(ctx, countQuery)
	if err != nil {
		return nil, 0, err
	}
	defer cstmt.Close()
	if err := cstmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	orderBy := "created_at"
	switch f.SortBy {
	case "name":
		orderBy = "LOWER(name)"
	case "quantity":
		orderBy = "quantity"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		orderBy += " ASC"
	} else {
		orderBy += " DESC"
	}

	query := fmt.Sprintf("SELECT * FROM inventory_items%s ORDER BY %s, id", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

// Update saves item against its locked row. A changed quantity is appended to
// the stock ledger as a manual adjustment from the locked quantity.
func (r *PGRepository) Update(ctx context.Context, item *model.InventoryItem, actor *string) (*model.InventoryMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current model.InventoryItem
	err = tx.GetContext(ctx, &current,
		`SELECT * FROM inventory_items WHERE id = $1 AND business_id = $2 FOR UPDATE`,
		item.ID, item.BusinessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Inventory item not found")
		}
		return nil, fmt.Errorf("failed to lock inventory item: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
        UPDATE inventory_items
        SET name = :name,
            category = :category,
            image_url = :image_url,
            quantity = :quantity,
            unit_cost = :unit_cost,
            total_cost = :total_cost,
            reorder_level = :reorder_level,
            updated_at = :updated_at
        WHERE id = :id AND business_id = :business_id
    `, item); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	var m *model.InventoryMovement
	if current.Quantity != item.Quantity {
		refType := model.ReferenceManual
		m = &model.InventoryMovement{
			ID:              uuid.New().String(),
			BusinessID:      item.BusinessID,
			InventoryItemID: item.ID,
			MovementType:    model.MovementAdjustment,
			QuantityChange:  item.Quantity - current.Quantity,
			QuantityBefore:  current.Quantity,
			QuantityAfter:   item.Quantity,
			ReferenceType:   &refType,
			Notes:           "Quantity edited",
			CreatedBy:       actor,
			CreatedAt:       item.UpdatedAt,
		}
		if err := ledger.RecordMovement(ctx, tx, m); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PGRepository) UpdateImage(ctx context.Context, businessID, id, url string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE inventory_items SET image_url = $1, updated_at = NOW() WHERE id = $2 AND business_id = $3`,
		url, id, businessID)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, businessID, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE id = $1 AND business_id = $2`, id, businessID)
	return err
}

func (r *PGRepository) CountComponentUses(ctx context.Context, id string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT count(*) FROM product_components WHERE inventory_item_id = $1`, id)
	return n, err
}

func (r *PGRepository) ComponentUsage(ctx context.Context, businessID string) ([]costing.Reservation, error) {
	rs := []costing.Reservation{}
	err := r.DB.SelectContext(ctx, &rs, `
        SELECT pc.inventory_item_id, pc.product_id,
               pc.quantity AS component_quantity,
               p.quantity_available AS product_quantity
        FROM product_components pc
        JOIN products p ON p.id = pc.product_id
        WHERE pc.business_id = $1
    `, businessID)
	return rs, err
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, m *model.InventoryMovement) (*model.InventoryItem, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var item model.InventoryItem
	err = tx.GetContext(ctx, &item,
		`SELECT * FROM inventory_items WHERE id = $1 AND business_id = $2 FOR UPDATE`,
		m.InventoryItemID, m.BusinessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Inventory item not found")
		}
		return nil, fmt.Errorf("failed to lock inventory item: %w", err)
	}

	m.QuantityBefore = item.Quantity
	m.QuantityAfter = item.Quantity + m.QuantityChange
	if m.QuantityAfter < 0 {
		return nil, apperror.Validationf("Cannot remove %g. Only %g in stock", -m.QuantityChange, item.Quantity)
	}

	item.Quantity = m.QuantityAfter
	item.TotalCost = costing.ItemTotalCost(item.Quantity, item.UnitCost)
	item.UpdatedAt = time.Now()

	if _, err := tx.NamedExecContext(ctx, `
        UPDATE inventory_items
        SET quantity = :quantity, total_cost = :total_cost, updated_at = :updated_at
        WHERE id = :id
    `, &item); err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	if err := ledger.RecordMovement(ctx, tx, m); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items := []model.InventoryMovement{}
	var count int

	conditions := []string{"business_id = :business_id"}
	args := map[string]interface{}{"business_id": f.BusinessID}

	if f.ItemID != "" {
		conditions = append(conditions, "inventory_item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	cstmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM inventory_movements"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer cstmt.Close()
	if err := cstmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}
