package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/ledger"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO products (
            id, business_id, name, quantity_available, profit_margin, sale_price,
            created_at, updated_at
        )
        VALUES (
            :id, :business_id, :name, :quantity_available, :profit_margin, :sale_price,
            :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	if err := insertComponents(ctx, tx, p.Components); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, businessID, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 AND business_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{"business_id = :business_id"}
	args := map[string]interface{}{"business_id": f.BusinessID}

	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []model.Product{}, 0, nil
		}
		placeholders := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			key := fmt.Sprintf("id%d", i)
			placeholders[i] = ":" + key
			args[key] = id
		}
		conditions = append(conditions, "id IN ("+strings.Join(placeholders, ", ")+")")
	} else if f.Search != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	cstmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM products"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer cstmt.Close()
	if err := cstmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	// Whitelisted to keep user input out of ORDER BY.
	orderBy := "created_at"
	switch f.SortBy {
	case "name":
		orderBy = "LOWER(name)"
	case "sale_price":
		orderBy = "sale_price"
	case "quantity_available":
		orderBy = "quantity_available"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		orderBy += " ASC"
	} else {
		orderBy += " DESC"
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s, id", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	locked, err := ledger.LockProduct(ctx, tx, p.BusinessID, p.ID)
	if err != nil {
		return err
	}
	if locked == nil {
		return apperror.NotFound("Product not found")
	}

	query := `
        UPDATE products
        SET name = :name,
            quantity_available = :quantity_available,
            profit_margin = :profit_margin,
            sale_price = :sale_price,
            updated_at = :updated_at
        WHERE id = :id AND business_id = :business_id
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_components WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear components: %w", err)
	}
	if err := insertComponents(ctx, tx, p.Components); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the product; components cascade and orders keep their snapshot.
func (r *PGRepository) Delete(ctx context.Context, businessID, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND business_id = $2`, id, businessID)
	return err
}

func (r *PGRepository) FindComponents(ctx context.Context, businessID string, productIDs []string) ([]dto.ComponentDetail, error) {
	out := []dto.ComponentDetail{}
	if len(productIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
        SELECT pc.*, i.name AS item_name, i.unit_cost
        FROM product_components pc
        JOIN inventory_items i ON i.id = pc.inventory_item_id
        WHERE pc.business_id = ? AND pc.product_id IN (?)
        ORDER BY pc.created_at, pc.id
    `, businessID, productIDs)
	if err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &out, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) FindItems(ctx context.Context, businessID string, ids []string) ([]model.InventoryItem, error) {
	out := []model.InventoryItem{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(
		`SELECT * FROM inventory_items WHERE business_id = ? AND id IN (?)`, businessID, ids)
	if err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &out, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return out, nil
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

func insertComponents(ctx context.Context, tx *sqlx.Tx, comps []model.ProductComponent) error {
	for i := range comps {
		if _, err := tx.NamedExecContext(ctx, `
            INSERT INTO product_components (id, business_id, product_id, inventory_item_id, quantity, created_at)
            VALUES (:id, :business_id, :product_id, :inventory_item_id, :quantity, :created_at)
        `, &comps[i]); err != nil {
			return fmt.Errorf("failed to insert component: %w", err)
		}
	}
	return nil
}
