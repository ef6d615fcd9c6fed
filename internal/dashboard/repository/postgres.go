package repository

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Totals(ctx context.Context, businessID string, monthStart time.Time) (*dto.Totals, error) {
	var t dto.Totals
	err := r.DB.GetContext(ctx, &t, `
        SELECT
            (SELECT COALESCE(SUM(total_cost), 0) FROM inventory_items WHERE business_id = $1) AS inventory_value,
            (SELECT count(*) FROM inventory_items WHERE business_id = $1) AS inventory_items,
            (SELECT COALESCE(SUM(quantity_available), 0) FROM products WHERE business_id = $1) AS product_units,
            (SELECT count(*) FROM products WHERE business_id = $1) AS products,
            (SELECT count(*) FROM orders WHERE business_id = $1 AND status NOT IN ($2, $3)) AS active_orders,
            (SELECT count(*) FROM orders WHERE business_id = $1) AS total_orders,
            (SELECT COALESCE(SUM(sale_price), 0) FROM orders
                WHERE business_id = $1 AND status = $2 AND updated_at >= $4) AS monthly_revenue,
            (SELECT count(DISTINCT user_id) FROM user_roles WHERE business_id = $1 AND role <> $5) AS team_members
    `, businessID, model.StatusCompleted, model.StatusCancelled, monthStart, model.RoleOwner)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) InventoryItems(ctx context.Context, businessID string) ([]model.InventoryItem, error) {
	items := []model.InventoryItem{}
	err := r.DB.SelectContext(ctx, &items, `SELECT * FROM inventory_items WHERE business_id = $1 ORDER BY name`, businessID)
	return items, err
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

func (r *PGRepository) RecentOrders(ctx context.Context, businessID string, limit int) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.DB.SelectContext(ctx, &orders, `
        SELECT * FROM orders WHERE business_id = $1
        ORDER BY created_at DESC, id
        LIMIT $2
    `, businessID, limit)
	return orders, err
}
