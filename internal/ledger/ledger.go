// Package ledger applies stock changes inside a caller-owned transaction.
// Every function expects the rows it touches to be locked with FOR UPDATE so
// that concurrent orders on the same product serialize on the database.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type component struct {
	InventoryItemID string  `db:"inventory_item_id"`
	Quantity        float64 `db:"quantity"`
	Name            string  `db:"name"`
	OnHand          float64 `db:"on_hand"`
}

func LockOrder(ctx context.Context, tx *sqlx.Tx, businessID, orderID string) (*model.Order, error) {
	var o model.Order
	err := tx.GetContext(ctx, &o,
		`SELECT * FROM orders WHERE id = $1 AND business_id = $2 FOR UPDATE`, orderID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return &o, nil
}

func LockProduct(ctx context.Context, tx *sqlx.Tx, businessID, productID string) (*model.Product, error) {
	var p model.Product
	err := tx.GetContext(ctx, &p,
		`SELECT * FROM products WHERE id = $1 AND business_id = $2 FOR UPDATE`, productID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return &p, nil
}

func lockComponents(ctx context.Context, tx *sqlx.Tx, productID string) ([]component, error) {
	var comps []component
	err := tx.SelectContext(ctx, &comps, `
		SELECT pc.inventory_item_id, pc.quantity, i.name, i.quantity AS on_hand
		FROM product_components pc
		JOIN inventory_items i ON i.id = pc.inventory_item_id
		WHERE pc.product_id = $1
		ORDER BY pc.inventory_item_id
		FOR UPDATE OF i`, productID)
	if err != nil {
		return nil, fmt.Errorf("lock components: %w", err)
	}
	return comps, nil
}

// Commit takes units of the order's product out of stock together with the
// inventory its components consume.
func Commit(ctx context.Context, tx *sqlx.Tx, o *model.Order, units int, actor *string) error {
	if units <= 0 {
		return nil
	}
	if o.ProductID == nil {
		return apperror.Conflict("The product for this order no longer exists")
	}

	p, err := LockProduct(ctx, tx, o.BusinessID, *o.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("Product not found")
	}
	if p.QuantityAvailable < units {
		return apperror.Conflictf("Only %d units of %s available", p.QuantityAvailable, p.Name)
	}

	comps, err := lockComponents(ctx, tx, p.ID)
	if err != nil {
		return err
	}

	var short []string
	for _, c := range comps {
		need := c.Quantity * float64(units)
		if need > c.OnHand {
			short = append(short, fmt.Sprintf("%s (available: %g, required: %g)", c.Name, c.OnHand, need))
		}
	}
	if len(short) > 0 {
		return apperror.Conflict("Not enough inventory: " + strings.Join(short, ", "))
	}

	for _, c := range comps {
		if err := moveItem(ctx, tx, o, c, -c.Quantity*float64(units), model.MovementOrderCommit, actor); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE products SET quantity_available = quantity_available - $1, updated_at = NOW()
		WHERE id = $2`, units, p.ID); err != nil {
		return fmt.Errorf("deduct product stock: %w", err)
	}
	return nil
}

// Restore returns units of the order's product and their component inventory.
// An order whose product was deleted has nothing left to restore into.
func Restore(ctx context.Context, tx *sqlx.Tx, o *model.Order, units int, actor *string) error {
	if units <= 0 || o.ProductID == nil {
		return nil
	}

	p, err := LockProduct(ctx, tx, o.BusinessID, *o.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	comps, err := lockComponents(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	for _, c := range comps {
		if err := moveItem(ctx, tx, o, c, c.Quantity*float64(units), model.MovementOrderRestore, actor); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE products SET quantity_available = quantity_available + $1, updated_at = NOW()
		WHERE id = $2`, units, p.ID); err != nil {
		return fmt.Errorf("restore product stock: %w", err)
	}
	return nil
}

func moveItem(ctx context.Context, tx *sqlx.Tx, o *model.Order, c component, change float64, movementType string, actor *string) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE inventory_items
		SET quantity = quantity + $1,
		    total_cost = ROUND((quantity + $1) * unit_cost, 2),
		    updated_at = NOW()
		WHERE id = $2`, change, c.InventoryItemID); err != nil {
		return fmt.Errorf("update inventory item %s: %w", c.InventoryItemID, err)
	}

	refType := model.ReferenceOrder
	refID := o.ID
	return RecordMovement(ctx, tx, &model.InventoryMovement{
		ID:              uuid.New().String(),
		BusinessID:      o.BusinessID,
		InventoryItemID: c.InventoryItemID,
		MovementType:    movementType,
		QuantityChange:  change,
		QuantityBefore:  c.OnHand,
		QuantityAfter:   c.OnHand + change,
		ReferenceType:   &refType,
		ReferenceID:     &refID,
		Notes:           fmt.Sprintf("Order for %s", o.ClientName),
		CreatedBy:       actor,
		CreatedAt:       time.Now(),
	})
}

func RecordMovement(ctx context.Context, tx *sqlx.Tx, m *model.InventoryMovement) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO inventory_movements (
			id, business_id, inventory_item_id, movement_type,
			quantity_change, quantity_before, quantity_after,
			reference_type, reference_id, notes, created_by, created_at
		) VALUES (
			:id, :business_id, :inventory_item_id, :movement_type,
			:quantity_change, :quantity_before, :quantity_after,
			:reference_type, :reference_id, :notes, :created_by, :created_at
		)`, m)
	if err != nil {
		return fmt.Errorf("record movement: %w", err)
	}
	return nil
}

// Transition moves a locked order to status `to`. Cancelling gives committed
// stock back; completing commits stock that was not committed yet. Reaching
// Ready for Delivery returns the order's delivery confirmation.
func Transition(ctx context.Context, tx *sqlx.Tx, o *model.Order, to model.OrderStatus, actor *string) (*model.DeliveryConfirmation, error) {
	if !model.ValidStatusTransition(o.Status, to) {
		return nil, apperror.Conflictf("Cannot move an order from %s to %s", o.Status, to)
	}
	if o.Status == to {
		return nil, nil
	}

	switch to {
	case model.StatusCancelled:
		if o.StockCommitted {
			if err := Restore(ctx, tx, o, o.Quantity, actor); err != nil {
				return nil, err
			}
			o.StockCommitted = false
		}
	case model.StatusCompleted:
		if !o.StockCommitted && o.ProductID != nil {
			if err := Commit(ctx, tx, o, o.Quantity, actor); err != nil {
				return nil, err
			}
			o.StockCommitted = true
		}
	}

	o.Status = to
	o.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, stock_committed = $2, updated_at = $3
		WHERE id = $4`, o.Status, o.StockCommitted, o.UpdatedAt, o.ID); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if to == model.StatusReadyForDelivery {
		return EnsureDeliveryConfirmation(ctx, tx, o)
	}
	return nil, nil
}

// EnsureDeliveryConfirmation returns the order's confirmation, creating one
// with a fresh driver token when missing.
func EnsureDeliveryConfirmation(ctx context.Context, tx *sqlx.Tx, o *model.Order) (*model.DeliveryConfirmation, error) {
	var dc model.DeliveryConfirmation
	err := tx.GetContext(ctx, &dc, `SELECT * FROM delivery_confirmations WHERE order_id = $1`, o.ID)
	if err == nil {
		return &dc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find delivery confirmation: %w", err)
	}

	dc = model.DeliveryConfirmation{
		ID:          uuid.New().String(),
		BusinessID:  o.BusinessID,
		OrderID:     o.ID,
		DriverToken: NewDriverToken(),
		CreatedAt:   time.Now(),
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO delivery_confirmations (id, business_id, order_id, driver_token, created_at)
		VALUES (:id, :business_id, :order_id, :driver_token, :created_at)`, &dc); err != nil {
		return nil, fmt.Errorf("create delivery confirmation: %w", err)
	}
	return &dc, nil
}

// NewDriverToken is 32 hex characters of randomness.
func NewDriverToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ProductLockKey names the Redis lock serializing stock changes of a product.
func ProductLockKey(businessID, productID string) string {
	return fmt.Sprintf("lock:product:%s:%s", businessID, productID)
}
