package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/ledger"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order, actor *string) error {
	if o.ProductID == nil {
		return apperror.Validation("Product is required")
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p, err := ledger.LockProduct(ctx, tx, o.BusinessID, *o.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("Product not found")
	}
	o.ProductName = p.Name
	o.SalePrice = p.SalePrice.Mul(decimal.NewFromInt(int64(o.Quantity)))

	if err := ledger.Commit(ctx, tx, o, o.Quantity, actor); err != nil {
		return err
	}
	o.StockCommitted = true

	query := `
        INSERT INTO orders (
            id, business_id, client_name, client_contact, product_id, product_name,
            quantity, sale_price, status, delivery_info, payment_method,
            assigned_driver_id, stock_committed, created_at, updated_at
        )
        VALUES (
            :id, :business_id, :client_name, :client_contact, :product_id, :product_name,
            :quantity, :sale_price, :status, :delivery_info, :payment_method,
            :assigned_driver_id, :stock_committed, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, businessID, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	orders := []model.Order{}
	var count int

	conditions := []string{"business_id = :business_id"}
	args := map[string]interface{}{"business_id": f.BusinessID}

	if f.Search != "" {
		conditions = append(conditions, "(client_name ILIKE :search OR product_name ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			key := fmt.Sprintf("status%d", i)
			placeholders[i] = ":" + key
			args[key] = s
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if f.DateFrom != nil {
		conditions = append(conditions, "created_at >= :date_from")
		args["date_from"] = startOfDay(*f.DateFrom)
	}
	if f.DateTo != nil {
		conditions = append(conditions, "created_at < :date_to")
		args["date_to"] = startOfDay(*f.DateTo).AddDate(0, 0, 1)
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	cstmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM orders"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer cstmt.Close()
	if err := cstmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM orders" + whereClause + " ORDER BY created_at DESC, id"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *PGRepository) Count(ctx context.Context, businessID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT count(*) FROM orders WHERE business_id = $1`, businessID)
	return n, err
}

func (r *PGRepository) Edit(ctx context.Context, in *dto.UpdateOrderInput) (*model.Order, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := ledger.LockOrder(ctx, tx, in.BusinessID, in.ID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("Order not found")
	}
	if !o.Status.Active() {
		return nil, apperror.Conflictf("%s orders cannot be edited", o.Status)
	}

	actor := actorOf(in.UserID)
	if delta := in.Quantity - o.Quantity; delta != 0 && o.StockCommitted {
		if delta > 0 {
			err = ledger.Commit(ctx, tx, o, delta, actor)
		} else {
			err = ledger.Restore(ctx, tx, o, -delta, actor)
		}
		if err != nil {
			return nil, err
		}
	}

	unit := o.UnitPrice()
	o.ClientName = in.ClientName
	o.ClientContact = in.ClientContact
	o.Quantity = in.Quantity
	o.SalePrice = unit.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2)
	o.DeliveryInfo = in.DeliveryInfo
	o.PaymentMethod = in.PaymentMethod
	o.UpdatedAt = time.Now()

	if _, err := tx.NamedExecContext(ctx, `
        UPDATE orders
        SET client_name = :client_name,
            client_contact = :client_contact,
            quantity = :quantity,
            sale_price = :sale_price,
            delivery_info = :delivery_info,
            payment_method = :payment_method,
            updated_at = :updated_at
        WHERE id = :id
    `, o); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepository) ChangeStatus(ctx context.Context, in *dto.StatusInput) (*model.Order, model.OrderStatus, *model.DeliveryConfirmation, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", nil, err
	}
	defer tx.Rollback()

	o, err := ledger.LockOrder(ctx, tx, in.BusinessID, in.ID)
	if err != nil {
		return nil, "", nil, err
	}
	if o == nil {
		return nil, "", nil, apperror.NotFound("Order not found")
	}

	previous := o.Status
	dc, err := ledger.Transition(ctx, tx, o, in.Status, actorOf(in.UserID))
	if err != nil {
		return nil, "", nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, "", nil, err
	}
	return o, previous, dc, nil
}

func (r *PGRepository) AssignDriver(ctx context.Context, businessID, id string, driverID *string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `
        UPDATE orders SET assigned_driver_id = $1, updated_at = NOW()
        WHERE id = $2 AND business_id = $3
        RETURNING *
    `, driverID, id, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) IsDriver(ctx context.Context, businessID, userID string) (bool, error) {
	var ok bool
	err := r.DB.GetContext(ctx, &ok, `
        SELECT EXISTS (
            SELECT 1 FROM user_roles
            WHERE business_id = $1 AND user_id = $2 AND role = $3
        )
    `, businessID, userID, model.RoleDriver)
	return ok, err
}

func (r *PGRepository) FindConfirmation(ctx context.Context, orderID string) (*model.DeliveryConfirmation, error) {
	var dc model.DeliveryConfirmation
	err := r.DB.GetContext(ctx, &dc, `SELECT * FROM delivery_confirmations WHERE order_id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &dc, nil
}

func (r *PGRepository) DriverOrders(ctx context.Context, businessID, driverID string) ([]dto.DriverOrder, error) {
	out := []dto.DriverOrder{}
	err := r.DB.SelectContext(ctx, &out, `
        SELECT o.*, dc.driver_token, dc.confirmed_at
        FROM orders o
        LEFT JOIN delivery_confirmations dc ON dc.order_id = o.id
        WHERE o.business_id = $1 AND o.assigned_driver_id = $2 AND o.status IN ($3, $4)
        ORDER BY o.created_at DESC
    `, businessID, driverID, model.StatusReadyForDelivery, model.StatusCompleted)
	return out, err
}

func actorOf(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DriverChatID returns the Telegram chat of a driver's profile, nil when unset.
func (r *PGRepository) DriverChatID(ctx context.Context, userID string) (*int64, error) {
	var chatID *int64
	err := r.DB.GetContext(ctx, &chatID, `SELECT telegram_chat_id FROM profiles WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return chatID, nil
}
