package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/ledger"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByToken(ctx context.Context, token string) (*dto.DeliveryDetail, error) {
	var d dto.DeliveryDetail
	err := r.DB.GetContext(ctx, &d, `
        SELECT dc.*,
               b.name AS business_name,
               o.client_name, o.product_name, o.quantity, o.delivery_info,
               o.status AS order_status
        FROM delivery_confirmations dc
        JOIN orders o ON o.id = dc.order_id
        JOIN businesses b ON b.id = dc.business_id
        WHERE dc.driver_token = $1
    `, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGRepository) Confirm(ctx context.Context, token, photoURL string, notes *string) (*model.Order, *model.DeliveryConfirmation, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var dc model.DeliveryConfirmation
	err = tx.GetContext(ctx, &dc,
		`SELECT * FROM delivery_confirmations WHERE driver_token = $1 FOR UPDATE`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperror.NotFound("Invalid delivery link")
		}
		return nil, nil, fmt.Errorf("failed to lock delivery confirmation: %w", err)
	}
	if dc.Confirmed() {
		return nil, nil, apperror.Conflict("This delivery has already been confirmed")
	}

	o, err := ledger.LockOrder(ctx, tx, dc.BusinessID, dc.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, apperror.NotFound("Invalid delivery link")
	}
	if o.Status == model.StatusCancelled {
		return nil, nil, apperror.Conflict("This order has been cancelled")
	}

	now := time.Now()
	dc.ConfirmedAt = &now
	dc.DeliveryPhotoURL = &photoURL
	dc.DriverNotes = notes
	if _, err := tx.NamedExecContext(ctx, `
        UPDATE delivery_confirmations
        SET confirmed_at = :confirmed_at,
            delivery_photo_url = :delivery_photo_url,
            driver_notes = :driver_notes
        WHERE id = :id
    `, &dc); err != nil {
		return nil, nil, fmt.Errorf("failed to confirm delivery: %w", err)
	}

	if _, err := ledger.Transition(ctx, tx, o, model.StatusCompleted, nil); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return o, &dc, nil
}
