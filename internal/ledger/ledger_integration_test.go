//go:build integration

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/migrations"
	"github.com/fekuna/omnipos-backoffice-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	db, err := postgres.Open(dsn, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Apply(ctx, db, logger.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestOrderLifecycleAgainstPostgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	businessID := uuid.New().String()
	itemID := uuid.New().String()
	productID := uuid.New().String()
	orderID := uuid.New().String()

	db.MustExec(`INSERT INTO businesses (id, name) VALUES ($1, 'Bakery')`, businessID)
	db.MustExec(`INSERT INTO inventory_items (id, business_id, name, quantity, unit_cost, total_cost)
		VALUES ($1, $2, 'Flour', 100, 1.5, 150)`, itemID, businessID)
	db.MustExec(`INSERT INTO products (id, business_id, name, quantity_available, sale_price)
		VALUES ($1, $2, 'Bread', 10, 3.60)`, productID, businessID)
	db.MustExec(`INSERT INTO product_components (id, business_id, product_id, inventory_item_id, quantity)
		VALUES ($1, $2, $3, $4, 2)`, uuid.New().String(), businessID, productID, itemID)

	order := &model.Order{
		BaseModel:   model.BaseModel{ID: orderID, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		BusinessID:  businessID,
		ClientName:  "Ana",
		ProductID:   &productID,
		ProductName: "Bread",
		Quantity:    3,
		Status:      model.StatusNewInquiry,
	}

	err := postgres.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := Commit(ctx, tx, order, order.Quantity, nil); err != nil {
			return err
		}
		order.StockCommitted = true
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO orders (id, business_id, client_name, product_id, product_name, quantity, sale_price, status, stock_committed, created_at, updated_at)
			VALUES (:id, :business_id, :client_name, :product_id, :product_name, :quantity, :sale_price, :status, :stock_committed, :created_at, :updated_at)`, order)
		return err
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	var qty float64
	var available int
	db.Get(&qty, `SELECT quantity FROM inventory_items WHERE id = $1`, itemID)
	db.Get(&available, `SELECT quantity_available FROM products WHERE id = $1`, productID)
	if qty != 94 || available != 7 {
		t.Fatalf("after commit: item %v product %v, want 94 and 7", qty, available)
	}

	err = postgres.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		o, err := LockOrder(ctx, tx, businessID, orderID)
		if err != nil {
			return err
		}
		if _, err := Transition(ctx, tx, o, model.StatusCompleted, nil); err != nil {
			return err
		}
		_, err = Transition(ctx, tx, o, model.StatusCancelled, nil)
		return err
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}

	db.Get(&qty, `SELECT quantity FROM inventory_items WHERE id = $1`, itemID)
	db.Get(&available, `SELECT quantity_available FROM products WHERE id = $1`, productID)
	if qty != 100 || available != 10 {
		t.Fatalf("after cancel: item %v product %v, want 100 and 10", qty, available)
	}

	var movements int
	db.Get(&movements, `SELECT count(*) FROM inventory_movements WHERE inventory_item_id = $1`, itemID)
	if movements != 2 {
		t.Errorf("movements = %d, want 2", movements)
	}
}
