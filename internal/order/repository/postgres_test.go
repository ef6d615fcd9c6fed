package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
	"github.com/jmoiron/sqlx"
)

var orderColumns = []string{
	"id", "business_id", "client_name", "client_contact", "product_id", "product_name",
	"quantity", "sale_price", "status", "delivery_info", "payment_method",
	"assigned_driver_id", "stock_committed", "created_at", "updated_at",
}

func newMock(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func orderRow(status model.OrderStatus, quantity int, total string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(orderColumns).AddRow(
		"o1", "b1", "Ana", nil, "p1", "Cake",
		quantity, total, string(status), nil, nil,
		nil, true, now, now,
	)
}

func TestEditRejectsClosedOrders(t *testing.T) {
	for _, status := range []model.OrderStatus{model.StatusCompleted, model.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT \* FROM orders WHERE id = \$1 AND business_id = \$2 FOR UPDATE`).
				WithArgs("o1", "b1").
				WillReturnRows(orderRow(status, 2, "13.20"))
			mock.ExpectRollback()

			_, err := repo.Edit(context.Background(), &dto.UpdateOrderInput{BusinessID: "b1", ID: "o1", ClientName: "Ana", Quantity: 3})
			if !apperror.Is(err, apperror.KindConflict) {
				t.Fatalf("err = %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestEditRepricesWithoutStockChange(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	now := time.Now()
	// Not committed yet, so a quantity change touches no stock.
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("o1", "b1").
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(
			"o1", "b1", "Ana", nil, "p1", "Cake", 2, "13.20", string(model.StatusInProgress),
			nil, nil, nil, false, now, now))
	mock.ExpectExec(`UPDATE orders`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o, err := repo.Edit(context.Background(), &dto.UpdateOrderInput{BusinessID: "b1", ID: "o1", ClientName: "Bea", Quantity: 5})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if o.ClientName != "Bea" || o.Quantity != 5 || o.SalePrice.String() != "33" {
		t.Errorf("order = %s x%d %s", o.ClientName, o.Quantity, o.SalePrice)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

var productColumns = []string{"id", "business_id", "name", "quantity_available", "profit_margin", "sale_price", "created_at", "updated_at"}

func expectLockedProduct(mock sqlmock.Sqlmock, available int) {
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM products WHERE id = \$1 AND business_id = \$2 FOR UPDATE`).
		WithArgs("p1", "b1").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("p1", "b1", "Cake", available, "20", "6.60", now, now))
}

func expectLockedComponents(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM product_components pc`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"inventory_item_id", "quantity", "name", "on_hand"}).
			AddRow("flour", 3.0, "Flour", 50.0).
			AddRow("sugar", 1.0, "Sugar", 50.0))
}

func TestEditQuantityDelta(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int
		flour, sugar float64 // inventory change per component
		product      string
		total        string
	}{
		{
			name:     "raise commits the extra units",
			quantity: 5,
			flour:    -9,
			sugar:    -3,
			product:  `UPDATE products SET quantity_available = quantity_available - \$1`,
			total:    "33",
		},
		{
			name:     "lower restores the dropped unit",
			quantity: 1,
			flour:    3,
			sugar:    1,
			product:  `UPDATE products SET quantity_available = quantity_available \+ \$1`,
			total:    "6.6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT \* FROM orders WHERE id = \$1 AND business_id = \$2 FOR UPDATE`).
				WithArgs("o1", "b1").
				WillReturnRows(orderRow(model.StatusInProgress, 2, "13.20"))
			expectLockedProduct(mock, 10)
			expectLockedComponents(mock)

			delta := tt.quantity - 2
			if delta < 0 {
				delta = -delta
			}
			mock.ExpectExec(`UPDATE inventory_items`).WithArgs(tt.flour, "flour").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`INSERT INTO inventory_movements`).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`UPDATE inventory_items`).WithArgs(tt.sugar, "sugar").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`INSERT INTO inventory_movements`).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(tt.product).WithArgs(delta, "p1").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`UPDATE orders`).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			o, err := repo.Edit(context.Background(), &dto.UpdateOrderInput{
				BusinessID: "b1", ID: "o1", UserID: "u1", ClientName: "Ana", Quantity: tt.quantity,
			})
			if err != nil {
				t.Fatalf("Edit: %v", err)
			}
			if o.Quantity != tt.quantity || o.SalePrice.String() != tt.total || !o.StockCommitted {
				t.Errorf("order = x%d %s committed=%v", o.Quantity, o.SalePrice, o.StockCommitted)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestEditRaiseBeyondProductStock(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("o1", "b1").
		WillReturnRows(orderRow(model.StatusInProgress, 2, "13.20"))
	// Three more units requested, two left.
	expectLockedProduct(mock, 2)
	mock.ExpectRollback()

	_, err := repo.Edit(context.Background(), &dto.UpdateOrderInput{BusinessID: "b1", ID: "o1", ClientName: "Ana", Quantity: 5})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindAllDateRangeIsInclusive(t *testing.T) {
	repo, mock := newMock(t)
	from := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectPrepare(`SELECT count\(\*\) FROM orders WHERE business_id = \$1 AND created_at >= \$2 AND created_at < \$3`).
		ExpectQuery().
		WithArgs("b1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectPrepare(`SELECT \* FROM orders WHERE .* LIMIT 10 OFFSET 0`).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, n, err := repo.FindAll(context.Background(), &dto.OrderFilters{BusinessID: "b1", DateFrom: &from, DateTo: &to, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
