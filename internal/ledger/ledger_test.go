package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/jmoiron/sqlx"
)

var productColumns = []string{"id", "business_id", "name", "quantity_available", "profit_margin", "sale_price", "created_at", "updated_at"}

func newMockTx(t *testing.T) (*sqlx.Tx, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	tx, err := sqlx.NewDb(db, "pgx").Beginx()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx, mock
}

func testOrder(committed bool, status model.OrderStatus) *model.Order {
	productID := "p1"
	return &model.Order{
		BaseModel:      model.BaseModel{ID: "o1"},
		BusinessID:     "b1",
		ClientName:     "Ana",
		ProductID:      &productID,
		ProductName:    "Cake",
		Quantity:       2,
		Status:         status,
		StockCommitted: committed,
	}
}

func expectProduct(mock sqlmock.Sqlmock, available int) {
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM products WHERE id = \$1 AND business_id = \$2 FOR UPDATE`).
		WithArgs("p1", "b1").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("p1", "b1", "Cake", available, "20", "6.60", now, now))
}

func expectComponents(mock sqlmock.Sqlmock, onHand float64) {
	mock.ExpectQuery(`FROM product_components pc`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"inventory_item_id", "quantity", "name", "on_hand"}).
			AddRow("flour", 3.0, "Flour", onHand).
			AddRow("sugar", 1.0, "Sugar", onHand))
}

func TestCommitRejectsMoreThanProductStock(t *testing.T) {
	tx, mock := newMockTx(t)
	expectProduct(mock, 1)

	err := Commit(context.Background(), tx, testOrder(false, model.StatusNewInquiry), 2, nil)
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCommitRejectsComponentShortage(t *testing.T) {
	tx, mock := newMockTx(t)
	expectProduct(mock, 10)
	expectComponents(mock, 5) // flour needs 3 × 2 = 6

	err := Commit(context.Background(), tx, testOrder(false, model.StatusNewInquiry), 2, nil)
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCommitDeductsEveryComponent(t *testing.T) {
	tx, mock := newMockTx(t)
	expectProduct(mock, 10)
	expectComponents(mock, 50)

	mock.ExpectExec(`UPDATE inventory_items`).WithArgs(-6.0, "flour").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inventory_movements`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE inventory_items`).WithArgs(-2.0, "sugar").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inventory_movements`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET quantity_available = quantity_available - \$1`).
		WithArgs(2, "p1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := Commit(context.Background(), tx, testOrder(false, model.StatusNewInquiry), 2, nil); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTransitionCancelRestoresCommittedStock(t *testing.T) {
	tx, mock := newMockTx(t)
	expectProduct(mock, 3)
	expectComponents(mock, 10)

	mock.ExpectExec(`UPDATE inventory_items`).WithArgs(6.0, "flour").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inventory_movements`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE inventory_items`).WithArgs(2.0, "sugar").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO inventory_movements`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET quantity_available = quantity_available \+ \$1`).
		WithArgs(2, "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs(model.StatusCancelled, false, sqlmock.AnyArg(), "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	o := testOrder(true, model.StatusCompleted)
	if _, err := Transition(context.Background(), tx, o, model.StatusCancelled, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if o.StockCommitted || o.Status != model.StatusCancelled {
		t.Errorf("order = %+v", o)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTransitionCompleteDoesNotDeductTwice(t *testing.T) {
	tx, mock := newMockTx(t)
	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs(model.StatusCompleted, true, sqlmock.AnyArg(), "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	o := testOrder(true, model.StatusReadyForDelivery)
	if _, err := Transition(context.Background(), tx, o, model.StatusCompleted, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTransitionRejectsCancelledOrders(t *testing.T) {
	tx, mock := newMockTx(t)

	_, err := Transition(context.Background(), tx, testOrder(false, model.StatusCancelled), model.StatusCompleted, nil)
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTransitionToReadyCreatesDeliveryToken(t *testing.T) {
	tx, mock := newMockTx(t)
	mock.ExpectExec(`UPDATE orders SET status`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM delivery_confirmations WHERE order_id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO delivery_confirmations`).WillReturnResult(sqlmock.NewResult(0, 1))

	dc, err := Transition(context.Background(), tx, testOrder(true, model.StatusInProgress), model.StatusReadyForDelivery, nil)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if dc == nil || len(dc.DriverToken) != 32 || dc.OrderID != "o1" {
		t.Fatalf("confirmation = %+v", dc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
