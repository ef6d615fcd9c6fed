package migrations

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/jmoiron/sqlx"
)

func TestFilesAreEmbeddedInOrder(t *testing.T) {
	names, err := Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no migrations embedded")
	}
	if names[0] != "0001_init.sql" {
		t.Errorf("first migration = %q", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("migrations out of order: %q before %q", names[i-1], names[i])
		}
	}
}

func TestApplySkipsRecordedMigrations(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()
	db := sqlx.NewDb(sqlDB, "pgx")

	names, _ := Files()
	rows := sqlmock.NewRows([]string{"name"})
	for _, n := range names {
		rows.AddRow(n)
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").WillReturnRows(rows)

	if err := Apply(context.Background(), db, logger.NewNop()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
