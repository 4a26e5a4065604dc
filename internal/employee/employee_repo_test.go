package employee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var employeeColumns = []string{"id", "first_name", "last_name", "email", "position", "salary", "created_at", "updated_at"}

func setupRepoTest(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	return NewRepository(db), mock
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`INSERT INTO "employees"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, &Employee{ID: uuid.New(), FirstName: "Ada", Email: "ada@example.com", Salary: 1})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inside transaction", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "employees"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		raw, err := repo.(*repository).db.DB()
		assert.NoError(t, err)
		tx, err := raw.BeginTx(ctx, nil)
		assert.NoError(t, err)

		assert.NoError(t, repo.WithTx(tx).Create(ctx, &Employee{ID: uuid.New(), Email: "ada@example.com"}))
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`INSERT INTO "employees"`).
			WillReturnError(errors.New("insert failed"))

		err := repo.Create(ctx, &Employee{ID: uuid.New()})

		assert.EqualError(t, err, "insert failed")
	})
}

func TestRepository_FindAll(t *testing.T) {
	repo, mock := setupRepoTest(t)
	now := time.Now()
	rows := sqlmock.NewRows(employeeColumns).
		AddRow(uuid.NewString(), "Grace", "Hopper", "grace@example.com", "Admiral", 2.0, now, now).
		AddRow(uuid.NewString(), "Ada", "Lovelace", "ada@example.com", "Engineer", 1.0, now.Add(-time.Hour), now)

	mock.ExpectQuery(`SELECT \* FROM "employees" ORDER BY created_at DESC`).WillReturnRows(rows)

	empls, err := repo.FindAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, empls, 2)
	assert.Equal(t, "Grace", empls[0].FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Search(t *testing.T) {
	repo, mock := setupRepoTest(t)
	rows := sqlmock.NewRows(employeeColumns).
		AddRow(uuid.NewString(), "Ada", "Lovelace", "ada@example.com", "Engineer", 1.0, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT \* FROM "employees" WHERE \(?first_name ILIKE .* OR position ILIKE .*\)? LIMIT`).
		WillReturnRows(rows)

	empls, err := repo.Search(context.Background(), "ada", 25)

	assert.NoError(t, err)
	assert.Len(t, empls, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()
		rows := sqlmock.NewRows(employeeColumns).
			AddRow(id.String(), "Ada", "Lovelace", "ada@example.com", "Engineer", 1.0, time.Now(), time.Now())
		mock.ExpectQuery(`SELECT \* FROM "employees" WHERE id = \$1`).WillReturnRows(rows)

		empl, err := repo.FindByID(ctx, id)

		assert.NoError(t, err)
		assert.Equal(t, id, empl.ID)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectQuery(`SELECT \* FROM "employees" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(employeeColumns))

		empl, err := repo.FindByID(ctx, uuid.New())

		assert.Nil(t, empl)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`UPDATE "employees" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, &Employee{ID: uuid.New(), FirstName: "Ada", UpdatedAt: time.Now()})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows - not found", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`UPDATE "employees" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, &Employee{ID: uuid.New(), FirstName: "Ada"})

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`DELETE FROM "employees" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, uuid.New()))
	})

	t.Run("no rows - not found", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectExec(`DELETE FROM "employees" WHERE id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), gorm.ErrRecordNotFound)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `first\_name`, escapeLike("first_name"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "ada", escapeLike("ada"))
}
