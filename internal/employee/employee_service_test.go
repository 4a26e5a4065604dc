package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-employee/internal/employee"
	employeeerrors "go-employee/internal/employee/errors"
	employeeMock "go-employee/internal/employee/mock"
	"go-employee/internal/events"
	"go-employee/internal/messaging/kafka"
	kafkaMock "go-employee/internal/messaging/kafka/mock"
	"go-employee/internal/shared/apperror"
	"go-employee/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service employee.Service
	repo    *employeeMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)
	repo := employeeMock.NewMockRepository(ctrl)

	return &serviceDeps{
		service: employee.NewService(repo),
		repo:    repo,
	}
}

func setupOutboxServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := employeeMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: employee.NewServiceWithOutbox(db, repo, outboxRepo),
		repo:    repo,
		outbox:  outboxRepo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Position:  "Engineer",
		Salary:    120000,
	}
}

func duplicateEmailError() error {
	return &pgconn.PgError{
		Code:           "23505",
		ConstraintName: employee.EmailUniqueIndex,
		Message:        "duplicate key value violates unique constraint",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success - trims input and assigns id", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		req.FirstName = "  Ada "
		req.Email = " ada@example.com "

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.NotEqual(t, uuid.Nil, e.ID)
				assert.Equal(t, "Ada", e.FirstName)
				assert.Equal(t, "ada@example.com", e.Email)
				assert.False(t, e.CreatedAt.IsZero())
				return nil
			})

		res, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, "Ada", res.FirstName)
		assert.Equal(t, "Lovelace", res.LastName)
		assert.Equal(t, 120000.0, res.Salary)
		assert.Equal(t, res.CreatedAt, res.UpdatedAt)
	})

	t.Run("validation - reports every failed field", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.CreateEmployeeRequest{
			FirstName: "   ",
			LastName:  "Lovelace",
			Email:     "  ",
			Position:  "Engineer",
			Salary:    -5,
		}

		res, err := deps.service.Create(ctx, req)

		assert.Empty(t, res.ID)
		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		assert.Len(t, appErr.Fields, 3)

		fields := map[string]string{}
		for _, f := range appErr.Fields {
			fields[f.Field] = f.Message
		}
		assert.Equal(t, "First Name is required", fields["first_name"])
		assert.Equal(t, "Email is required", fields["email"])
		assert.Equal(t, "Salary must be greater than 0", fields["salary"])
	})

	t.Run("validation - zero salary is missing", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		req.Salary = 0

		_, err := deps.service.Create(ctx, req)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Equal(t, "Salary is required", appErr.Details)
	})

	t.Run("duplicate email - 400 conflict", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(duplicateEmailError())

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, apperror.CodeConflict, httpErr.Code)
		assert.Equal(t, "email already exists", httpErr.Details)
	})

	t.Run("store failure - 500 without leaking driver text", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(errors.New("connection reset by peer"))

		_, err := deps.service.Create(ctx, validCreateRequest())

		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, employeeerrors.MsgCreateFailed, httpErr.Message)
		assert.Empty(t, httpErr.Details)
	})
}

func TestEmployeeService_CreateWithOutbox(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-1")

	t.Run("success - event written in the same transaction", func(t *testing.T) {
		deps := setupOutboxServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)

		var createdID uuid.UUID
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				createdID = e.ID
				return nil
			})

		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, events.EmployeeCreated, ev.EventType)
				assert.Equal(t, events.EmployeeLifecycleTopic, ev.Topic)
				assert.Equal(t, "employee", ev.AggregateType)
				assert.Equal(t, createdID.String(), ev.AggregateID)
				assert.Equal(t, "req-1", ev.RequestID)
				assert.Equal(t, kafka.OutboxStatusPending, ev.Status)

				var payload events.EmployeeLifecycleEvent
				assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
				assert.Equal(t, "ada@example.com", payload.Email)
				return nil
			})

		res, err := deps.service.Create(ctx, validCreateRequest())

		assert.NoError(t, err)
		assert.Equal(t, createdID.String(), res.ID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("outbox failure - rolls back", func(t *testing.T) {
		deps := setupOutboxServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("insert outbox failed"))

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		deps := setupOutboxServiceTest(t)
		deps.sqlMock.ExpectBegin().WillReturnError(errors.New("db down"))

		_, err := deps.service.Create(ctx, validCreateRequest())

		assert.Equal(t, employeeerrors.MsgCreateFailed, apperror.ToHTTP(err).Message)
	})
}

func TestEmployeeService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		now := time.Now()
		empls := []employee.Employee{
			{ID: uuid.New(), FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Position: "Admiral", Salary: 1, CreatedAt: now},
			{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Position: "Engineer", Salary: 2, CreatedAt: now.Add(-time.Hour)},
		}
		deps.repo.EXPECT().FindAll(ctx).Return(empls, nil)

		res, err := deps.service.List(ctx)

		assert.NoError(t, err)
		assert.Len(t, res, 2)
		assert.Equal(t, "Grace", res[0].FirstName)
		assert.Equal(t, empls[1].ID.String(), res[1].ID)
	})

	t.Run("empty store - empty slice", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx).Return(nil, nil)

		res, err := deps.service.List(ctx)

		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
	})

	t.Run("store failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx).Return(nil, errors.New("timeout"))

		_, err := deps.service.List(ctx)

		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, employeeerrors.MsgFetchFailed, httpErr.Message)
	})
}

func TestEmployeeService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("blank query - empty without store call", func(t *testing.T) {
		deps := setupServiceTest(t)

		res, err := deps.service.Search(ctx, "   ")

		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
	})

	t.Run("trims query and caps results", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().
			Search(ctx, "ada", employee.MaxSearchResults).
			Return([]employee.Employee{{ID: uuid.New(), FirstName: "Ada"}}, nil)

		res, err := deps.service.Search(ctx, "  ada ")

		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, "Ada", res[0].FirstName)
	})

	t.Run("store failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().
			Search(ctx, "ada", employee.MaxSearchResults).
			Return(nil, errors.New("boom"))

		_, err := deps.service.Search(ctx, "ada")

		assert.Equal(t, employeeerrors.MsgSearchFailed, apperror.ToHTTP(err).Message)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().FindByID(ctx, id).Return(&employee.Employee{ID: id, FirstName: "Ada"}, nil)

		res, err := deps.service.GetByID(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, id.String(), res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()

	existing := func(id uuid.UUID) *employee.Employee {
		return &employee.Employee{
			ID:        id,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Position:  "Engineer",
			Salary:    120000,
			CreatedAt: time.Now().Add(-time.Hour),
		}
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		position := "Lead Engineer"

		deps.repo.EXPECT().FindByID(ctx, id).Return(existing(id), nil)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "Lead Engineer", e.Position)
				assert.Equal(t, 120000.0, e.Salary)
				assert.Equal(t, "ada@example.com", e.Email)
				return nil
			})

		res, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{Position: &position})

		assert.NoError(t, err)
		assert.Equal(t, "Lead Engineer", res.Position)
		assert.Equal(t, "Ada", res.FirstName)
		assert.True(t, res.UpdatedAt.After(res.CreatedAt))
	})

	t.Run("invalid merged record", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		email := "broken"

		deps.repo.EXPECT().FindByID(ctx, id).Return(existing(id), nil)

		_, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{Email: &email})

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Equal(t, employeeerrors.MsgUpdateFailed, appErr.Message)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		email := "grace@example.com"

		deps.repo.EXPECT().FindByID(ctx, id).Return(existing(id), nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(duplicateEmailError())

		_, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{Email: &email})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Update(ctx, "123", employee.UpdateEmployeeRequest{})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("outbox - validation failure rolls back", func(t *testing.T) {
		deps := setupOutboxServiceTest(t)
		id := uuid.New()
		salary := -1.0
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.repo.EXPECT().FindByID(ctx, id).Return(existing(id), nil)

		_, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{Salary: &salary})

		assert.Equal(t, apperror.CodeValidation, apperror.ToHTTP(err).Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().Delete(ctx, id).Return(nil)

		assert.NoError(t, deps.service.Delete(ctx, id.String()))
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().Delete(ctx, id).Return(gorm.ErrRecordNotFound)

		err := deps.service.Delete(ctx, id.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)

		err := deps.service.Delete(ctx, "nope")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("outbox - deleted event", func(t *testing.T) {
		deps := setupOutboxServiceTest(t)
		id := uuid.New()
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.repo.EXPECT().Delete(ctx, id).Return(nil)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, events.EmployeeDeleted, ev.EventType)
				assert.Equal(t, id.String(), ev.AggregateID)
				return nil
			})

		assert.NoError(t, deps.service.Delete(ctx, id.String()))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
