package employee

import (
	"context"
	"database/sql"
	"strings"
	"time"

	employeeerrors "go-employee/internal/employee/errors"
	"go-employee/internal/events"
	"go-employee/internal/messaging/kafka"
	"go-employee/internal/shared/apperror"
	"go-employee/internal/shared/contextutil"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxSearchResults caps the number of records a search returns.
const MaxSearchResults = 25

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context) ([]EmployeeResponse, error)
	Search(ctx context.Context, q string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(nil, repo, nil, logger...)
}

// NewServiceWithOutbox returns a service that records a lifecycle event in
// the outbox within the same transaction as every successful write. A nil
// db or outboxRepo disables events.
func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		outbox:   outboxRepo,
		validate: validate,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) List(ctx context.Context) ([]EmployeeResponse, error) {
	rid := contextutil.RequestID(ctx)
	s.logger.Debug("list employees requested", zap.String("request_id", rid))

	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("list employees failed", zap.String("request_id", rid), zap.Error(err))
		return nil, mapRepositoryError(err, employeeerrors.MsgFetchFailed)
	}

	return mapToListResponse(empls), nil
}

func (s *service) Search(ctx context.Context, q string) ([]EmployeeResponse, error) {
	rid := contextutil.RequestID(ctx)
	q = strings.TrimSpace(q)
	if q == "" {
		return []EmployeeResponse{}, nil
	}
	s.logger.Debug("search employees requested", zap.String("request_id", rid), zap.String("q", q))

	empls, err := s.repo.Search(ctx, q, MaxSearchResults)
	if err != nil {
		s.logger.Error("search employees failed", zap.String("request_id", rid), zap.Error(err))
		return nil, mapRepositoryError(err, employeeerrors.MsgSearchFailed)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	rid := contextutil.RequestID(ctx)
	uid, err := uuid.Parse(id)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		s.logger.Warn("get employee by id failed",
			zap.String("request_id", rid),
			zap.String("employee_id", id),
			zap.Error(err),
		)
		return EmployeeResponse{}, mapRepositoryError(err, employeeerrors.MsgFetchFailed)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.RequestID(ctx)
	req = normalizeCreate(req)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	if fields := validateEmployee(s.validate, req); fields != nil {
		s.logger.Warn("create employee validation failed",
			zap.String("request_id", rid),
			zap.Int("fields", len(fields)),
		)
		return EmployeeResponse{}, apperror.Validation(employeeerrors.MsgCreateFailed, fields)
	}

	now := s.now().UTC()
	empl := &Employee{
		ID:        uuid.New(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Position:  req.Position,
		Salary:    req.Salary,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.write(ctx, func(repo Repository, outbox kafka.OutboxRepository) error {
		if err := repo.Create(ctx, empl); err != nil {
			return err
		}
		return s.enqueue(ctx, outbox, events.EmployeeCreated, *empl)
	})
	if err != nil {
		s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err, employeeerrors.MsgCreateFailed)
	}

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)
	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.RequestID(ctx)
	uid, err := uuid.Parse(id)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	s.logger.Debug("update employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	var updated Employee
	err = s.write(ctx, func(repo Repository, outbox kafka.OutboxRepository) error {
		empl, err := repo.FindByID(ctx, uid)
		if err != nil {
			return err
		}

		applyUpdate(empl, req)
		if fields := validateEmployee(s.validate, recordOf(*empl)); fields != nil {
			return apperror.Validation(employeeerrors.MsgUpdateFailed, fields)
		}
		empl.UpdatedAt = s.now().UTC()

		if err := repo.Update(ctx, empl); err != nil {
			return err
		}
		updated = *empl
		return s.enqueue(ctx, outbox, events.EmployeeUpdated, updated)
	})
	if err != nil {
		s.logger.Warn("update employee failed",
			zap.String("request_id", rid),
			zap.String("employee_id", id),
			zap.Error(err),
		)
		return EmployeeResponse{}, mapRepositoryError(err, employeeerrors.MsgUpdateFailed)
	}

	s.logger.Info("update employee success", zap.String("request_id", rid), zap.String("employee_id", id))
	return mapToResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	rid := contextutil.RequestID(ctx)
	uid, err := uuid.Parse(id)
	if err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}
	s.logger.Debug("delete employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	err = s.write(ctx, func(repo Repository, outbox kafka.OutboxRepository) error {
		if err := repo.Delete(ctx, uid); err != nil {
			return err
		}
		return s.enqueue(ctx, outbox, events.EmployeeDeleted, Employee{ID: uid})
	})
	if err != nil {
		s.logger.Warn("delete employee failed",
			zap.String("request_id", rid),
			zap.String("employee_id", id),
			zap.Error(err),
		)
		return mapRepositoryError(err, employeeerrors.MsgDeleteFailed)
	}

	s.logger.Info("delete employee success", zap.String("request_id", rid), zap.String("employee_id", id))
	return nil
}

// write runs fn against the plain repository, or inside one transaction
// shared with the outbox when events are enabled.
func (s *service) write(ctx context.Context, fn func(Repository, kafka.OutboxRepository) error) error {
	if s.db == nil || s.outbox == nil {
		return fn(s.repo, nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(s.repo.WithTx(tx), s.outbox.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) enqueue(ctx context.Context, outbox kafka.OutboxRepository, eventType string, empl Employee) error {
	if outbox == nil {
		return nil
	}
	event, err := newOutboxEvent(ctx, eventType, empl, s.now())
	if err != nil {
		return err
	}
	return outbox.Create(ctx, event)
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        empl.ID.String(),
		FirstName: empl.FirstName,
		LastName:  empl.LastName,
		Email:     empl.Email,
		Position:  empl.Position,
		Salary:    empl.Salary,
		CreatedAt: empl.CreatedAt,
		UpdatedAt: empl.UpdatedAt,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
