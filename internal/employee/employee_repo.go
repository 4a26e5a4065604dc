package employee

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateEmail is returned by stores that enforce the email index
// themselves instead of surfacing a driver error.
var ErrDuplicateEmail = errors.New("duplicate key value violates unique constraint \"" + EmailUniqueIndex + "\"")

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	Search(ctx context.Context, q string, limit int) ([]Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Migrate creates or updates the employees table and its indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Employee{})
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// conn routes statements through the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.conn(ctx).
		Order("created_at DESC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) Search(ctx context.Context, q string, limit int) ([]Employee, error) {
	pattern := "%" + escapeLike(q) + "%"

	var empls []Employee
	err := r.conn(ctx).
		Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR position ILIKE ?",
			pattern, pattern, pattern, pattern).
		Limit(limit).
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).
		Where("id = ?", id).
		Take(&empl).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	res := r.conn(ctx).
		Model(empl).
		Select("FirstName", "LastName", "Email", "Position", "Salary", "UpdatedAt").
		Updates(empl)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// escapeLike makes q match literally inside an ILIKE pattern.
func escapeLike(q string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
}
