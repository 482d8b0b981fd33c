package audit

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate creates or updates the export_runs table.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ExportRun{})
}

func (r *Repository) Create(ctx context.Context, run *ExportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*ExportRun, error) {
	var run ExportRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindAll lists runs newest first. Supported filters: report, status, user_id, format.
func (r *Repository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]ExportRun, int64, error) {
	var runs []ExportRun
	var total int64

	query := r.db.WithContext(ctx).Model(&ExportRun{})
	for _, col := range []string{"report", "status", "user_id", "format"} {
		if v := filters[col]; v != "" {
			query = query.Where(col+" = ?", v)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
