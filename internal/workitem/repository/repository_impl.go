package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) workitemdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindCategory(ctx context.Context, id snowflake.ID) (*workitemdomain.Category, error) {
	var category workitemdomain.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *repository) FindTask(ctx context.Context, id snowflake.ID) (*workitemdomain.Task, error) {
	var task workitemdomain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *repository) FindDetail(ctx context.Context, id snowflake.ID) (*workitemdomain.Detail, error) {
	var detail workitemdomain.Detail
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&detail).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}
