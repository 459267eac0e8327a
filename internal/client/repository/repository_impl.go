package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	"github.com/cogentahq/timebill/pkg/db/pagination"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) clientdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*clientdomain.Client, error) {
	var client clientdomain.Client
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *repository) List(ctx context.Context, page pagination.Pagination) ([]clientdomain.Client, error) {
	var clients []clientdomain.Client
	err := page.Apply(r.db.WithContext(ctx).Model(&clientdomain.Client{})).
		Order("company_name ASC, contact_name ASC, id ASC").
		Find(&clients).Error
	return clients, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&clientdomain.Client{}).Count(&count).Error
	return count, err
}
