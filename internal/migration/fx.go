package migration

import (
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	workitemdomain "github.com/cogentahq/timebill/internal/workitem/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		// Versioned SQL migrations target postgres; the sqlite dev store
		// derives its schema straight from the models.
		if conn.Dialector.Name() == "sqlite" {
			return conn.AutoMigrate(
				&clientdomain.Client{},
				&workitemdomain.Category{},
				&workitemdomain.Task{},
				&workitemdomain.Detail{},
				&timeentrydomain.TimeEntry{},
				&sequencedomain.InvoiceCounter{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		return RunMigrations(sqlDB)
	}),
)
