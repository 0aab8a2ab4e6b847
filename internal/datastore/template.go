package datastore

import (
	"context"

	"flagquiz/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGameTemplate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GameTemplate)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GameTemplate)(nil)).Index("index_game_template_name").Unique().IfNotExists().Column("name").Exec(ctx)
	return err
}

func GetActiveTemplate(ctx context.Context, db bun.IDB, templateID int64) (*models.GameTemplate, error) {
	var template models.GameTemplate
	err := db.NewSelect().Model(&template).Where("id = ?", templateID).Where("is_active = ?", true).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func GetActiveTemplates(ctx context.Context, db bun.IDB) ([]models.GameTemplate, error) {
	var templates []models.GameTemplate
	err := db.NewSelect().Model(&templates).Where("is_active = ?", true).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func InsertTemplate(ctx context.Context, db bun.IDB, template *models.GameTemplate) error {
	_, err := db.NewInsert().Model(template).Exec(ctx)
	return err
}
