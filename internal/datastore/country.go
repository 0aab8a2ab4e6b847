package datastore

import (
	"context"

	"flagquiz/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableContinent(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Continent)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Continent)(nil)).Index("index_continent_code").Unique().IfNotExists().Column("code").Exec(ctx)
	return err
}

func CreateTableCountry(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Country)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Country)(nil)).Index("index_country_continent_id").IfNotExists().Column("continent_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Country)(nil)).Index("index_country_name").Unique().IfNotExists().Column("name").Exec(ctx)
	return err
}

// GetActiveCountries returns the candidate pool, optionally narrowed to one
// continent.
func GetActiveCountries(ctx context.Context, db bun.IDB, scope models.ContinentScope) ([]models.Country, error) {
	var countries []models.Country
	query := db.NewSelect().Model(&countries).Where("is_active = ?", true)
	if continentID, ok := scope.ContinentID(); ok {
		query = query.Where("continent_id = ?", continentID)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return countries, nil
}

func GetCountry(ctx context.Context, db bun.IDB, countryID int64) (*models.Country, error) {
	var country models.Country
	err := db.NewSelect().Model(&country).Where("id = ?", countryID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &country, nil
}

func UpsertContinent(ctx context.Context, db bun.IDB, continent *models.Continent) error {
	_, err := db.NewInsert().Model(continent).On("CONFLICT (code) DO UPDATE").Set("name = EXCLUDED.name").Exec(ctx)
	return err
}

func GetContinentByCode(ctx context.Context, db bun.IDB, code string) (*models.Continent, error) {
	var continent models.Continent
	err := db.NewSelect().Model(&continent).Where("code = ?", code).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &continent, nil
}

func UpsertCountry(ctx context.Context, db bun.IDB, country *models.Country) error {
	_, err := db.NewInsert().Model(country).
		On("CONFLICT (name) DO UPDATE").
		Set("continent_id = EXCLUDED.continent_id").
		Set("flag_url = EXCLUDED.flag_url").
		Set("is_active = EXCLUDED.is_active").
		Exec(ctx)
	return err
}
