package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"flagquiz/internal/datastore"
	"flagquiz/internal/models"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandSeedCountries(),
			commandSeedTemplates(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableContinent(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableCountry(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableGameTemplate(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableGame(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableGameQuestion(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserStatistic(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableLeaderboards(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// commandSeedCountries loads the country catalog from a CSV with columns
// name, continent_code, continent_name, flag_url, is_active. Continents are
// created on first sight; reruns upsert instead of duplicating.
func commandSeedCountries() *cli.Command {
	return &cli.Command{
		Name: "seed-countries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "path to the countries csv",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			f, err := os.Open(c.String("file"))
			if err != nil {
				return err
			}
			defer f.Close()

			reader := csv.NewReader(f)
			// header
			if _, err := reader.Read(); err != nil {
				return err
			}

			count := 0
			for {
				record, err := reader.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				if len(record) < 5 {
					return fmt.Errorf("row %d: expected 5 columns, got %d", count+1, len(record))
				}

				continent, err := ensureContinent(ctx, db, record[1], record[2])
				if err != nil {
					return err
				}

				isActive, err := strconv.ParseBool(record[4])
				if err != nil {
					return err
				}

				err = datastore.UpsertCountry(ctx, db, &models.Country{
					Name:        record[0],
					ContinentID: continent.ID,
					FlagURL:     record[3],
					IsActive:    isActive,
				})
				if err != nil {
					return err
				}
				count++
			}

			fmt.Printf("Seeded %d countries\n", count)

			return nil
		},
	}
}

func ensureContinent(ctx context.Context, db *bun.DB, code, name string) (*models.Continent, error) {
	continent, err := datastore.GetContinentByCode(ctx, db, code)
	if err == nil {
		return continent, nil
	}

	continent = &models.Continent{Code: code, Name: name}
	if err := datastore.UpsertContinent(ctx, db, continent); err != nil {
		return nil, err
	}

	return datastore.GetContinentByCode(ctx, db, code)
}

func commandSeedTemplates() *cli.Command {
	return &cli.Command{
		Name: "seed-templates",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			templates := []models.GameTemplate{
				{Name: "Quick Play", NumberOfFlags: 10, TimePerFlag: 30, Difficulty: models.DifficultyMedium, IsActive: true},
				{Name: "Speed Run", NumberOfFlags: 20, TimePerFlag: 10, Difficulty: models.DifficultyEasy, IsActive: true},
				{Name: "World Expert", NumberOfFlags: 30, TimePerFlag: 20, Difficulty: models.DifficultyHard, IsActive: true},
			}

			for i := range templates {
				if err := datastore.InsertTemplate(ctx, db, &templates[i]); err != nil {
					return err
				}
			}

			fmt.Printf("Seeded %d templates\n", len(templates))

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	godotenv.Load()
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
