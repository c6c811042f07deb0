package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/specbench/internal/model"
)

// InsertAnimals writes animals into the single animals table, setting the
// kind discriminator from the concrete type.
func (s *Store) InsertAnimals(ctx context.Context, animals []model.Animal) error {
	return s.inTx(ctx, "insert animals", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO animals (id, kind, name, breed, indoor)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range animals {
			var breed sql.NullString
			var indoor sql.NullBool
			switch v := a.(type) {
			case model.Dog:
				breed = sql.NullString{String: v.Breed, Valid: true}
			case *model.Dog:
				breed = sql.NullString{String: v.Breed, Valid: true}
			case model.Cat:
				indoor = sql.NullBool{Bool: v.Indoor, Valid: true}
			case *model.Cat:
				indoor = sql.NullBool{Bool: v.Indoor, Valid: true}
			default:
				return fmt.Errorf("unsupported animal type %T", a)
			}
			if _, err := stmt.ExecContext(ctx, a.AnimalID(), a.Kind(), a.AnimalName(), breed, indoor); err != nil {
				return fmt.Errorf("animal %q: %w", a.AnimalID(), err)
			}
		}
		return nil
	})
}

// LoadAnimals returns every animal as its concrete Dog or Cat value,
// ordered by id.
func (s *Store) LoadAnimals(ctx context.Context) ([]model.Animal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, breed, indoor
		FROM animals
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query animals: %w", err)
	}
	defer rows.Close()

	animals := []model.Animal{}
	for rows.Next() {
		var id, kind, name string
		var breed sql.NullString
		var indoor sql.NullBool
		if err := rows.Scan(&id, &kind, &name, &breed, &indoor); err != nil {
			return nil, fmt.Errorf("scan animal: %w", err)
		}
		switch kind {
		case model.Dog{}.Kind():
			animals = append(animals, model.Dog{ID: id, Name: name, Breed: breed.String})
		case model.Cat{}.Kind():
			animals = append(animals, model.Cat{ID: id, Name: name, Indoor: indoor.Bool})
		default:
			return nil, fmt.Errorf("animal %q: unknown kind %q", id, kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate animals: %w", err)
	}
	return animals, nil
}
