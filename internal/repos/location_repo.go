package repos

import (
	"github.com/jmoiron/sqlx"

	"cellar/internal/domain"
)

type LocationRepo struct{ db *sqlx.DB }

func NewLocationRepo(db *sqlx.DB) *LocationRepo { return &LocationRepo{db: db} }

func (r *LocationRepo) List() ([]domain.Location, error) {
	var out []domain.Location
	err := r.db.Select(&out, `
	  SELECT id, name, category, description, COALESCE(created_at,'') AS created_at
	  FROM locations
	  ORDER BY name
	`)
	return out, err
}

// ByName matches the name exactly (case-sensitive).
func (r *LocationRepo) ByName(name string) (domain.Location, error) {
	var l domain.Location
	err := r.db.Get(&l, `
	  SELECT id, name, category, description, COALESCE(created_at,'') AS created_at
	  FROM locations WHERE name = ?
	`, name)
	return l, err
}

func (r *LocationRepo) Create(name string, cat domain.Category, description string) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO locations(name, category, description, created_at)
	  VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, name, string(cat), description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
