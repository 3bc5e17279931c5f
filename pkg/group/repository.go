package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, g Group) (Group, error)
	Get(ctx context.Context, id int) (Group, error)
	List(ctx context.Context) ([]Group, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, g Group) (Group, error) {
	query := `INSERT INTO event_group (name, timezone) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, g.Name, g.Timezone).Scan(&g.Id, &g.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not insert event group: %w", err)
		log.Error(err)
		return Group{}, err
	}
	return g, nil
}

func (r *repositoryImpl) Get(ctx context.Context, id int) (Group, error) {
	query := `SELECT id, name, timezone, created_at FROM event_group WHERE id = $1`
	var g Group
	err := r.db.QueryRow(ctx, query, id).Scan(&g.Id, &g.Name, &g.Timezone, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, ErrGroupNotFound
		}
		err := fmt.Errorf("could not get event group %d: %w", id, err)
		log.Error(err)
		return Group{}, err
	}
	return g, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]Group, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, timezone, created_at FROM event_group ORDER BY name, id`)
	if err != nil {
		err := fmt.Errorf("could not query event groups: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	groups := make([]Group, 0)
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.Id, &g.Name, &g.Timezone, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning event group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
