package occurrence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Get(ctx context.Context, groupId int, id int) (Occurrence, error)
	ListForEvent(ctx context.Context, groupId int, eventId int) ([]Occurrence, error)
	// FindInRange returns occurrences overlapping [from, to), ordered by start and end time.
	FindInRange(ctx context.Context, groupId int, from, to time.Time) ([]Occurrence, error)
	Update(ctx context.Context, groupId int, o Occurrence) (Occurrence, error)
	Delete(ctx context.Context, groupId int, id int) (Occurrence, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const selectOccurrence = `SELECT o.id, o.event_id, o.start_time, o.end_time,
       e.uid, e.title, e.description, t.abbr, t.label
FROM occurrence o
         JOIN event e ON e.id = o.event_id
         JOIN event_type t ON t.id = e.event_type_id`

func scanOccurrence(row pgx.Row) (Occurrence, error) {
	var o Occurrence
	err := row.Scan(&o.Id, &o.EventId, &o.StartTime, &o.EndTime,
		&o.EventUid, &o.Title, &o.Description, &o.EventTypeAbbr, &o.EventTypeLabel)
	return o, err
}

func (r *repositoryImpl) Get(ctx context.Context, groupId int, id int) (Occurrence, error) {
	row := r.db.QueryRow(ctx, selectOccurrence+` WHERE e.group_id = $1 AND o.id = $2`, groupId, id)
	o, err := scanOccurrence(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Occurrence{}, ErrOccurrenceNotFound
		}
		err := fmt.Errorf("could not get occurrence %d: %w", id, err)
		log.Error(err)
		return Occurrence{}, err
	}
	return o, nil
}

func (r *repositoryImpl) ListForEvent(ctx context.Context, groupId int, eventId int) ([]Occurrence, error) {
	query := selectOccurrence + ` WHERE e.group_id = $1 AND o.event_id = $2 ORDER BY o.start_time, o.end_time, o.id`
	return r.list(ctx, query, groupId, eventId)
}

func (r *repositoryImpl) FindInRange(ctx context.Context, groupId int, from, to time.Time) ([]Occurrence, error) {
	query := selectOccurrence + ` WHERE e.group_id = $1 AND o.start_time < $3 AND o.end_time > $2
ORDER BY o.start_time, o.end_time, o.id`
	return r.list(ctx, query, groupId, from, to)
}

func (r *repositoryImpl) list(ctx context.Context, query string, args ...any) ([]Occurrence, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query occurrences: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	occurrences := make([]Occurrence, 0)
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			err := fmt.Errorf("error scanning occurrence: %w", err)
			log.Error(err)
			return nil, err
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

func (r *repositoryImpl) Update(ctx context.Context, groupId int, o Occurrence) (Occurrence, error) {
	query := `UPDATE occurrence o SET start_time = $3, end_time = $4
FROM event e
WHERE e.id = o.event_id AND e.group_id = $1 AND o.id = $2`
	tag, err := r.db.Exec(ctx, query, groupId, o.Id, o.StartTime, o.EndTime)
	if err != nil {
		err := fmt.Errorf("could not update occurrence %d: %w", o.Id, err)
		log.Error(err)
		return Occurrence{}, err
	}
	if tag.RowsAffected() == 0 {
		return Occurrence{}, ErrOccurrenceNotFound
	}
	return r.Get(ctx, groupId, o.Id)
}

func (r *repositoryImpl) Delete(ctx context.Context, groupId int, id int) (Occurrence, error) {
	o, err := r.Get(ctx, groupId, id)
	if err != nil {
		return Occurrence{}, err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM occurrence WHERE id = $1`, id); err != nil {
		err := fmt.Errorf("could not delete occurrence %d: %w", id, err)
		log.Error(err)
		return Occurrence{}, err
	}
	return o, nil
}
