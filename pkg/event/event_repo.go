package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jivetime/jivetime/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type EventRepository interface {
	WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error
	ListEventTypes(ctx context.Context) ([]EventType, error)
	GetEventType(ctx context.Context, id int) (EventType, error)
	StoreEventType(ctx context.Context, eventType EventType) (EventType, error)
	ListEvents(ctx context.Context, groupId int) ([]Event, error)
	GetEvent(ctx context.Context, groupId int, id int) (Event, error)
	StoreEvent(ctx context.Context, groupId int, event Event) (Event, error)
	UpdateEvent(ctx context.Context, groupId int, event Event) (Event, error)
	// DeleteEvent removes the event with its occurrences and notes and returns how many
	// occurrences went with it.
	DeleteEvent(ctx context.Context, groupId int, id int) (int, error)
	// StoreOccurrences inserts the spans for eventId and returns their ids in input order.
	StoreOccurrences(ctx context.Context, eventId int, spans []recurrence.Occurrence) ([]int, error)
	StoreNote(ctx context.Context, note Note) (Note, error)
	ListNotes(ctx context.Context, eventId int) ([]Note, error)
}

type queryer interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type eventRepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewEventRepo(db *pgxpool.Pool) EventRepository {
	return &eventRepositoryImpl{db: db}
}

// getQueryer returns the transaction when inside WithTransaction, the pool otherwise.
func (r *eventRepositoryImpl) getQueryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *eventRepositoryImpl) WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&eventRepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *eventRepositoryImpl) ListEventTypes(ctx context.Context) ([]EventType, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT id, abbr, label FROM event_type ORDER BY label, id`)
	if err != nil {
		err := fmt.Errorf("could not query event types: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	types := make([]EventType, 0)
	for rows.Next() {
		var t EventType
		if err := rows.Scan(&t.Id, &t.Abbr, &t.Label); err != nil {
			return nil, fmt.Errorf("error scanning event type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *eventRepositoryImpl) GetEventType(ctx context.Context, id int) (EventType, error) {
	var t EventType
	err := r.getQueryer().QueryRow(ctx, `SELECT id, abbr, label FROM event_type WHERE id = $1`, id).
		Scan(&t.Id, &t.Abbr, &t.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EventType{}, ErrEventTypeNotFound
		}
		err := fmt.Errorf("could not get event type %d: %w", id, err)
		log.Error(err)
		return EventType{}, err
	}
	return t, nil
}

func (r *eventRepositoryImpl) StoreEventType(ctx context.Context, eventType EventType) (EventType, error) {
	err := r.getQueryer().QueryRow(ctx, `INSERT INTO event_type (abbr, label) VALUES ($1, $2) RETURNING id`,
		eventType.Abbr, eventType.Label).Scan(&eventType.Id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return EventType{}, fmt.Errorf("%w: %s", ErrEventTypeExists, eventType.Abbr)
		}
		err := fmt.Errorf("could not insert event type: %w", err)
		log.Error(err)
		return EventType{}, err
	}
	return eventType, nil
}

const selectEvent = `SELECT e.id, e.uid, e.group_id, e.title, e.description, t.id, t.abbr, t.label
FROM event e
         JOIN event_type t ON t.id = e.event_type_id`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.Id, &e.Uid, &e.GroupId, &e.Title, &e.Description,
		&e.EventType.Id, &e.EventType.Abbr, &e.EventType.Label)
	return e, err
}

func (r *eventRepositoryImpl) ListEvents(ctx context.Context, groupId int) ([]Event, error) {
	rows, err := r.getQueryer().Query(ctx, selectEvent+` WHERE e.group_id = $1 ORDER BY e.title, e.id`, groupId)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepositoryImpl) GetEvent(ctx context.Context, groupId int, id int) (Event, error) {
	e, err := scanEvent(r.getQueryer().QueryRow(ctx, selectEvent+` WHERE e.group_id = $1 AND e.id = $2`, groupId, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not get event %d: %w", id, err)
		log.Error(err)
		return Event{}, err
	}
	return e, nil
}

func (r *eventRepositoryImpl) StoreEvent(ctx context.Context, groupId int, event Event) (Event, error) {
	query := `INSERT INTO event (uid, group_id, event_type_id, title, description)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.getQueryer().QueryRow(ctx, query,
		event.Uid, groupId, event.EventType.Id, event.Title, event.Description,
	).Scan(&event.Id)
	if err != nil {
		err := fmt.Errorf("could not insert event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	event.GroupId = groupId
	return event, nil
}

func (r *eventRepositoryImpl) UpdateEvent(ctx context.Context, groupId int, event Event) (Event, error) {
	query := `UPDATE event SET title = $3, description = $4, event_type_id = $5 WHERE group_id = $1 AND id = $2`
	tag, err := r.getQueryer().Exec(ctx, query, groupId, event.Id, event.Title, event.Description, event.EventType.Id)
	if err != nil {
		err := fmt.Errorf("could not update event %d: %w", event.Id, err)
		log.Error(err)
		return Event{}, err
	}
	if tag.RowsAffected() == 0 {
		return Event{}, ErrEventNotFound
	}
	return r.GetEvent(ctx, groupId, event.Id)
}

func (r *eventRepositoryImpl) DeleteEvent(ctx context.Context, groupId int, id int) (int, error) {
	query := `WITH removed AS (
    DELETE FROM occurrence o USING event e
        WHERE e.id = o.event_id AND e.group_id = $1 AND e.id = $2
        RETURNING o.id)
SELECT count(*) FROM removed`
	var occurrences int
	if err := r.getQueryer().QueryRow(ctx, query, groupId, id).Scan(&occurrences); err != nil {
		err := fmt.Errorf("could not delete occurrences of event %d: %w", id, err)
		log.Error(err)
		return 0, err
	}

	tag, err := r.getQueryer().Exec(ctx, `DELETE FROM event WHERE group_id = $1 AND id = $2`, groupId, id)
	if err != nil {
		err := fmt.Errorf("could not delete event %d: %w", id, err)
		log.Error(err)
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrEventNotFound
	}
	return occurrences, nil
}

func (r *eventRepositoryImpl) StoreOccurrences(ctx context.Context, eventId int, spans []recurrence.Occurrence) ([]int, error) {
	batch := &pgx.Batch{}
	for _, span := range spans {
		batch.Queue(`INSERT INTO occurrence (event_id, start_time, end_time) VALUES ($1, $2, $3) RETURNING id`,
			eventId, span.Start, span.End)
	}

	results := r.getQueryer().SendBatch(ctx, batch)
	defer results.Close()

	ids := make([]int, 0, len(spans))
	for range spans {
		var id int
		if err := results.QueryRow().Scan(&id); err != nil {
			err := fmt.Errorf("could not insert occurrence of event %d: %w", eventId, err)
			log.Error(err)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *eventRepositoryImpl) StoreNote(ctx context.Context, note Note) (Note, error) {
	err := r.getQueryer().QueryRow(ctx, `INSERT INTO note (event_id, text, created_at) VALUES ($1, $2, $3) RETURNING id`,
		note.EventId, note.Text, note.CreatedAt).Scan(&note.Id)
	if err != nil {
		err := fmt.Errorf("could not insert note for event %d: %w", note.EventId, err)
		log.Error(err)
		return Note{}, err
	}
	return note, nil
}

func (r *eventRepositoryImpl) ListNotes(ctx context.Context, eventId int) ([]Note, error) {
	rows, err := r.getQueryer().Query(ctx,
		`SELECT id, event_id, text, created_at FROM note WHERE event_id = $1 ORDER BY created_at, id`, eventId)
	if err != nil {
		err := fmt.Errorf("could not query notes: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.Id, &n.EventId, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
