package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// Open connects to the event catalog database and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations applies the embedded schema files in name order. Every file
// is idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := migrationFS.ReadDir("sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFS.ReadFile("sql/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}

// Store reads events, their assigned measures and participants, and the
// municipality catalog.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store backed by pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// Event returns the event with the given id.
func (s *Store) Event(ctx context.Context, id int) (domain.Event, error) {
	e := domain.Event{ID: id}
	err := s.pool.QueryRow(ctx, `
        SELECT nom, COALESCE(poblacio, ''), COALESCE(data_esde, ''),
               COALESCE(hora_inici, ''), COALESCE(hora_fi, '')
        FROM esdeveniments
        WHERE id = $1
    `, id).Scan(&e.Name, &e.Location, &e.Date, &e.StartHour, &e.EndHour)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("%w: %d", domain.ErrEventNotFound, id)
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// AssignedMeasures returns the measures linked to an event in catalog id
// order. Rows with an unknown condition or a missing or out-of-range level are skipped.
func (s *Store) AssignedMeasures(ctx context.Context, eventID int) ([]domain.Measure, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT m.id, COALESCE(m.condicio, ''), m.valor, COALESCE(m.accio, '')
        FROM mesures m
        JOIN mesures_esdeveniments me ON me.id_mesura = m.id
        WHERE me.id_esdeveniment = $1
        ORDER BY m.id
    `, eventID)
	if err != nil {
		return nil, fmt.Errorf("query measures: %w", err)
	}
	defer rows.Close()

	var measures []domain.Measure
	for rows.Next() {
		var (
			id        int
			condition string
			level     *float64
			action    string
		)
		if err := rows.Scan(&id, &condition, &level, &action); err != nil {
			return nil, fmt.Errorf("scan measure: %w", err)
		}
		m, ok := toMeasure(condition, level, action)
		if !ok {
			s.logger.Warn("skipping measure", "measure_id", id, "event_id", eventID, "condition", condition)
			continue
		}
		measures = append(measures, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measures: %w", err)
	}
	return measures, nil
}

// AssignedUsers returns the users assigned to an event in user id order.
func (s *Store) AssignedUsers(ctx context.Context, eventID int) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT u.id, u.nom_usuari
        FROM usuaris u
        JOIN esdeveniments_usuaris eu ON eu.id_usuari = u.id
        WHERE eu.id_esdeveniment = $1
        ORDER BY u.id
    `, eventID)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		var u domain.User
		err := row.Scan(&u.ID, &u.DisplayName)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}

// CodeForLocation returns the AEMET municipality code for a location name.
// The name must match exactly.
func (s *Store) CodeForLocation(ctx context.Context, name string) (string, error) {
	var code string
	err := s.pool.QueryRow(ctx, `
        SELECT codi FROM municipi WHERE municipi = $1 ORDER BY codi LIMIT 1
    `, name).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", domain.ErrLocationNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("query municipality: %w", err)
	}
	return code, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// toMeasure converts a catalog row. The stored level is truncated to an
// integer risk level and must fall in 1..5.
func toMeasure(condition string, level *float64, action string) (domain.Measure, bool) {
	c, ok := domain.ParseCondition(condition)
	if !ok || level == nil {
		return domain.Measure{}, false
	}
	l := domain.RiskLevel(int(*level))
	if !l.Applicable() {
		return domain.Measure{}, false
	}
	return domain.Measure{
		Condition: c,
		RiskLevel: l,
		Action:    action,
	}, true
}
