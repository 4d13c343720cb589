package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateIdentifier = errors.New("patient identifier already booked")
)

// BookingRecord is a persisted scheduling verdict. Identifier is unique
// per patient at the store level; the orchestrator's duplicate check is
// advisory and the constraint is the authority.
type BookingRecord struct {
	ID            uuid.UUID
	PatientName   string
	Identifier    string
	Facility      string
	ScheduledDate time.Time
	Protocol      string
	GASource      string
	CreatedAt     time.Time
}

// RecordStore is the persistence collaborator. The rules core never sees
// it; only handlers and the importer do, snapshot-then-verify: occupancy
// is read as a snapshot, the date search runs over it, and Create relies
// on the unique constraint to surface races as duplicates.
type RecordStore interface {
	// FindByIdentifier returns ErrNotFound when no booking exists.
	FindByIdentifier(ctx context.Context, identifier string) (*BookingRecord, error)
	// CountBookings returns the bookings at a facility on one calendar day.
	CountBookings(ctx context.Context, facility string, date time.Time) (int, error)
	// Occupancy builds a per-day booked-count snapshot for one facility
	// over [from, to] inclusive.
	Occupancy(ctx context.Context, facility string, from, to time.Time) (OccupancySnapshot, error)
	// Create persists a booking, returning ErrDuplicateIdentifier on
	// identifier conflict.
	Create(ctx context.Context, record *BookingRecord) error
}

/********************************
 ******* Postgres (pgx) *********
 ********************************/

type pgStore struct {
	pool *pgxpool.Pool
}

func newPGStore(ctx context.Context, databaseURL string) (*pgStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	// Fail fast on bad credentials or an unreachable host
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Close() {
	s.pool.Close()
}

func (s *pgStore) FindByIdentifier(ctx context.Context, identifier string) (*BookingRecord, error) {
	const q = `
		SELECT id, patient_name, identifier, facility, scheduled_date, protocol, ga_source, created_at
		FROM bookings
		WHERE identifier = $1`

	var r BookingRecord
	err := s.pool.QueryRow(ctx, q, identifier).Scan(
		&r.ID, &r.PatientName, &r.Identifier, &r.Facility,
		&r.ScheduledDate, &r.Protocol, &r.GASource, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying booking by identifier: %w", err)
	}

	return &r, nil
}

func (s *pgStore) CountBookings(ctx context.Context, facility string, date time.Time) (int, error) {
	const q = `
		SELECT count(*)
		FROM bookings
		WHERE facility = $1 AND scheduled_date = $2`

	var count int
	if err := s.pool.QueryRow(ctx, q, facility, toDay(date)).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting bookings: %w", err)
	}

	return count, nil
}

func (s *pgStore) Occupancy(ctx context.Context, facility string, from, to time.Time) (OccupancySnapshot, error) {
	const q = `
		SELECT scheduled_date, count(*)
		FROM bookings
		WHERE facility = $1 AND scheduled_date BETWEEN $2 AND $3
		GROUP BY scheduled_date`

	rows, err := s.pool.Query(ctx, q, facility, toDay(from), toDay(to))
	if err != nil {
		return nil, fmt.Errorf("error querying occupancy: %w", err)
	}
	defer rows.Close()

	snapshot := OccupancySnapshot{}
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("error scanning occupancy row: %w", err)
		}
		snapshot[dateKey(day)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading occupancy rows: %w", err)
	}

	return snapshot, nil
}

func (s *pgStore) Create(ctx context.Context, record *BookingRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO bookings (id, patient_name, identifier, facility, scheduled_date, protocol, ga_source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, q,
		record.ID, record.PatientName, record.Identifier, record.Facility,
		toDay(record.ScheduledDate), record.Protocol, record.GASource, record.CreatedAt)
	if err != nil {
		// Unique violation on the identifier constraint means a concurrent
		// request won the race
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateIdentifier
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}

	return nil
}

/********************************
 ********* In-memory ************
 ********************************/

// memoryStore backs the service when DATABASE_URL is unset. Same
// semantics as the Postgres store, including the uniqueness constraint.
type memoryStore struct {
	mu           sync.Mutex
	byIdentifier map[string]*BookingRecord
	byDay        map[string]map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byIdentifier: map[string]*BookingRecord{},
		byDay:        map[string]map[string]int{},
	}
}

func (s *memoryStore) FindByIdentifier(_ context.Context, identifier string) (*BookingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byIdentifier[identifier]
	if !ok {
		return nil, ErrNotFound
	}

	clone := *record
	return &clone, nil
}

func (s *memoryStore) CountBookings(_ context.Context, facility string, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.byDay[facility][dateKey(date)], nil
}

func (s *memoryStore) Occupancy(_ context.Context, facility string, from, to time.Time) (OccupancySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := OccupancySnapshot{}
	for day := toDay(from); !day.After(toDay(to)); day = day.AddDate(0, 0, 1) {
		if count := s.byDay[facility][dateKey(day)]; count > 0 {
			snapshot[dateKey(day)] = count
		}
	}

	return snapshot, nil
}

func (s *memoryStore) Create(_ context.Context, record *BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byIdentifier[record.Identifier]; exists {
		return ErrDuplicateIdentifier
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	stored := *record
	s.byIdentifier[record.Identifier] = &stored

	day := dateKey(record.ScheduledDate)
	if s.byDay[record.Facility] == nil {
		s.byDay[record.Facility] = map[string]int{}
	}
	s.byDay[record.Facility][day]++

	return nil
}
