package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicefight/internal/game/combat"
)

// ErrEncounterNotFound is returned when an encounter lookup yields no results.
var ErrEncounterNotFound = errors.New("encounter not found")

// EncounterRecord is a stored encounter summary.
type EncounterRecord struct {
	combat.Summary
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EncounterRepository persists encounter summaries.
type EncounterRepository struct {
	db *pgxpool.Pool
}

// NewEncounterRepository creates an EncounterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterRepository(db *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{db: db}
}

const encounterColumns = `id, outcome, turns, best_hand, best_score, player_hp,
	enemies_defeated, enemies, created_at, updated_at`

// Save inserts s, or updates the stored row with the same ID.
//
// Precondition: s.ID must be non-empty.
// Postcondition: Returns the stored record with timestamps set.
func (r *EncounterRepository) Save(ctx context.Context, s combat.Summary) (*EncounterRecord, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("saving encounter: id must not be empty")
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO encounters
			(id, outcome, turns, best_hand, best_score, player_hp, enemies_defeated, enemies)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			outcome          = EXCLUDED.outcome,
			turns            = EXCLUDED.turns,
			best_hand        = EXCLUDED.best_hand,
			best_score       = EXCLUDED.best_score,
			player_hp        = EXCLUDED.player_hp,
			enemies_defeated = EXCLUDED.enemies_defeated,
			enemies          = EXCLUDED.enemies,
			updated_at       = NOW()
		RETURNING `+encounterColumns,
		s.ID, s.Outcome.String(), s.Turns, s.BestHand, s.BestScore,
		s.PlayerHP, s.EnemiesDefeated, s.Enemies,
	)
	rec, err := scanEncounter(row)
	if err != nil {
		return nil, fmt.Errorf("saving encounter %q: %w", s.ID, err)
	}
	return rec, nil
}

// Get returns the stored encounter with id.
//
// Postcondition: Returns ErrEncounterNotFound if no row matches.
func (r *EncounterRepository) Get(ctx context.Context, id string) (*EncounterRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+encounterColumns+` FROM encounters WHERE id = $1`, id)
	rec, err := scanEncounter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEncounterNotFound
		}
		return nil, fmt.Errorf("getting encounter %q: %w", id, err)
	}
	return rec, nil
}

// Recent returns at most limit encounters, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EncounterRepository) Recent(ctx context.Context, limit int) ([]*EncounterRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("listing encounters: limit must be > 0, got %d", limit)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+encounterColumns+`
		FROM encounters ORDER BY created_at DESC, id ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	out := make([]*EncounterRecord, 0, limit)
	for rows.Next() {
		rec, err := scanEncounter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning encounter: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating encounters: %w", err)
	}
	return out, nil
}

func scanEncounter(row pgx.Row) (*EncounterRecord, error) {
	var (
		rec     EncounterRecord
		outcome string
	)
	if err := row.Scan(
		&rec.ID, &outcome, &rec.Turns, &rec.BestHand, &rec.BestScore,
		&rec.PlayerHP, &rec.EnemiesDefeated, &rec.Enemies,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o, err := combat.ParseOutcome(outcome)
	if err != nil {
		return nil, err
	}
	rec.Outcome = o
	return &rec, nil
}
