package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AzhaqCom/theone/internal/game/character"
)

// ErrSheetNotFound is returned when a character sheet lookup yields no rows.
var ErrSheetNotFound = errors.New("character sheet not found")

// ErrSheetNameTaken is returned when creating a sheet with a name already in use.
var ErrSheetNameTaken = errors.New("character sheet name already taken")

// SheetRepository persists character sheets. Attacks and the spellcasting
// block are stored as JSONB; ability scores as plain columns.
type SheetRepository struct {
	db *pgxpool.Pool
}

// NewSheetRepository creates a SheetRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSheetRepository(db *pgxpool.Pool) *SheetRepository {
	return &SheetRepository{db: db}
}

// Create inserts a new sheet and returns it with ID and timestamps set.
//
// Precondition: s.Name must be non-empty; s.MaxHP >= 1.
// Postcondition: Returns the created sheet with ID set, or ErrSheetNameTaken
// on a duplicate name.
func (r *SheetRepository) Create(ctx context.Context, s *character.Sheet) (*character.Sheet, error) {
	attacks, spellcasting, err := marshalBlobs(s)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO character_sheets
			(name, level, max_hp, current_hp, armor_class,
			 strength, dexterity, constitution, intelligence, wisdom, charisma,
			 attacks, spellcasting)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, name, level, max_hp, current_hp, armor_class,
		          strength, dexterity, constitution, intelligence, wisdom, charisma,
		          attacks, spellcasting, created_at, updated_at`,
		s.Name, s.Level, s.MaxHP, s.CurrentHP, s.ArmorClass,
		s.Abilities.Strength, s.Abilities.Dexterity, s.Abilities.Constitution,
		s.Abilities.Intelligence, s.Abilities.Wisdom, s.Abilities.Charisma,
		attacks, spellcasting,
	)
	out, err := scanSheet(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrSheetNameTaken
		}
		return nil, fmt.Errorf("inserting character sheet: %w", err)
	}
	return out, nil
}

// GetByID retrieves a sheet by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Sheet or ErrSheetNotFound.
func (r *SheetRepository) GetByID(ctx context.Context, id int64) (*character.Sheet, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, level, max_hp, current_hp, armor_class,
		       strength, dexterity, constitution, intelligence, wisdom, charisma,
		       attacks, spellcasting, created_at, updated_at
		FROM character_sheets WHERE id = $1`,
		id,
	)
	out, err := scanSheet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("querying character sheet: %w", err)
	}
	return out, nil
}

// GetByName retrieves a sheet by its unique name.
//
// Postcondition: Returns the Sheet or ErrSheetNotFound.
func (r *SheetRepository) GetByName(ctx context.Context, name string) (*character.Sheet, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, level, max_hp, current_hp, armor_class,
		       strength, dexterity, constitution, intelligence, wisdom, charisma,
		       attacks, spellcasting, created_at, updated_at
		FROM character_sheets WHERE name = $1`,
		name,
	)
	out, err := scanSheet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("querying character sheet: %w", err)
	}
	return out, nil
}

// SaveCombatState persists a sheet's HP and remaining spell slots at a combat
// checkpoint. Slots are written only for sheets that have a spellcasting
// block; passing nil slots leaves them untouched. Nothing else on the sheet
// is modified, so mid-combat state never leaks outside the checkpoints.
//
// Precondition: id must be > 0; currentHP in [0, max_hp].
// Postcondition: Returns nil on success, ErrSheetNotFound if no row updated.
func (r *SheetRepository) SaveCombatState(ctx context.Context, id int64, currentHP int, slots map[int]int) error {
	var slotsJSON []byte
	if slots != nil {
		var err error
		slotsJSON, err = json.Marshal(slots)
		if err != nil {
			return fmt.Errorf("encoding spell slots: %w", err)
		}
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE character_sheets
		SET current_hp = $2,
		    spellcasting = CASE
		        WHEN spellcasting IS NULL OR $3::jsonb IS NULL THEN spellcasting
		        ELSE jsonb_set(spellcasting, '{slots}', $3::jsonb)
		    END,
		    updated_at = NOW()
		WHERE id = $1`,
		id, currentHP, slotsJSON,
	)
	if err != nil {
		return fmt.Errorf("saving combat state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSheetNotFound
	}
	return nil
}

func marshalBlobs(s *character.Sheet) (attacks []byte, spellcasting []byte, err error) {
	attacks, err = json.Marshal(s.Attacks)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding attacks: %w", err)
	}
	if s.Spellcasting != nil {
		spellcasting, err = json.Marshal(s.Spellcasting)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding spellcasting: %w", err)
		}
	}
	return attacks, spellcasting, nil
}

func scanSheet(row pgx.Row) (*character.Sheet, error) {
	var (
		s            character.Sheet
		attacks      []byte
		spellcasting []byte
	)
	if err := row.Scan(
		&s.ID, &s.Name, &s.Level, &s.MaxHP, &s.CurrentHP, &s.ArmorClass,
		&s.Abilities.Strength, &s.Abilities.Dexterity, &s.Abilities.Constitution,
		&s.Abilities.Intelligence, &s.Abilities.Wisdom, &s.Abilities.Charisma,
		&attacks, &spellcasting, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(attacks) > 0 {
		if err := json.Unmarshal(attacks, &s.Attacks); err != nil {
			return nil, fmt.Errorf("decoding attacks: %w", err)
		}
	}
	if len(spellcasting) > 0 {
		s.Spellcasting = &character.Spellcasting{}
		if err := json.Unmarshal(spellcasting, s.Spellcasting); err != nil {
			return nil, fmt.Errorf("decoding spellcasting: %w", err)
		}
	}
	return &s, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
