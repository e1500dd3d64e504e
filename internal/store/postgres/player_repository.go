package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/visual"
)

// PlayerRepository persists player identity, progression, appearance,
// and per-skill XP. Runtime position/HP are mirrored here only when the
// player disconnects; the hot store is authoritative while a player is
// online.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a brand-new player row, generated passwordHash already
// hashed by the caller via HashPassword.
func (r *PlayerRepository) Create(ctx context.Context, p *model.Player) error {
	loc := p.Location()
	appearance, err := json.Marshal(p.Appearance())
	if err != nil {
		return fmt.Errorf("marshaling appearance: %w", err)
	}
	visuals, err := json.Marshal(p.EquippedVisuals())
	if err != nil {
		return fmt.Errorf("marshaling equipped visuals: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var createdAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO players (
			player_id, username, password_hash, role, banned, timeout_until,
			map_id, x, y, facing, current_hp, max_hp, level
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`,
		p.ObjectID(), p.Username(), p.PasswordHash(), string(p.Role()), p.IsBanned(), nullableTime(p.TimeoutUntil()),
		loc.MapID, loc.X, loc.Y, loc.Facing.String(), p.CurrentHP(), p.MaxHP(), p.Level(),
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("inserting player %q: %w", p.Username(), err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO player_appearance (player_id, appearance, equipped_visuals) VALUES ($1, $2, $3)`,
		p.ObjectID(), appearance, visuals,
	)
	if err != nil {
		return fmt.Errorf("inserting appearance for player %q: %w", p.Username(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing new player %q: %w", p.Username(), err)
	}
	p.SetCreatedAt(createdAt)
	return nil
}

// GetByUsername loads a player by username (case-sensitive; callers
// wanting case-insensitive lookup should lower(username) themselves).
// Returns nil, nil if not found.
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	return r.load(ctx, `WHERE username = $1 AND deleted_at IS NULL`, username)
}

// GetByID loads a player by object ID. Returns nil, nil if not found.
func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (*model.Player, error) {
	return r.load(ctx, `WHERE player_id = $1 AND deleted_at IS NULL`, playerID)
}

func (r *PlayerRepository) load(ctx context.Context, whereClause string, arg any) (*model.Player, error) {
	query := `
		SELECT p.player_id, p.username, p.password_hash, p.role, p.banned, p.timeout_until,
		       p.map_id, p.x, p.y, p.facing, p.current_hp, p.max_hp, p.level, p.created_at,
		       a.appearance, a.equipped_visuals
		FROM players p
		LEFT JOIN player_appearance a ON a.player_id = p.player_id
		` + whereClause

	var playerID, username, passwordHash, role, mapID, facingStr string
	var banned bool
	var timeoutUntil *time.Time
	var x, y, currentHP, maxHP, level int32
	var createdAt time.Time
	var appearanceRaw, visualsRaw []byte

	err := r.db.QueryRow(ctx, query, arg).Scan(
		&playerID, &username, &passwordHash, &role, &banned, &timeoutUntil,
		&mapID, &x, &y, &facingStr, &currentHP, &maxHP, &level, &createdAt,
		&appearanceRaw, &visualsRaw,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}

	facing, _ := model.ParseFacing(facingStr)
	loc := model.NewLocation(x, y, mapID, facing)

	p, err := model.NewPlayer(playerID, username, passwordHash, loc, maxHP)
	if err != nil {
		return nil, fmt.Errorf("reconstructing player model: %w", err)
	}
	p.SetRole(model.Role(role))
	p.SetBanned(banned)
	if timeoutUntil != nil {
		p.SetTimeoutUntil(*timeoutUntil)
	}
	p.SetCurrentHP(currentHP)
	p.SetLevel(level)
	p.SetCreatedAt(createdAt)

	if len(appearanceRaw) > 0 {
		var appearance visual.Appearance
		if err := json.Unmarshal(appearanceRaw, &appearance); err != nil {
			return nil, fmt.Errorf("unmarshaling appearance: %w", err)
		}
		p.SetAppearance(appearance)
	}
	if len(visualsRaw) > 0 {
		var visuals visual.EquippedVisuals
		if err := json.Unmarshal(visualsRaw, &visuals); err != nil {
			return nil, fmt.Errorf("unmarshaling equipped visuals: %w", err)
		}
		p.SetEquippedVisuals(visuals)
	}

	skillXP, err := r.loadSkillXP(ctx, playerID)
	if err != nil {
		return nil, err
	}
	for skill, xp := range skillXP {
		p.AddSkillXP(skill, xp)
	}

	return p, nil
}

func (r *PlayerRepository) loadSkillXP(ctx context.Context, playerID string) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT skill, xp FROM player_skill_xp WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying skill xp for %q: %w", playerID, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var skill string
		var xp int64
		if err := rows.Scan(&skill, &xp); err != nil {
			return nil, fmt.Errorf("scanning skill xp row: %w", err)
		}
		out[skill] = xp
	}
	return out, rows.Err()
}

// SaveCheckpoint persists position, vitals, level, appearance, and
// skill XP for a player. Called from the disconnect path; there is no
// periodic checkpoint and it never runs on every tick.
func (r *PlayerRepository) SaveCheckpoint(ctx context.Context, p *model.Player) error {
	loc := p.Location()
	appearance, err := json.Marshal(p.Appearance())
	if err != nil {
		return fmt.Errorf("marshaling appearance: %w", err)
	}
	visuals, err := json.Marshal(p.EquippedVisuals())
	if err != nil {
		return fmt.Errorf("marshaling equipped visuals: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE players SET map_id = $2, x = $3, y = $4, facing = $5,
		 current_hp = $6, max_hp = $7, level = $8
		 WHERE player_id = $1`,
		p.ObjectID(), loc.MapID, loc.X, loc.Y, loc.Facing.String(), p.CurrentHP(), p.MaxHP(), p.Level(),
	)
	if err != nil {
		return fmt.Errorf("checkpointing player %q: %w", p.ObjectID(), err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO player_appearance (player_id, appearance, equipped_visuals)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (player_id) DO UPDATE SET appearance = $2, equipped_visuals = $3`,
		p.ObjectID(), appearance, visuals,
	)
	if err != nil {
		return fmt.Errorf("checkpointing appearance for %q: %w", p.ObjectID(), err)
	}

	for skill, xp := range p.AllSkillXP() {
		_, err = tx.Exec(ctx,
			`INSERT INTO player_skill_xp (player_id, skill, xp) VALUES ($1, $2, $3)
			 ON CONFLICT (player_id, skill) DO UPDATE SET xp = $3`,
			p.ObjectID(), skill, xp,
		)
		if err != nil {
			return fmt.Errorf("checkpointing skill xp %q for %q: %w", skill, p.ObjectID(), err)
		}
	}

	return tx.Commit(ctx)
}

// SetBanned persists a moderation ban/unban decision immediately,
// independent of the checkpoint cycle.
func (r *PlayerRepository) SetBanned(ctx context.Context, playerID string, banned bool) error {
	_, err := r.db.Exec(ctx, `UPDATE players SET banned = $2 WHERE player_id = $1`, playerID, banned)
	if err != nil {
		return fmt.Errorf("setting banned=%v for %q: %w", banned, playerID, err)
	}
	return nil
}

// SetTimeout persists a moderation timeout decision immediately.
func (r *PlayerRepository) SetTimeout(ctx context.Context, playerID string, until time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE players SET timeout_until = $2 WHERE player_id = $1`, playerID, nullableTime(until))
	if err != nil {
		return fmt.Errorf("setting timeout for %q: %w", playerID, err)
	}
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
