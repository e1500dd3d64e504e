package model

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/tileworld/internal/visual"
)

// Role is the player's permission tier, checked by admin/moderation
// command handlers (spec §3).
type Role string

const (
	RolePlayer    Role = "player"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Player — авторизованный игрок: Character (позиция, HP) плюс identity,
// внешний вид, инвентарь/экипировка и очки умений (spec §3).
type Player struct {
	*Character // embedded: ObjectID, Name, Location, HP

	username     string
	passwordHash string
	role         Role
	banned       bool
	timeoutUntil time.Time
	createdAt    time.Time

	playerMu sync.RWMutex // guards everything below

	appearance      visual.Appearance
	equippedVisuals visual.EquippedVisuals

	inventory *Inventory
	equipment *Equipment

	skillXP map[string]int64 // skill name → accumulated XP

	target *WorldObject

	autoRetaliate bool

	lastMoveAt     time.Time
	lastAttackTime atomic.Int64 // UnixNano, 0 = never attacked
}

// NewPlayer создаёт нового игрока с валидацией.
func NewPlayer(objectID, username, passwordHash string, loc Location, maxHP int32) (*Player, error) {
	if len(username) < 2 {
		return nil, fmt.Errorf("username must be at least 2 characters, got %q", username)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("passwordHash cannot be empty")
	}

	p := &Player{
		Character:       NewCharacter(objectID, username, loc, 1, maxHP),
		username:        username,
		passwordHash:    passwordHash,
		role:            RolePlayer,
		createdAt:       time.Now(),
		appearance:      visual.DefaultAppearance(),
		inventory:       NewInventory(objectID),
		equipment:       NewEquipment(objectID),
		skillXP:         make(map[string]int64),
		autoRetaliate:   true,
	}

	return p, nil
}

// Username returns the player's login name (immutable).
func (p *Player) Username() string {
	return p.username
}

// PasswordHash returns the stored password hash (immutable).
func (p *Player) PasswordHash() string {
	return p.passwordHash
}

// Role returns the player's permission tier.
func (p *Player) Role() Role {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.role
}

// SetRole updates the player's permission tier.
func (p *Player) SetRole(role Role) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.role = role
}

// IsAdmin reports whether the player's role grants admin commands.
func (p *Player) IsAdmin() bool {
	return p.Role() == RoleAdmin
}

// IsBanned reports whether the account is banned.
func (p *Player) IsBanned() bool {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.banned
}

// SetBanned updates the banned flag.
func (p *Player) SetBanned(banned bool) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.banned = banned
}

// TimeoutUntil returns the time until which the account is suspended.
// The zero time means no active timeout.
func (p *Player) TimeoutUntil() time.Time {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.timeoutUntil
}

// SetTimeoutUntil updates the suspension deadline.
func (p *Player) SetTimeoutUntil(t time.Time) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.timeoutUntil = t
}

// IsTimedOut reports whether the account is currently suspended.
func (p *Player) IsTimedOut() bool {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.timeoutUntil.After(time.Now())
}

// CreatedAt returns the account's registration time.
func (p *Player) CreatedAt() time.Time {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.createdAt
}

// SetCreatedAt sets the registration time (used when loading from the DB).
func (p *Player) SetCreatedAt(t time.Time) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.createdAt = t
}

// Appearance returns a copy of the player's current appearance.
func (p *Player) Appearance() visual.Appearance {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.appearance
}

// SetAppearance replaces the player's appearance wholesale; callers are
// expected to invalidate the visual fingerprint afterward.
func (p *Player) SetAppearance(a visual.Appearance) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.appearance = a
}

// EquippedVisuals returns a copy of the player's equipped-visuals overlay.
func (p *Player) EquippedVisuals() visual.EquippedVisuals {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.equippedVisuals
}

// SetEquippedVisuals replaces the equipped-visuals overlay, recomputed
// whenever the equipment set changes.
func (p *Player) SetEquippedVisuals(v visual.EquippedVisuals) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.equippedVisuals = v
}

// VisualState returns the combined (appearance, equippedVisuals) value
// used to compute the player's visual fingerprint.
func (p *Player) VisualState() visual.State {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return visual.State{Appearance: p.appearance, Equipment: p.equippedVisuals}
}

// Inventory returns the player's inventory.
func (p *Player) Inventory() *Inventory {
	return p.inventory
}

// Equipment returns the player's equipment.
func (p *Player) Equipment() *Equipment {
	return p.equipment
}

// SetInventory replaces the player's inventory, used once at login to
// attach the durable inventory loaded from the database in place of
// the empty one NewPlayer allocates.
func (p *Player) SetInventory(inv *Inventory) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.inventory = inv
}

// SetEquipment replaces the player's equipment, used once at login
// alongside SetInventory.
func (p *Player) SetEquipment(eq *Equipment) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.equipment = eq
}

// Target returns the player's currently selected target (nil if none).
func (p *Player) Target() *WorldObject {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.target
}

// SetTarget sets the player's currently selected target.
func (p *Player) SetTarget(target *WorldObject) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.target = target
}

// ClearTarget clears the player's currently selected target.
func (p *Player) ClearTarget() {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.target = nil
}

// HasTarget reports whether the player currently has a target selected.
func (p *Player) HasTarget() bool {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.target != nil
}

// SkillXP returns the accumulated XP for the named combat skill.
func (p *Player) SkillXP(skill string) int64 {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.skillXP[skill]
}

// AddSkillXP awards xp to the named skill, returning the new total.
func (p *Player) AddSkillXP(skill string, xp int64) int64 {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.skillXP[skill] += xp
	return p.skillXP[skill]
}

// MaxSkillLevel is the highest level a skill can reach (spec's skill
// catalogue caps every skill at 99, matching the character level cap).
const MaxSkillLevel = 99

// xpPerSkillLevel is the flat XP cost of each skill level. A simple
// linear curve rather than the original skill catalogue's per-skill XP
// multiplier, which isn't carried over by this simplification.
const xpPerSkillLevel = 1000

// SkillLevel derives the named skill's level from its accumulated XP,
// used to gate equip requirements (spec §3: "equipping requires
// matching equipment_slot, required skill/level").
func (p *Player) SkillLevel(skill string) int32 {
	xp := p.SkillXP(skill)
	level := int32(1 + xp/xpPerSkillLevel)
	if level > MaxSkillLevel {
		return MaxSkillLevel
	}
	return level
}

// AllSkillXP returns a copy of every skill's accumulated XP.
func (p *Player) AllSkillXP() map[string]int64 {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	out := make(map[string]int64, len(p.skillXP))
	for k, v := range p.skillXP {
		out[k] = v
	}
	return out
}

// AutoRetaliate reports whether the player auto-acquires attackers as
// targets when idle (spec §4.6; toggled by CMD_TOGGLE_AUTO_RETALIATE).
func (p *Player) AutoRetaliate() bool {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.autoRetaliate
}

// SetAutoRetaliate toggles auto-retaliation.
func (p *Player) SetAutoRetaliate(v bool) {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.autoRetaliate = v
}

// LastMoveAt returns the time of the player's last accepted move.
func (p *Player) LastMoveAt() time.Time {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return p.lastMoveAt
}

// CanMove reports whether cooldown has elapsed since the last accepted
// move (spec §4.3: rate-limited at one move per configured cooldown,
// validated server-side even though the client self-throttles).
func (p *Player) CanMove(cooldown time.Duration) bool {
	p.playerMu.RLock()
	defer p.playerMu.RUnlock()
	return time.Since(p.lastMoveAt) >= cooldown
}

// MarkMoved records the current time as the player's last accepted move.
func (p *Player) MarkMoved() {
	p.playerMu.Lock()
	defer p.playerMu.Unlock()
	p.lastMoveAt = time.Now()
}

// LastAttackTime returns the UnixNano timestamp of the player's last
// attack, or 0 if the player has not attacked yet.
func (p *Player) LastAttackTime() int64 {
	return p.lastAttackTime.Load()
}

// MarkAttack records the current time as the player's last attack.
func (p *Player) MarkAttack() {
	p.lastAttackTime.Store(time.Now().UnixNano())
}

// CanAttack reports whether cooldown has elapsed since the player's last
// attack, mirroring CanMove for CMD_ATTACK's server-side rate limit
// (spec §4.6's attack_interval cooldown).
func (p *Player) CanAttack(cooldown time.Duration) bool {
	last := p.lastAttackTime.Load()
	if last == 0 {
		return true
	}
	return time.Since(time.Unix(0, last)) >= cooldown
}
