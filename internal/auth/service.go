package auth

import (
	"context"
	"fmt"

	"github.com/udisondev/tileworld/internal/constants"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/store/postgres"
	"github.com/udisondev/tileworld/internal/worldmap"
)

// PlayerRepository is the subset of postgres.PlayerRepository the
// service needs, injected so Service has no direct dependency on pgx
// (the teacher's login flow takes the same shape: a narrow repository
// interface rather than a concrete *sql.DB/*pgxpool.Pool).
type PlayerRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.Player, error)
	Create(ctx context.Context, p *model.Player) error
}

// Service implements registration and login: verifying credentials
// against persisted state and minting a bearer token for the socket
// upgrade that follows.
type Service struct {
	players   PlayerRepository
	tokens    *TokenStore
	spawnMap  string
	spawnMaps *worldmap.Registry
	startHP   int32
}

// NewService creates a Service. spawnMapID names the map a freshly
// registered player starts on; its first registered spawn point (or
// the map origin if it declares none) becomes the new player's
// location.
func NewService(players PlayerRepository, tokens *TokenStore, maps *worldmap.Registry, spawnMapID string, startHP int32) *Service {
	if startHP <= 0 {
		startHP = 100
	}
	return &Service{players: players, tokens: tokens, spawnMap: spawnMapID, spawnMaps: maps, startHP: startHP}
}

// Register creates a brand-new player with the given credentials and
// returns a bearer token redeemable at the socket upgrade.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if len(username) < 2 || len(username) > 32 {
		return "", fmt.Errorf("username must be between 2 and 32 characters")
	}
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}

	if existing, err := s.players.GetByUsername(ctx, username); err != nil {
		return "", fmt.Errorf("checking existing username: %w", err)
	} else if existing != nil {
		return "", fmt.Errorf("username %q already taken", username)
	}

	hash, err := postgres.HashPassword(password)
	if err != nil {
		return "", err
	}

	loc := s.spawnLocation()
	player, err := model.NewPlayer(constants.NewObjectID(), username, hash, loc, s.startHP)
	if err != nil {
		return "", fmt.Errorf("constructing player: %w", err)
	}
	if err := s.players.Create(ctx, player); err != nil {
		return "", fmt.Errorf("persisting player: %w", err)
	}

	return s.tokens.Issue(player.ObjectID())
}

// Login verifies credentials and returns a bearer token redeemable at
// the socket upgrade.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	player, err := s.players.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("looking up username: %w", err)
	}
	if player == nil || !postgres.VerifyPassword(player.PasswordHash(), password) {
		return "", fmt.Errorf("invalid username or password")
	}
	if player.IsBanned() {
		return "", fmt.Errorf("account banned")
	}

	return s.tokens.Issue(player.ObjectID())
}

func (s *Service) spawnLocation() model.Location {
	if s.spawnMaps != nil {
		if tm, ok := s.spawnMaps.Get(s.spawnMap); ok {
			if points := tm.SpawnPoints(); len(points) > 0 {
				return model.NewLocation(points[0].X, points[0].Y, s.spawnMap, model.FacingSouth)
			}
		}
	}
	return model.NewLocation(0, 0, s.spawnMap, model.FacingSouth)
}
