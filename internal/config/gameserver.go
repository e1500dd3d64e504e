// Package config loads the typed YAML configuration for the game server
// process: network binding, the two persistence tiers, tick cadence,
// AI tuning, and chat limits.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters for the durable
// record store (accounts, items, templates, inventory, equipment).
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns          int32  `yaml:"max_conns"`
	MinConns          int32  `yaml:"min_conns"`
	MaxConnLifetime   string `yaml:"max_conn_lifetime"`
	MaxConnIdleTime   string `yaml:"max_conn_idle_time"`
	HealthCheckPeriod string `yaml:"health_check_period"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if d.MaxConnLifetime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_lifetime=%s", d.MaxConnLifetime))
	}
	if d.MaxConnIdleTime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_idle_time=%s", d.MaxConnIdleTime))
	}
	if d.HealthCheckPeriod != "" {
		params = append(params, fmt.Sprintf("pool_health_check_period=%s", d.HealthCheckPeriod))
	}

	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// HotStoreConfig holds connection parameters for the low-latency
// key-value tier holding runtime state (positions, HP, entity instances,
// respawn queue, online set, visibility caches).
type HotStoreConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// EntityTTL is the TTL refreshed on every write to a hot entity key.
	// Long enough that a quiescent session is never accidentally evicted.
	EntityTTL time.Duration `yaml:"entity_ttl"`
}

// TickConfig controls the fixed-rate scheduler cadences.
type TickConfig struct {
	HotHz  int `yaml:"hot_hz"`  // default 20
	WarmHz int `yaml:"warm_hz"` // default 5
}

// AIConfig tunes the entity state machine.
type AIConfig struct {
	Enabled                bool          `yaml:"enabled"`
	WanderInterval         time.Duration `yaml:"wander_interval"`
	ChaseInterval          time.Duration `yaml:"chase_interval"`
	AttackInterval         time.Duration `yaml:"attack_interval"`
	IdleMin                time.Duration `yaml:"idle_min"`
	IdleMax                time.Duration `yaml:"idle_max"`
	LOSTimeout             time.Duration `yaml:"los_timeout"`
	MaxPathfindingDistance int           `yaml:"max_pathfinding_distance"`
}

// ChatConfig bounds and routes chat by channel.
type ChatConfig struct {
	GlobalEnabled          bool     `yaml:"global_enabled"`
	GlobalAllowedRoles     []string `yaml:"global_allowed_roles"`
	MaxMessageLengthLocal  int      `yaml:"max_message_length_local"`
	MaxMessageLengthGlobal int      `yaml:"max_message_length_global"`
	MaxMessageLengthDM     int      `yaml:"max_message_length_dm"`
	LocalChunkRadius       int      `yaml:"local_chunk_radius"`
}

// GameConfig holds tile/chunk/movement tuning shared with the client.
type GameConfig struct {
	TileSize     int           `yaml:"tile_size"` // client-only, carried for parity
	ChunkSize    int           `yaml:"chunk_size"`
	MoveCooldown time.Duration `yaml:"move_cooldown"`
	MoveDuration time.Duration `yaml:"move_duration"`

	// LootProtectionWindow is how long a dropped ground item is claimable
	// only by its dropper (spec §3/§4.3: "pickup validates ... loot
	// protection window").
	LootProtectionWindow time.Duration `yaml:"loot_protection_window"`
	// GroundItemLifetime is the TTL after which an unclaimed ground item
	// despawns (spec §3: "despawns after a TTL").
	GroundItemLifetime time.Duration `yaml:"ground_item_lifetime"`
}

// GameServer holds all configuration for the authoritative game server.
type GameServer struct {
	BindAddress   string `yaml:"bind_address"`
	Port          int    `yaml:"port"`
	WebsocketPath string `yaml:"websocket_path"`

	Database DatabaseConfig `yaml:"database"`
	HotStore HotStoreConfig `yaml:"hot_store"`

	Game GameConfig `yaml:"game"`
	Tick TickConfig `yaml:"tick"`
	AI   AIConfig   `yaml:"ai"`
	Chat ChatConfig `yaml:"chat"`

	WriteTimeout  time.Duration `yaml:"write_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	SendQueueSize int           `yaml:"send_queue_size"`

	MapsDir string `yaml:"maps_dir"` // directory of .tmx files, one per map_id

	// SpawnMapID is the map a freshly registered player starts on.
	SpawnMapID string `yaml:"spawn_map_id"`
	// StartHP is a freshly registered player's starting hit points.
	StartHP int32 `yaml:"start_hp"`

	LogLevel string `yaml:"log_level"`
}

// DefaultGameServer returns GameServer config with sensible defaults,
// matching the recognized configuration options enumerated by spec.
func DefaultGameServer() GameServer {
	return GameServer{
		BindAddress:   "0.0.0.0",
		Port:          7777,
		WebsocketPath: "/ws",
		LogLevel:      "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "tileworld",
			Password: "tileworld",
			DBName:   "tileworld",
			SSLMode:  "disable",
		},
		HotStore: HotStoreConfig{
			Addr:      "127.0.0.1:6379",
			DB:        0,
			EntityTTL: 30 * time.Minute,
		},
		Game: GameConfig{
			TileSize:             32,
			ChunkSize:            16,
			MoveCooldown:         150 * time.Millisecond,
			MoveDuration:         150 * time.Millisecond,
			LootProtectionWindow: 30 * time.Second,
			GroundItemLifetime:   5 * time.Minute,
		},
		Tick: TickConfig{
			HotHz:  20,
			WarmHz: 5,
		},
		AI: AIConfig{
			Enabled:                true,
			WanderInterval:         2 * time.Second,
			ChaseInterval:          400 * time.Millisecond,
			AttackInterval:         1200 * time.Millisecond,
			IdleMin:                3 * time.Second,
			IdleMax:                10 * time.Second,
			LOSTimeout:             5 * time.Second,
			MaxPathfindingDistance: 50,
		},
		Chat: ChatConfig{
			GlobalEnabled:          true,
			GlobalAllowedRoles:     []string{"moderator", "admin"},
			MaxMessageLengthLocal:  280,
			MaxMessageLengthGlobal: 200,
			MaxMessageLengthDM:     500,
			LocalChunkRadius:       1,
		},
		WriteTimeout:  5 * time.Second,
		ReadTimeout:   120 * time.Second,
		SendQueueSize: 256,
		MapsDir:       "data/maps/",
		SpawnMapID:    "start",
		StartHP:       100,
	}
}

// LoadGameServer loads game server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
