package config

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Overpass OverpassConfig
	Routing  RoutingConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	NetworkCacheTTL time.Duration
	RouteCacheTTL   time.Duration
}

type LogConfig struct {
	Level string
}

type OverpassConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// RoutingConfig holds every parameter of the risk engine. It is validated
// eagerly at load time and never mutated mid-request.
type RoutingConfig struct {
	// Risk field
	Strategy         string  // "proximity" or "density"
	InfluenceRadiusM float64 // hard cutoff for incident influence
	DecayFunction    string  // linear | exponential | inverse | step
	MinBaselineRisk  float64
	KDEBandwidthM    float64 // density strategy only

	// Weight composition
	DistanceWeight     float64
	CrimeWeight        float64
	CrimePenaltyScale  float64
	AdaptiveWeighting  bool
	MinDetourThreshM   float64
	SafestCrimeWeight  float64 // preset for mode=safest

	// Edge sampling
	EdgeSampleCount     int
	EdgeSampleIntervalM float64

	// Network sizing
	MinNetworkRadiusM   float64
	MaxNetworkRadiusM   float64
	NetworkBufferFactor float64
	IncidentBufferM     float64

	// Supported geographic envelope for requests
	EnvelopeMinLat float64
	EnvelopeMaxLat float64
	EnvelopeMinLon float64
	EnvelopeMaxLon float64
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			NetworkCacheTTL: time.Duration(viper.GetInt("NETWORK_CACHE_TTL")) * time.Second,
			RouteCacheTTL:   time.Duration(viper.GetInt("ROUTE_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Overpass: OverpassConfig{
			BaseURL:        viper.GetString("OVERPASS_BASE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("OVERPASS_REQUEST_TIMEOUT")) * time.Second,
		},
		Routing: RoutingConfig{
			Strategy:            viper.GetString("RISK_STRATEGY"),
			InfluenceRadiusM:    viper.GetFloat64("RISK_INFLUENCE_RADIUS"),
			DecayFunction:       viper.GetString("RISK_DECAY_FUNCTION"),
			MinBaselineRisk:     viper.GetFloat64("RISK_MIN_BASELINE"),
			KDEBandwidthM:       viper.GetFloat64("RISK_KDE_BANDWIDTH"),
			DistanceWeight:      viper.GetFloat64("ROUTING_DISTANCE_WEIGHT"),
			CrimeWeight:         viper.GetFloat64("ROUTING_CRIME_WEIGHT"),
			CrimePenaltyScale:   viper.GetFloat64("ROUTING_CRIME_PENALTY_SCALE"),
			AdaptiveWeighting:   viper.GetBool("ROUTING_ADAPTIVE_WEIGHTING"),
			MinDetourThreshM:    viper.GetFloat64("ROUTING_MIN_DETOUR_THRESHOLD"),
			SafestCrimeWeight:   viper.GetFloat64("ROUTING_SAFEST_CRIME_WEIGHT"),
			EdgeSampleCount:     viper.GetInt("ROUTING_EDGE_SAMPLE_COUNT"),
			EdgeSampleIntervalM: viper.GetFloat64("ROUTING_EDGE_SAMPLE_INTERVAL"),
			MinNetworkRadiusM:   viper.GetFloat64("NETWORK_MIN_RADIUS"),
			MaxNetworkRadiusM:   viper.GetFloat64("NETWORK_MAX_RADIUS"),
			NetworkBufferFactor: viper.GetFloat64("NETWORK_BUFFER_FACTOR"),
			IncidentBufferM:     viper.GetFloat64("INCIDENT_BUFFER"),
			EnvelopeMinLat:      viper.GetFloat64("ENVELOPE_MIN_LAT"),
			EnvelopeMaxLat:      viper.GetFloat64("ENVELOPE_MAX_LAT"),
			EnvelopeMinLon:      viper.GetFloat64("ENVELOPE_MIN_LON"),
			EnvelopeMaxLon:      viper.GetFloat64("ENVELOPE_MAX_LON"),
		},
	}

	cfg.Routing.applyDefaults()

	if cfg.Overpass.BaseURL == "" {
		cfg.Overpass.BaseURL = "https://overpass-api.de/api/interpreter"
	}
	if cfg.Overpass.RequestTimeout == 0 {
		cfg.Overpass.RequestTimeout = 30 * time.Second
	}
	if cfg.Cache.NetworkCacheTTL == 0 {
		cfg.Cache.NetworkCacheTTL = 24 * time.Hour
	}
	if cfg.Cache.RouteCacheTTL == 0 {
		cfg.Cache.RouteCacheTTL = 10 * time.Minute
	}

	if err := cfg.Routing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid routing config: %w", err)
	}

	return cfg, nil
}

func (rc *RoutingConfig) applyDefaults() {
	if rc.Strategy == "" {
		rc.Strategy = "proximity"
	}
	if rc.InfluenceRadiusM == 0 {
		rc.InfluenceRadiusM = 100
	}
	if rc.DecayFunction == "" {
		rc.DecayFunction = "exponential"
	}
	if rc.KDEBandwidthM == 0 {
		rc.KDEBandwidthM = 200
	}
	if rc.DistanceWeight == 0 && rc.CrimeWeight == 0 {
		rc.DistanceWeight = 0.7
		rc.CrimeWeight = 0.3
	}
	if rc.CrimePenaltyScale == 0 {
		rc.CrimePenaltyScale = 1.0
	}
	if rc.MinDetourThreshM == 0 {
		rc.MinDetourThreshM = 200
	}
	if rc.SafestCrimeWeight == 0 {
		rc.SafestCrimeWeight = 0.7
	}
	if rc.EdgeSampleCount == 0 {
		rc.EdgeSampleCount = 3
	}
	if rc.EdgeSampleIntervalM == 0 {
		rc.EdgeSampleIntervalM = 25
	}
	if rc.MinNetworkRadiusM == 0 {
		rc.MinNetworkRadiusM = 800
	}
	if rc.MaxNetworkRadiusM == 0 {
		rc.MaxNetworkRadiusM = 5000
	}
	if rc.NetworkBufferFactor == 0 {
		rc.NetworkBufferFactor = 0.8
	}
	if rc.IncidentBufferM == 0 {
		rc.IncidentBufferM = 500
	}
	// Toronto service area by default
	if rc.EnvelopeMinLat == 0 && rc.EnvelopeMaxLat == 0 {
		rc.EnvelopeMinLat = 43.0
		rc.EnvelopeMaxLat = 44.5
		rc.EnvelopeMinLon = -80.5
		rc.EnvelopeMaxLon = -78.5
	}
}

// Validate rejects inconsistent routing parameters before any computation.
func (rc *RoutingConfig) Validate() error {
	if rc.Strategy != "proximity" && rc.Strategy != "density" {
		return fmt.Errorf("unknown risk strategy %q", rc.Strategy)
	}
	switch rc.DecayFunction {
	case "linear", "exponential", "inverse", "step":
	default:
		return fmt.Errorf("unknown decay function %q", rc.DecayFunction)
	}
	if rc.DistanceWeight < 0 || rc.DistanceWeight > 1 {
		return fmt.Errorf("distance_weight must be within [0,1], got %v", rc.DistanceWeight)
	}
	if rc.CrimeWeight < 0 || rc.CrimeWeight > 1 {
		return fmt.Errorf("crime_weight must be within [0,1], got %v", rc.CrimeWeight)
	}
	if math.Abs(rc.DistanceWeight+rc.CrimeWeight-1.0) > 1e-6 {
		return fmt.Errorf("distance_weight + crime_weight must equal 1.0, got %v",
			rc.DistanceWeight+rc.CrimeWeight)
	}
	if rc.DistanceWeight == 0 {
		return fmt.Errorf("distance_weight must be positive")
	}
	if rc.SafestCrimeWeight <= 0 || rc.SafestCrimeWeight >= 1 {
		return fmt.Errorf("safest crime weight must be within (0,1), got %v", rc.SafestCrimeWeight)
	}
	if rc.InfluenceRadiusM <= 0 {
		return fmt.Errorf("influence radius must be positive, got %v", rc.InfluenceRadiusM)
	}
	if rc.KDEBandwidthM <= 0 {
		return fmt.Errorf("kde bandwidth must be positive, got %v", rc.KDEBandwidthM)
	}
	if rc.MinBaselineRisk < 0 {
		return fmt.Errorf("min baseline risk must be non-negative, got %v", rc.MinBaselineRisk)
	}
	if rc.CrimePenaltyScale < 0 {
		return fmt.Errorf("crime penalty scale must be non-negative, got %v", rc.CrimePenaltyScale)
	}
	if rc.EdgeSampleCount < 1 {
		return fmt.Errorf("edge sample count must be at least 1, got %d", rc.EdgeSampleCount)
	}
	if rc.EdgeSampleIntervalM <= 0 {
		return fmt.Errorf("edge sample interval must be positive, got %v", rc.EdgeSampleIntervalM)
	}
	if rc.MinDetourThreshM < 0 {
		return fmt.Errorf("min detour threshold must be non-negative, got %v", rc.MinDetourThreshM)
	}
	if rc.MinNetworkRadiusM <= 0 || rc.MaxNetworkRadiusM < rc.MinNetworkRadiusM {
		return fmt.Errorf("network radius bounds invalid: min=%v max=%v",
			rc.MinNetworkRadiusM, rc.MaxNetworkRadiusM)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
