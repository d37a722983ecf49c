package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the plugin config directory.
const FileName = "waymark_presets.cfg.json"

// LibraryConfig holds the user-facing library options.
type LibraryConfig struct {
	SortPresetsByZone                  bool   `json:"sortPresetsByZone" mapstructure:"sortPresetsByZone"`
	ZoneSortType                       string `json:"zoneSortType" mapstructure:"zoneSortType"`
	SortZonesDescending                bool   `json:"sortZonesDescending" mapstructure:"sortZonesDescending"`
	AutoSavePresetsOnInstanceLeave     bool   `json:"autoSavePresetsOnInstanceLeave" mapstructure:"autoSavePresetsOnInstanceLeave"`
	AutoPopulatePresetsOnEnterInstance bool   `json:"autoPopulatePresetsOnEnterInstance" mapstructure:"autoPopulatePresetsOnEnterInstance"`
	SuppressCommandLineResponses       bool   `json:"suppressCommandLineResponses" mapstructure:"suppressCommandLineResponses"`
	ShowIDNumberNextToZoneNames        bool   `json:"showIDNumberNextToZoneNames" mapstructure:"showIDNumberNextToZoneNames"`
	IncludeTimestampInExport           bool   `json:"includeTimestampInExport" mapstructure:"includeTimestampInExport"`

	PlacementCooldown time.Duration `json:"-" mapstructure:"-"`
	StoreLockTimeout  time.Duration `json:"-" mapstructure:"-"`
	ZonesDataFile     string        `json:"-" mapstructure:"-"`
}

// MemoryConfig holds settings of the JSON file backend.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings of the SQLite backend.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	DB     DBConfig     `json:"db" mapstructure:"db"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// TelemetryConfig holds the InfluxDB usage telemetry settings.
type TelemetryConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Host      string `json:"host" mapstructure:"host"`
	Port      string `json:"port" mapstructure:"port"`
	Protocol  string `json:"protocol" mapstructure:"protocol"`
	Token     string `json:"token" mapstructure:"token"`
	Org       string `json:"org" mapstructure:"org"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
	BackupDir string `json:"backupDir" mapstructure:"backupDir"`
}

// MonitorConfig holds the library status monitor settings.
type MonitorConfig struct {
	Enabled       bool          `json:"enabled" mapstructure:"enabled"`
	Interval      time.Duration `json:"interval" mapstructure:"interval"`
	BackupOnStart bool          `json:"backupOnStart" mapstructure:"backupOnStart"`
}

// GraylogConfig holds the GELF log sink settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default. Load calls it; tools that run
// without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("library.sortPresetsByZone", true)
	viper.SetDefault("library.zoneSortType", "basic")
	viper.SetDefault("library.sortZonesDescending", false)
	viper.SetDefault("library.autoSavePresetsOnInstanceLeave", false)
	viper.SetDefault("library.autoPopulatePresetsOnEnterInstance", false)
	viper.SetDefault("library.suppressCommandLineResponses", false)
	viper.SetDefault("library.showIDNumberNextToZoneNames", false)
	viper.SetDefault("library.includeTimestampInExport", false)

	viper.SetDefault("placement.cooldown", "3s")
	viper.SetDefault("gameStore.lockTimeout", "250ms")
	viper.SetDefault("zones.dataFile", "")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", ".")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./waymark_presets.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "waymarks")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "waymark-presets")
	viper.SetDefault("influx.bucket", "usage")
	viper.SetDefault("influx.backupDir", "")

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "30s")
	viper.SetDefault("monitor.backupOnStart", true)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "waymark-presets")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetLibraryConfig returns the library options together with the placement
// and zone data settings.
func GetLibraryConfig() LibraryConfig {
	return LibraryConfig{
		SortPresetsByZone:                  viper.GetBool("library.sortPresetsByZone"),
		ZoneSortType:                       viper.GetString("library.zoneSortType"),
		SortZonesDescending:                viper.GetBool("library.sortZonesDescending"),
		AutoSavePresetsOnInstanceLeave:     viper.GetBool("library.autoSavePresetsOnInstanceLeave"),
		AutoPopulatePresetsOnEnterInstance: viper.GetBool("library.autoPopulatePresetsOnEnterInstance"),
		SuppressCommandLineResponses:       viper.GetBool("library.suppressCommandLineResponses"),
		ShowIDNumberNextToZoneNames:        viper.GetBool("library.showIDNumberNextToZoneNames"),
		IncludeTimestampInExport:           viper.GetBool("library.includeTimestampInExport"),
		PlacementCooldown:                  viper.GetDuration("placement.cooldown"),
		StoreLockTimeout:                   viper.GetDuration("gameStore.lockTimeout"),
		ZonesDataFile:                      viper.GetString("zones.dataFile"),
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetTelemetryConfig returns the InfluxDB telemetry configuration.
func GetTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:   viper.GetBool("influx.enabled"),
		Host:      viper.GetString("influx.host"),
		Port:      viper.GetString("influx.port"),
		Protocol:  viper.GetString("influx.protocol"),
		Token:     viper.GetString("influx.token"),
		Org:       viper.GetString("influx.org"),
		Bucket:    viper.GetString("influx.bucket"),
		BackupDir: viper.GetString("influx.backupDir"),
	}
}

// GetMonitorConfig returns the status monitor configuration.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:       viper.GetBool("monitor.enabled"),
		Interval:      viper.GetDuration("monitor.interval"),
		BackupOnStart: viper.GetBool("monitor.backupOnStart"),
	}
}

func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}
