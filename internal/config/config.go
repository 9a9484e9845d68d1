package config

import (
	"github.com/spf13/viper"
)

// DefaultDatabasePath is where the circulation database lives unless
// DATABASE_PATH overrides it.
const DefaultDatabasePath = "./biblioteca.db"

type (
	Config struct {
		HTTP
		Database
		Reports
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Reports struct {
		OverdueDays      int // Open loans older than this many days count as overdue
		MostBorrowedSize int // Row cap of the most-borrowed ranking
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("reports_overdue_days", 15)
	v.SetDefault("reports_most_borrowed_size", 10)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("port"),
			Host: v.GetString("host"),
		},
		Database: Database{
			Path: v.GetString("database_path"),
		},
		Reports: Reports{
			OverdueDays:      v.GetInt("reports_overdue_days"),
			MostBorrowedSize: v.GetInt("reports_most_borrowed_size"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("shutdown_timeout_in_seconds"),
		},
	}
}
