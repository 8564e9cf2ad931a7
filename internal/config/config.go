// Package config loads the YAML configuration and environment overrides
// for the reconciliation service. Every template knob the partner portals
// like to shift between releases lives here, not in code.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wakala/partner-recon/internal/ingestion"
	"github.com/wakala/partner-recon/internal/normalize"
	"github.com/wakala/partner-recon/internal/reconciliation"
)

// Configuration holds all settings for partner-recon.
type Configuration struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Statement  StatementConfig  `mapstructure:"statement"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Display    DisplayConfig    `mapstructure:"display"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	CORSOrigin string `mapstructure:"cors_origin"`
	// MaxUploadMB caps the multipart form size on upload endpoints.
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	// Path is the SQLite file for the run ledger. Empty disables the
	// ledger entirely; ":memory:" keeps it for the process lifetime.
	Path string `mapstructure:"path"`
}

// StatementConfig describes the statement extract template.
type StatementConfig struct {
	HeaderRow         int    `mapstructure:"header_row"`
	Delimiter         string `mapstructure:"delimiter"`
	DropDataRows      []int  `mapstructure:"drop_data_rows"`
	DescriptionColumn string `mapstructure:"description_column"`
	TypeColumn        string `mapstructure:"type_column"`
	AmountColumn      string `mapstructure:"amount_column"`
}

// SettlementConfig describes the settlement extract template.
type SettlementConfig struct {
	HeaderRow    int    `mapstructure:"header_row"`
	Delimiter    string `mapstructure:"delimiter"`
	PinColumn    string `mapstructure:"pin_column"`
	TypeColumn   string `mapstructure:"type_column"`
	PayoutColumn string `mapstructure:"payout_column"`
	RateColumn   string `mapstructure:"rate_column"`
}

type DisplayConfig struct {
	// RowLimit caps rows per category in API responses.
	RowLimit int `mapstructure:"row_limit"`
	// PreviewLimit caps rows on the normalize preview endpoints.
	PreviewLimit int `mapstructure:"preview_limit"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputFile string `mapstructure:"output_file"` // optional file output
}

// Load reads the YAML file at path, layering RECON_* environment
// variables over it. An empty path yields pure defaults, which match the
// current portal templates.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("database.path", "partner-recon.db")

	v.SetDefault("statement.header_row", 9)
	v.SetDefault("statement.delimiter", ",")
	v.SetDefault("statement.drop_data_rows", []int{0})
	v.SetDefault("statement.description_column", "PQsTrOptOons")
	v.SetDefault("statement.type_column", "Type")
	v.SetDefault("statement.amount_column", "Settle.Amt")

	v.SetDefault("settlement.header_row", 2)
	v.SetDefault("settlement.delimiter", ",")
	v.SetDefault("settlement.pin_column", "Partner_Pin")
	v.SetDefault("settlement.type_column", "Type")
	v.SetDefault("settlement.payout_column", "PayoutRoundAmt")
	v.SetDefault("settlement.rate_column", "APIRate")

	v.SetDefault("display.row_limit", 50)
	v.SetDefault("display.preview_limit", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Params maps the template configuration onto engine parameters.
func (c *Configuration) Params() reconciliation.Params {
	return reconciliation.Params{
		StatementRead: ingestion.ReadOptions{
			HeaderRow: c.Statement.HeaderRow,
			Delimiter: delimiterRune(c.Statement.Delimiter),
		},
		StatementOptions: normalize.StatementOptions{
			DescriptionColumn: c.Statement.DescriptionColumn,
			TypeColumn:        c.Statement.TypeColumn,
			AmountColumn:      c.Statement.AmountColumn,
			RowFilter:         normalize.DropRows(c.Statement.DropDataRows...),
		},
		SettlementRead: ingestion.ReadOptions{
			HeaderRow: c.Settlement.HeaderRow,
			Delimiter: delimiterRune(c.Settlement.Delimiter),
		},
		SettlementSchema: normalize.SettlementSchema{
			PinColumn:    c.Settlement.PinColumn,
			TypeColumn:   c.Settlement.TypeColumn,
			PayoutColumn: c.Settlement.PayoutColumn,
			RateColumn:   c.Settlement.RateColumn,
		},
	}
}

func delimiterRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
