// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура конфигурации приложения
type Config struct {
	// Postgres
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Backtesting
	Symbol           string
	CandleTimeframe  int // Таймфрейм свечей в минутах
	TickTimeframe    int // Таймфрейм тиков в минутах
	StartDate        time.Time
	EndDate          time.Time
	InitialBalance   float64
	Spread           float64
	UseSpread        bool
	OptimizationMode bool // В режиме оптимизации графики не строятся

	// Strategy
	ParamsFile string

	// Logging
	LogLevel string
	LogFile  string
	Debug    bool
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(envPath string) (*Config, error) {
	// Загружаем .env файл
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
	}

	startDate, err := getEnvDate("BACKTESTING_START_DATE", "2021-01-04")
	if err != nil {
		return nil, err
	}

	endDate, err := getEnvDate("BACKTESTING_END_DATE", "2021-12-31")
	if err != nil {
		return nil, err
	}

	config := &Config{
		// Postgres
		PostgresHost:     getEnvString("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvString("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnvString("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnvString("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnvString("POSTGRES_DB", "historical_data"),
		PostgresSSLMode:  getEnvString("POSTGRES_SSL_MODE", "disable"),

		// Redis
		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_HOURS", 24)) * time.Hour,

		// Backtesting
		Symbol:           getEnvString("SYMBOL", "GBPUSDm"),
		CandleTimeframe:  getEnvInt("CANDLE_TIMEFRAME", 60),
		TickTimeframe:    getEnvInt("TICK_TIMEFRAME", 5),
		StartDate:        startDate,
		EndDate:          endDate,
		InitialBalance:   getEnvFloat("INITIAL_BALANCE", 10000),
		Spread:           getEnvFloat("SPREAD", 0.00010),
		UseSpread:        getEnvBool("USE_SPREAD", true),
		OptimizationMode: getEnvBool("OPTIMIZATION_MODE", false),

		// Strategy
		ParamsFile: getEnvString("PARAMS_FILE", "params.csv"),

		// Logging
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		LogFile:  getEnvString("LOG_FILE", "logs/backtester.log"),
		Debug:    getEnvBool("DEBUG", false),
	}

	return config, nil
}

// PostgresDSN собирает строку подключения к базе исторических данных
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive")
	}

	if c.TickTimeframe < 1 || c.CandleTimeframe < 1 {
		return fmt.Errorf("timeframes must be at least 1 minute")
	}

	if c.CandleTimeframe%c.TickTimeframe != 0 {
		return fmt.Errorf("candle timeframe must be a multiple of tick timeframe")
	}

	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("end date must be after start date")
	}

	return nil
}
