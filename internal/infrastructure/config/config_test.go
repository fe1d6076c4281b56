package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"POS_APP_NAME",
	"POS_APP_ENV",
	"POS_DATABASE_DRIVER",
	"POS_DATABASE_HOST",
	"POS_DATABASE_PORT",
	"POS_DATABASE_PASSWORD",
	"POS_DATABASE_SSLMODE",
	"POS_DATABASE_PATH",
	"POS_DATABASE_MAX_OPEN_CONNS",
	"POS_DATABASE_MAX_IDLE_CONNS",
	"POS_LOG_LEVEL",
	"POS_SALES_MAX_INSTALLMENTS",
	"POS_SALES_INSTALLMENT_INTERVAL_DAYS",
	"POS_SALES_OVERDUE_SWEEP_INTERVAL",
	"POS_TELEMETRY_ENABLED",
}

// isolateEnv clears every POS_ variable for the duration of the test
func isolateEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		if v, ok := os.LookupEnv(k); ok {
			original[k] = v
		}
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range configEnvKeys {
			if v, ok := original[k]; ok {
				os.Setenv(k, v)
			} else {
				os.Unsetenv(k)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads defaults", func(t *testing.T) {
		isolateEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "posledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "posledger.db", cfg.Database.Path)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 12, cfg.Sales.MaxInstallments)
		assert.Equal(t, 30, cfg.Sales.InstallmentIntervalDays)
		assert.Equal(t, time.Hour, cfg.Sales.OverdueSweepInterval)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "posledger", cfg.Telemetry.ServiceName)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, time.Minute, cfg.Telemetry.ExportInterval)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_APP_NAME", "loja-centro")
		os.Setenv("POS_DATABASE_DRIVER", "sqlite")
		os.Setenv("POS_DATABASE_PATH", ":memory:")
		os.Setenv("POS_LOG_LEVEL", "debug")
		os.Setenv("POS_SALES_MAX_INSTALLMENTS", "6")
		os.Setenv("POS_SALES_INSTALLMENT_INTERVAL_DAYS", "15")
		os.Setenv("POS_SALES_OVERDUE_SWEEP_INTERVAL", "15m")
		os.Setenv("POS_TELEMETRY_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "loja-centro", cfg.App.Name)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.Path)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 6, cfg.Sales.MaxInstallments)
		assert.Equal(t, 15, cfg.Sales.InstallmentIntervalDays)
		assert.Equal(t, 15*time.Minute, cfg.Sales.OverdueSweepInterval)
		assert.True(t, cfg.Telemetry.Enabled)
	})
}

func TestLoad_Validation(t *testing.T) {
	t.Run("rejects unknown driver", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("POS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects negative max installments", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_SALES_MAX_INSTALLMENTS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sales.max_installments")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires database.password in production", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_DATABASE_PASSWORD", "secure-password")
		os.Setenv("POS_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("sqlite skips postgres checks in production", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("POS_APP_ENV", "production")
		os.Setenv("POS_DATABASE_PASSWORD", "secure-password")
		os.Setenv("POS_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite uses the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})
}
