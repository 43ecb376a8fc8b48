package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Store:  StoreConfig{Path: "test.db"},
		Loans: LoanConfig{
			DefaultDueDays:      14,
			OverdueScanInterval: time.Hour,
		},
		Mail: MailConfig{From: "library@example.com"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_DueDays(t *testing.T) {
	cfg := validConfig()
	cfg.Loans.DefaultDueDays = 0
	assert.Error(t, cfg.Validate())

	cfg.Loans.DefaultDueDays = 1
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ScanInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Loans.OverdueScanInterval = 30 * time.Second
	assert.Error(t, cfg.Validate())

	cfg.Loans.OverdueScanInterval = time.Minute
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MailFrom(t *testing.T) {
	cfg := validConfig()
	cfg.Mail.From = ""
	assert.Error(t, cfg.Validate())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("OPENSHELF_TEST_KEY", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "OPENSHELF_TEST_KEY", "default"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "OPENSHELF_TEST_KEY", "default"))
	// Default when nothing else set.
	assert.Equal(t, "default", getConfigValue("", "OPENSHELF_TEST_KEY_MISSING", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("OPENSHELF_TEST_INT", "21")

	assert.Equal(t, 21, getIntConfigValue("", "OPENSHELF_TEST_INT", 14))
	assert.Equal(t, 14, getIntConfigValue("", "OPENSHELF_TEST_INT_MISSING", 14))

	t.Setenv("OPENSHELF_TEST_INT", "not-a-number")
	assert.Equal(t, 14, getIntConfigValue("", "OPENSHELF_TEST_INT", 14))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nDEFAULT_DUE_DAYS=21\nMAIL_FROM=\"books@example.com\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DEFAULT_DUE_DAYS", "")
	t.Setenv("MAIL_FROM", "")
	os.Unsetenv("DEFAULT_DUE_DAYS")
	os.Unsetenv("MAIL_FROM")

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "21", os.Getenv("DEFAULT_DUE_DAYS"))
	assert.Equal(t, "books@example.com", os.Getenv("MAIL_FROM"))
}

func TestLoadEnvFile_MissingFile(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
