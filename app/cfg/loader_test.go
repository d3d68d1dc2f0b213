package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:            "8080",
		UserAgent:       "Test Agent",
		WorkerCount:     5,
		LookbackHours:   24,
		FetchSchedule:   "@every 15m",
		ProcessSchedule: "@every 5m",
		APIAccessKey:    "test-key",
		Version:         "test-version",
		SourcesDir:      "./sources",
		NewsAPIURL:      "https://newsapi.org/v2",
		AllowSampleData: true,
		SendGridAPIKey:  "sg-key",
		FromEmail:       "alerts@example.com",
		FromName:        "News Alerts",
		EmailRatePerSec: 2,
		DBHost:          "localhost",
		DBPort:          "5432",
		DBUser:          "test_user",
		DBPassword:      "test_password",
		DBName:          "test_db",
		DBSSLMode:       "disable",
		Timezone:        "UTC",
		Debug:           true,
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.LookbackHours != 24 {
		t.Errorf("Expected lookback hours 24, got %d", cfg.LookbackHours)
	}
	if cfg.FetchSchedule != "@every 15m" {
		t.Errorf("Expected fetch schedule '@every 15m', got '%s'", cfg.FetchSchedule)
	}
	if cfg.ProcessSchedule != "@every 5m" {
		t.Errorf("Expected process schedule '@every 5m', got '%s'", cfg.ProcessSchedule)
	}
	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got '%s'", cfg.SourcesDir)
	}
	if cfg.NewsAPIURL != "https://newsapi.org/v2" {
		t.Errorf("Expected NewsAPI URL 'https://newsapi.org/v2', got '%s'", cfg.NewsAPIURL)
	}
	if !cfg.AllowSampleData {
		t.Error("Expected sample data to be allowed")
	}
	if cfg.FromEmail != "alerts@example.com" {
		t.Errorf("Expected from email 'alerts@example.com', got '%s'", cfg.FromEmail)
	}
	if cfg.EmailRatePerSec != 2 {
		t.Errorf("Expected email rate 2, got %d", cfg.EmailRatePerSec)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("Expected DB host 'localhost', got '%s'", cfg.DBHost)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("Expected DB SSL mode 'disable', got '%s'", cfg.DBSSLMode)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestGetPanicsBeforeLoad(t *testing.T) {
	saved := globalCfg
	globalCfg = nil
	defer func() {
		globalCfg = saved
		if r := recover(); r == nil {
			t.Error("Expected Get to panic before Load")
		}
	}()

	Get()
}
