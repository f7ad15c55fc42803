package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupLogger_DefaultLevel(t *testing.T) {
	t.Setenv("STOREFRONT_LOG_LEVEL", "")
	setupLogger()
	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
}

func TestSetupLogger_EnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_LOG_LEVEL", "debug")
	setupLogger()
	defer log.SetLevel(log.InfoLevel)
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
}

func TestSetupLogger_InvalidLevelKeepsInfo(t *testing.T) {
	t.Setenv("STOREFRONT_LOG_LEVEL", "chatty")
	setupLogger()
	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level for invalid value, got %s", log.GetLevel())
	}
}
