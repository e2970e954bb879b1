package common

import (
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestParameter(t *testing.T) {
	c := DefaultServerConfig()

	tests := []struct {
		name     string
		expected string
		ok       bool
	}{
		{"dir", "/tmp/redis-data", true},
		{"DIR", "/tmp/redis-data", true},
		{"dbfilename", "dump.rdb", true},
		{"DbFileName", "dump.rdb", true},
		{"maxmemory", "", false},
		{"D\u0130R", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		value, ok := c.Parameter(tt.name)
		if ok != tt.ok || value != tt.expected {
			t.Errorf("Parameter(%q): expected (%q, %v), got (%q, %v)", tt.name, tt.expected, tt.ok, value, ok)
		}
	}
}

func TestParseTransport(t *testing.T) {
	for _, name := range []string{"tcp", "TCP", "unix"} {
		if _, err := ParseTransport(name); err != nil {
			t.Errorf("Expected %s to be valid, got %v", name, err)
		}
	}
	if _, err := ParseTransport("http"); err == nil {
		t.Errorf("Expected http to be rejected")
	}
}

func TestConfigString(t *testing.T) {
	c := DefaultServerConfig()
	out := c.String()
	for _, expected := range []string{"SERVER", "127.0.0.1:6379", "STORAGE", "dump.rdb", "disabled"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected server summary to contain %q", expected)
		}
	}

	cc := ClientConfig{Endpoints: []string{"a:1", "b:2"}, Transport: TransportUnix}
	out = cc.String()
	if !strings.Contains(out, "a:1") || !strings.Contains(out, "b:2") {
		t.Errorf("Expected client summary to list endpoints, got %s", out)
	}
	if strings.Contains(out, "TCP No Delay") {
		t.Errorf("Expected no socket options for unix transport")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for name, expected := range tests {
		lvl, err := ParseLogLevel(name)
		if err != nil || lvl != expected {
			t.Errorf("ParseLogLevel(%q): expected %v, got %v (%v)", name, expected, lvl, err)
		}
	}

	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("Expected an error for an invalid level")
	}
	if err := InitLoggers("verbose"); err == nil {
		t.Errorf("Expected InitLoggers to reject an invalid level")
	}
	if err := InitLoggers("error"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
