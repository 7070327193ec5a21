package config

import (
	"testing"
	"time"
)

func TestDurationOrDefault(t *testing.T) {
	d, err := DurationOrDefault("90s", "60s")
	if err != nil || d != 90*time.Second {
		t.Errorf("Expected 90s, got %v (err %v)", d, err)
	}

	d, err = DurationOrDefault("", "60s")
	if err != nil || d != time.Minute {
		t.Errorf("Expected fallback 60s, got %v (err %v)", d, err)
	}

	// "0" means disabled, not a parse error.
	d, err = DurationOrDefault("0", "60s")
	if err != nil || d != 0 {
		t.Errorf("Expected 0 for disabled, got %v (err %v)", d, err)
	}

	if _, err = DurationOrDefault("soon", "60s"); err == nil {
		t.Error("Expected error for unparseable duration")
	}

	if _, err = DurationOrDefault("", ""); err == nil {
		t.Error("Expected error when value and default are both empty")
	}
}
