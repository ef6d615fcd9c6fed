package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()

	if cfg.Storage.InventoryBucket != "inventory-images" {
		t.Errorf("inventory bucket = %q", cfg.Storage.InventoryBucket)
	}
	if cfg.Storage.DeliveryBucket != "delivery-photos" {
		t.Errorf("delivery bucket = %q", cfg.Storage.DeliveryBucket)
	}
	if cfg.Upload.MaxPhotoBytes != 5<<20 {
		t.Errorf("max photo bytes = %d", cfg.Upload.MaxPhotoBytes)
	}
	if cfg.Kafka.Topic != "orders.events" {
		t.Errorf("kafka topic = %q", cfg.Kafka.Topic)
	}
}

func TestEnvGetters(t *testing.T) {
	t.Setenv("TEST_CFG_INT", "42")
	t.Setenv("TEST_CFG_BAD_INT", "x")
	t.Setenv("TEST_CFG_BOOL", "true")
	t.Setenv("TEST_CFG_SLICE", "a, b,,c")
	t.Setenv("TEST_CFG_EMPTY_SLICE", "")
	t.Setenv("TEST_CFG_DURATION", "90s")

	if got := getEnvInt("TEST_CFG_INT", 1); got != 42 {
		t.Errorf("getEnvInt = %d", got)
	}
	if got := getEnvInt("TEST_CFG_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt fallback = %d", got)
	}
	if got := getEnvBool("TEST_CFG_BOOL", false); !got {
		t.Error("getEnvBool = false")
	}
	if got := getEnvSlice("TEST_CFG_SLICE", nil); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("getEnvSlice = %v", got)
	}
	if got := getEnvSlice("TEST_CFG_EMPTY_SLICE", []string{"x"}); len(got) != 0 {
		t.Errorf("getEnvSlice empty = %v", got)
	}
	if got := getEnvDuration("TEST_CFG_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("getEnvDuration = %v", got)
	}
	if got := getEnv("TEST_CFG_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q", got)
	}
}
