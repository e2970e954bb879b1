package lstore

import (
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/lib/db"
	"github.com/ValentinKolb/rKV/lib/db/engines/maple"
	"github.com/ValentinKolb/rKV/lib/store"
)

// getOnlyDB supports nothing but Get
type getOnlyDB struct {
	db.KVDB
}

func (getOnlyDB) SupportsFeature(f db.Feature) bool { return f == db.FeatureGet }
func (getOnlyDB) Get(string) ([]byte, bool)         { return nil, false }
func (getOnlyDB) Close() error                      { return nil }

func TestSetGet(t *testing.T) {
	s := NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	defer s.Close()

	if err := s.Set("key", []byte("value"), 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	value, ok, err := s.Get("key")
	if err != nil || !ok {
		t.Fatalf("Expected key to exist, got ok=%v err=%v", ok, err)
	}
	if string(value) != "value" {
		t.Errorf("Expected value, got %s", value)
	}

	if _, ok, _ = s.Get("missing"); ok {
		t.Errorf("Expected missing key to not exist")
	}
}

func TestSetWithExpiry(t *testing.T) {
	s := NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	defer s.Close()

	if err := s.Set("key", []byte("value"), 50*time.Millisecond); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok, _ := s.Get("key"); !ok {
		t.Errorf("Expected key to exist before expiry")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok, _ := s.Get("key"); ok {
		t.Errorf("Expected key to be expired")
	}

	info, err := s.GetDBInfo()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.DbType != db.ImplMaple {
		t.Errorf("Expected %s, got %s", db.ImplMaple, info.DbType)
	}
}

func TestUnsupportedOperation(t *testing.T) {
	s := NewLocalStore(func() db.KVDB { return getOnlyDB{} })

	for _, expireIn := range []time.Duration{0, time.Second} {
		err := s.Set("key", []byte("value"), expireIn)

		var storeErr *store.Error
		if !errors.As(err, &storeErr) {
			t.Fatalf("Expected *store.Error, got %v", err)
		}
		if storeErr.Code != store.RetCUnsupportedOperation {
			t.Errorf("Expected %s, got %s", store.RetCUnsupportedOperation, storeErr.Code)
		}
	}

	if _, _, err := s.Get("key"); err != nil {
		t.Errorf("Unexpected error for supported Get: %v", err)
	}
}
