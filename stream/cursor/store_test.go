package cursor

import "testing"

// ensure implementations satisfy the interface
func TestStoreInterface(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
	var _ Store = (*SqliteStore)(nil)
	var _ Store = RedisStore{}
}

func TestMemoryStore(t *testing.T) {
	var s MemoryStore

	if got := s.Get("wss://backend/event"); got != 0 {
		t.Errorf("expected zero cursor for unknown key, got %d", got)
	}

	s.Set("wss://backend/event", 42)
	s.Set("wss://backend/group", 7)

	if got := s.Get("wss://backend/event"); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := s.Get("wss://backend/group"); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}

	s.Set("wss://backend/event", 43)
	if got := s.Get("wss://backend/event"); got != 43 {
		t.Errorf("expected overwrite to 43, got %d", got)
	}
}

func TestSqliteStore(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if got := s.Get("k"); got != 0 {
		t.Errorf("expected zero cursor for unknown key, got %d", got)
	}

	s.Set("k", 100)
	if got := s.Get("k"); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}

	s.Set("k", 200)
	if got := s.Get("k"); got != 200 {
		t.Errorf("expected upsert to 200, got %d", got)
	}
}

func TestSqliteStoreCustomTable(t *testing.T) {
	s, err := NewSQLiteStore(":memory:", WithTableName("stream_cursors"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if s.tableName != "stream_cursors" {
		t.Errorf("expected custom table name, got %q", s.tableName)
	}

	s.Set("k", 1)
	if got := s.Get("k"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}
