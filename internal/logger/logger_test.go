package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"pw", "hunter2", "user_id", "alice", "path", "/api/login", "dangling"})
	if len(got) != 7 {
		t.Fatalf("len = %d", len(got))
	}
	if got[1] != "[REDACTED]" {
		t.Errorf("pw not redacted: %v", got[1])
	}
	if s, _ := got[3].(string); s == "alice" || len(s) != len("hash:")+12 {
		t.Errorf("user_id not hashed: %v", got[3])
	}
	if got[5] != "/api/login" {
		t.Errorf("path changed: %v", got[5])
	}
	if got[6] != "dangling" {
		t.Errorf("odd trailing key lost: %v", got[6])
	}
}

func TestHashValueStable(t *testing.T) {
	if hashValue("bob") != hashValue("bob") {
		t.Fatal("hash should be deterministic")
	}
	if hashValue("") != "" {
		t.Fatal("empty value should stay empty")
	}
}
