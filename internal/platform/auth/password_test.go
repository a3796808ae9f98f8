package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Raju9876")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "Raju9876" {
		t.Error("expected hash to differ from plaintext")
	}
	if !CheckPassword(hash, "Raju9876") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestDefaultPassword(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"Rahul Kumar", "9876543210", "Rahu3210"},
		{"राम प्रसाद", "9000012345", "रामप्2345"},
		{"श्री वर्मा", "9876501234", "श्री1234"},
		{"Om", "9876543210", "Om3210"},
		{"Asha Devi", "+91-98765-43210", "Asha3210"},
	}
	for _, tt := range tests {
		if got := DefaultPassword(tt.name, tt.phone); got != tt.want {
			t.Errorf("DefaultPassword(%q, %q) = %q, want %q", tt.name, tt.phone, got, tt.want)
		}
	}
}
