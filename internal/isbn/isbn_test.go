package isbn

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"978-7-02-000220-7", "9787020002207"},
		{"0 306 40615 2", "0306406152"},
		{"043942089x", "043942089X"},
		{"not an isbn", ""},
		{"97870200..07", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsISBN10(t *testing.T) {
	valid := []string{"0306406152", "043942089X", "7020002207"}
	for _, s := range valid {
		if !IsISBN10(s) {
			t.Errorf("IsISBN10(%q) = false, want true", s)
		}
	}
	invalid := []string{"0306406153", "030640615", "03064061521", "abcdefghij"}
	for _, s := range invalid {
		if IsISBN10(s) {
			t.Errorf("IsISBN10(%q) = true, want false", s)
		}
	}
}

func TestIsISBN13(t *testing.T) {
	// Dream of the Red Chamber, People's Literature Publishing House.
	if !IsISBN13("9787020002207") {
		t.Error("IsISBN13(9787020002207) = false, want true")
	}
	if !IsISBN13("9780306406157") {
		t.Error("IsISBN13(9780306406157) = false, want true")
	}
	invalid := []string{"9787020002208", "978702000220", "97870200022071", "978702000220X"}
	for _, s := range invalid {
		if IsISBN13(s) {
			t.Errorf("IsISBN13(%q) = true, want false", s)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in       string
		wantNorm string
		wantKind string
	}{
		{"9787020002207", "9787020002207", "isbn13"},
		{"978-7-02-000220-7", "9787020002207", "isbn13"},
		{"0306406152", "0306406152", "isbn10"},
		{"dream of the red chamber", "", ""},
		{"12345", "", ""},
	}
	for _, tt := range tests {
		norm, kind := Classify(tt.in)
		if norm != tt.wantNorm || kind != tt.wantKind {
			t.Errorf("Classify(%q) = (%q, %q), want (%q, %q)", tt.in, norm, kind, tt.wantNorm, tt.wantKind)
		}
	}
}

func TestTo13(t *testing.T) {
	if got := To13("0306406152"); got != "9780306406157" {
		t.Errorf("To13(0306406152) = %q, want 9780306406157", got)
	}
	if got := To13("7020002207"); got != "9787020002207" {
		t.Errorf("To13(7020002207) = %q, want 9787020002207", got)
	}
	if got := To13("invalid"); got != "" {
		t.Errorf("To13(invalid) = %q, want empty", got)
	}
}

func TestDedupeKey(t *testing.T) {
	// ISBN-13 preferred.
	if got := DedupeKey("0306406152", "9787020002207"); got != "9787020002207" {
		t.Errorf("DedupeKey = %q, want 9787020002207", got)
	}
	// Falls back to converted ISBN-10.
	if got := DedupeKey("0306406152", ""); got != "9780306406157" {
		t.Errorf("DedupeKey = %q, want 9780306406157", got)
	}
	if got := DedupeKey("", ""); got != "" {
		t.Errorf("DedupeKey = %q, want empty", got)
	}
}
