package server

import "testing"

func TestValidatePIN(t *testing.T) {
	valid := []string{"0000", "1234", "9999"}
	for _, pin := range valid {
		if ok, msg := validatePIN(pin); !ok {
			t.Errorf("expected %q to be valid, got %q", pin, msg)
		}
	}

	invalid := []string{"", "123", "12345", "abcd", "12a4", " 1234"}
	for _, pin := range invalid {
		if ok, _ := validatePIN(pin); ok {
			t.Errorf("expected %q to be rejected", pin)
		}
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"plain", "report.pdf", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"traversal", "../../etc/passwd", false},
		{"forward slash", "a/b.txt", false},
		{"backslash", `a\b.txt`, false},
		{"dot dot", "a..b", false},
		{"too long", string(make([]byte, 256)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ok, _ := validateFilename(tt.filename); ok != tt.want {
				t.Errorf("validateFilename(%q) = %v, want %v", tt.filename, ok, tt.want)
			}
		})
	}
}

func TestValidateFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want bool
	}{
		{1, true},
		{maxFileSizeBytes, true},
		{maxFileSizeBytes + 1, false},
		{0, false},
		{-1, false},
	}
	for _, tt := range tests {
		if ok, _ := validateFileSize(tt.size); ok != tt.want {
			t.Errorf("validateFileSize(%d) = %v, want %v", tt.size, ok, tt.want)
		}
	}
}

func TestValidateMimeType(t *testing.T) {
	valid := []string{"text/plain", "application/pdf", "application/vnd.ms-excel", "audio/x-wav"}
	for _, mt := range valid {
		if ok, msg := validateMimeType(mt); !ok {
			t.Errorf("expected %q to be valid, got %q", mt, msg)
		}
	}

	invalid := []string{"", "text", "/plain", "text/", "text plain", "text//plain"}
	for _, mt := range invalid {
		if ok, _ := validateMimeType(mt); ok {
			t.Errorf("expected %q to be rejected", mt)
		}
	}
}

func TestValidateFileID(t *testing.T) {
	if ok, _ := validateFileID("507f1f77bcf86cd799439011"); !ok {
		t.Error("expected 24-hex id to be valid")
	}
	if ok, _ := validateFileID("507F1F77BCF86CD799439011"); !ok {
		t.Error("expected uppercase hex id to be valid")
	}

	invalid := []string{
		"",
		"507f1f77bcf86cd79943901",   // 23 chars
		"507f1f77bcf86cd7994390111", // 25 chars
		"507f1f77bcf86cd79943901g",  // non-hex
	}
	for _, id := range invalid {
		if ok, _ := validateFileID(id); ok {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"../../etc/passwd", "passwd"},
		{`..\..\windows\system32`, "system32"},
		{"report final (v2).pdf", "report_final__v2_.pdf"},
		{"data.tar.gz", "data.tar.gz"},
		{"résumé.doc", "r_sum_.doc"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameCharset(t *testing.T) {
	got := sanitizeFilename("../../etc/passwd")
	for _, c := range got {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '_', c == '-':
		default:
			t.Fatalf("sanitized name contains %q", c)
		}
	}
}
