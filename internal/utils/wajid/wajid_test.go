package wajid

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "device suffix stripped",
			raw:  "15551234567:12@s.whatsapp.net",
			want: "15551234567@s.whatsapp.net",
		},
		{
			name: "already canonical",
			raw:  "15551234567@s.whatsapp.net",
			want: "15551234567@s.whatsapp.net",
		},
		{
			name:    "no separators",
			raw:     "15551234567",
			wantErr: true,
		},
		{
			name:    "empty number",
			raw:     ":12@s.whatsapp.net",
			wantErr: true,
		},
		{
			name:    "missing host",
			raw:     "15551234567:12@",
			wantErr: true,
		},
		{
			name:    "device but no host",
			raw:     "15551234567:12",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("Normalize(%q) error = %v, want ErrInvalidFormat", tt.raw, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	got, err := Number("15551234567:3@s.whatsapp.net")
	if err != nil {
		t.Fatalf("Number() error = %v", err)
	}
	if got != "15551234567" {
		t.Errorf("Number() = %q, want %q", got, "15551234567")
	}
}
