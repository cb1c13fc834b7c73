package onewire

import (
	"errors"
	"testing"
)

func TestParseSensorID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    SensorID
		wantErr bool
	}{
		{
			name: "valid DS18B20 id",
			raw:  "28.AB12CD34EF00",
			want: "28.AB12CD34EF00",
		},
		{
			name: "lowercase hex is canonicalised",
			raw:  "26.aabbccddeeff",
			want: "26.AABBCCDDEEFF",
		},
		{
			name:    "missing separator",
			raw:     "28AB12CD34EF00",
			wantErr: true,
		},
		{
			name:    "short serial",
			raw:     "28.AB12CD34EF",
			wantErr: true,
		},
		{
			name:    "non-hex family",
			raw:     "ZZ.AB12CD34EF00",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSensorID(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSensorID(%q) expected error, got %q", tt.raw, got)
				}
				if !errors.Is(err, ErrInvalidSensorID) {
					t.Errorf("error = %v, want ErrInvalidSensorID", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSensorID(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseSensorID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSensorIDNormalized(t *testing.T) {
	id := SensorID("28.AB12CD34EF00")
	if got := id.Normalized(); got != "28_AB12CD34EF00" {
		t.Errorf("Normalized() = %q, want %q", got, "28_AB12CD34EF00")
	}
}

func TestSensorIDFamily(t *testing.T) {
	tests := []struct {
		id   SensorID
		want string
	}{
		{"28.AB12CD34EF00", "28"},
		{"7E.001122334455", "7E"},
		{"26.000000000001", "26"},
	}

	for _, tt := range tests {
		if got := tt.id.Family(); got != tt.want {
			t.Errorf("Family(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestSensorIDFromROM(t *testing.T) {
	rom := []byte{0x10, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	id, err := sensorIDFromROM(rom)
	if err != nil {
		t.Fatalf("sensorIDFromROM() unexpected error: %v", err)
	}
	if id != "10.AABBCCDDEEFF" {
		t.Errorf("sensorIDFromROM() = %q, want %q", id, "10.AABBCCDDEEFF")
	}

	if _, err := sensorIDFromROM([]byte{0x10, 0xAA}); err == nil {
		t.Error("sensorIDFromROM() with short rom expected error")
	}
}
