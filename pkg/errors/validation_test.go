package errors

import "testing"

func TestValidateMeshFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr Code
	}{
		{"off", "bunny.off", ""},
		{"obj upper", "Part.OBJ", ""},
		{"xyz", "scan.xyz", ""},

		{"empty", "", ErrCodeInvalidInput},
		{"with dir", "meshes/bunny.off", ErrCodeInvalidInput},
		{"backslash", "meshes\\bunny.off", ErrCodeInvalidInput},
		{"hidden", ".bunny.off", ErrCodeInvalidInput},
		{"control char", "bun\x01ny.off", ErrCodeInvalidInput},
		{"too long", string(make([]byte, 300)), ErrCodeInvalidInput},
		{"no extension", "bunny", ErrCodeUnsupported},
		{"wrong extension", "bunny.stl", ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMeshFilename(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateMeshFilename(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if !Is(err, tt.wantErr) {
				t.Errorf("ValidateMeshFilename(%q) = %v, want code %s", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormatName(t *testing.T) {
	allowed := []string{"json", "svg", "off"}

	for _, name := range allowed {
		if err := ValidateFormatName(name, allowed); err != nil {
			t.Errorf("ValidateFormatName(%q) = %v", name, err)
		}
	}
	for _, name := range []string{"", "JSON", "png", "json "} {
		err := ValidateFormatName(name, allowed)
		if !Is(err, ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormatName(%q) = %v, want %s", name, err, ErrCodeInvalidFormat)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "out/bunny.json", false},
		{"valid nested", "results/2024/bunny.svg", false},
		{"valid filename only", "bunny.off", false},
		{"valid with dots", "v1.2.3/bunny.pdf", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidMesh,
		ErrCodeInvalidThreshold,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeInvalidConfig,
		ErrCodeTooLarge,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeCanceled,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
