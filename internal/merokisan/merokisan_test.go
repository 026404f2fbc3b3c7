package merokisan

import "testing"

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Language
		wantErr bool
	}{
		{
			name:  "full nepali tag",
			input: "ne-NP",
			want:  Nepali,
		},
		{
			name:  "bare english code",
			input: "en",
			want:  English,
		},
		{
			name:  "name with whitespace",
			input: "  English ",
			want:  English,
		},
		{
			name:  "devanagari label",
			input: "नेपाली",
			want:  Nepali,
		},
		{
			name:    "unsupported",
			input:   "hi-IN",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLanguage(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLanguage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLanguage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLanguageToggle(t *testing.T) {
	if got := Nepali.Toggle(); got != English {
		t.Errorf("Nepali.Toggle() = %v, want %v", got, English)
	}
	if got := English.Toggle(); got != Nepali {
		t.Errorf("English.Toggle() = %v, want %v", got, Nepali)
	}
	if got := Nepali.Toggle().Toggle(); got != Nepali {
		t.Errorf("double toggle = %v, want %v", got, Nepali)
	}
}

func TestLanguageCodeAndLabel(t *testing.T) {
	tests := []struct {
		lang      Language
		wantCode  string
		wantLabel string
	}{
		{Nepali, "ne", "नेपाली"},
		{English, "en", "EN"},
	}

	for _, tt := range tests {
		t.Run(tt.lang.String(), func(t *testing.T) {
			if got := tt.lang.Code(); got != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got, tt.wantCode)
			}
			if got := tt.lang.Label(); got != tt.wantLabel {
				t.Errorf("Label() = %v, want %v", got, tt.wantLabel)
			}
		})
	}
}
