package canvas

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.RGBA
	}{
		{"#000000", color.RGBA{0, 0, 0, 255}},
		{"#ffffff", color.RGBA{255, 255, 255, 255}},
		{"#FF0000", color.RGBA{255, 0, 0, 255}},
		{"#1a2B3c", color.RGBA{0x1a, 0x2b, 0x3c, 255}},
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"#abc", color.RGBA{0xaa, 0xbb, 0xcc, 255}},
		{"00ff00", color.RGBA{0, 255, 0, 255}},
		{" #0000ff ", color.RGBA{0, 0, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if err != nil {
				t.Fatalf("ParseHexColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseHexColor_Invalid(t *testing.T) {
	for _, input := range []string{"", "#", "#12345", "#1234567", "#zzzzzz", "#ggg"} {
		if _, err := ParseHexColor(input); err == nil {
			t.Errorf("ParseHexColor(%q) should fail", input)
		}
	}
}

func TestFormatHexColor(t *testing.T) {
	if got := FormatHexColor(color.RGBA{0x12, 0xab, 0x00, 255}); got != "#12ab00" {
		t.Errorf("FormatHexColor = %s, want #12ab00", got)
	}
}

func TestSampleColor(t *testing.T) {
	tests := []struct {
		name    string
		color   color.RGBA
		wantHex string
		wantHSL HSLColor
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, "#ff0000", HSLColor{0, 100, 50}},
		{"pure green", color.RGBA{0, 255, 0, 255}, "#00ff00", HSLColor{120, 100, 50}},
		{"pure blue", color.RGBA{0, 0, 255, 255}, "#0000ff", HSLColor{240, 100, 50}},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", HSLColor{0, 0, 0}},
		{"white", color.RGBA{255, 255, 255, 255}, "#ffffff", HSLColor{0, 0, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFilledBuffer(5, 5, tt.color)

			result, err := SampleColor(b.Image(), 2, 2)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
			if result.RGBA.A != 255 {
				t.Errorf("alpha: got %d, want 255", result.RGBA.A)
			}
			if result.HSL != tt.wantHSL {
				t.Errorf("HSL: got %+v, want %+v", result.HSL, tt.wantHSL)
			}
		})
	}
}

func TestSampleColor_Transparent(t *testing.T) {
	b := NewBuffer(5, 5)

	result, err := SampleColor(b.Image(), 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.RGBA.A != 0 {
		t.Errorf("alpha: got %d, want 0", result.RGBA.A)
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	b := NewBuffer(5, 5)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if _, err := SampleColor(b.Image(), p[0], p[1]); err == nil {
			t.Errorf("SampleColor(%d,%d) should fail", p[0], p[1])
		}
	}
}
