package models

import "testing"

func TestImageForVariant(t *testing.T) {
	images := []string{"std.png", "runed.png", "sacred.png", "cursed.png"}

	tests := []struct {
		name    string
		images  []string
		variant string
		want    string
	}{
		{"standard maps to slot 0", images, VariantStandard, "std.png"},
		{"runed maps to slot 1", images, VariantRuned, "runed.png"},
		{"sacred maps to slot 2", images, VariantSacred, "sacred.png"},
		{"cursed maps to slot 3", images, VariantCursed, "cursed.png"},
		{"short array yields empty", []string{"std.png"}, VariantCursed, ""},
		{"unknown variant yields empty", images, "Mythic", ""},
		{"no images yields empty", nil, VariantStandard, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageForVariant(tt.images, tt.variant); got != tt.want {
				t.Errorf("ImageForVariant(%v, %q) = %q, want %q", tt.images, tt.variant, got, tt.want)
			}
		})
	}
}

func TestRaritiesDefaultToZero(t *testing.T) {
	var r Rarities
	for _, v := range Variants {
		if r.Of(v) != 0 {
			t.Errorf("zero-value rarities: %s = %d, want 0", v, r.Of(v))
		}
	}
}

func TestRaritiesOfAndAdd(t *testing.T) {
	r := Rarities{}
	r.Add(VariantRuned, 5)
	r.Add(VariantRuned, -2)
	r.Add(VariantCursed, 1)

	if got := r.Of(VariantRuned); got != 3 {
		t.Errorf("Runed = %d, want 3", got)
	}
	if got := r.Of(VariantCursed); got != 1 {
		t.Errorf("Cursed = %d, want 1", got)
	}
	if got := r.Of(VariantStandard); got != 0 {
		t.Errorf("Standard = %d, want 0", got)
	}
	// Unknown variants are ignored, not stored.
	r.Add("Mythic", 10)
	if got := r.Of("Mythic"); got != 0 {
		t.Errorf("Of(unknown) = %d, want 0", got)
	}
}

func TestIsValidVariant(t *testing.T) {
	for _, v := range Variants {
		if !IsValidVariant(v) {
			t.Errorf("IsValidVariant(%q) = false", v)
		}
	}
	for _, v := range []string{"", "standard", "Mythic"} {
		if IsValidVariant(v) {
			t.Errorf("IsValidVariant(%q) = true", v)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range Statuses {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false", s)
		}
	}
	if IsValidStatus("Shipped") {
		t.Error(`IsValidStatus("Shipped") = true`)
	}
}
