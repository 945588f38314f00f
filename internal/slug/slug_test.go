// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Home Cleaning", want: "home-cleaning"},
		{name: "single word", input: "Doctors", want: "doctors"},
		{name: "ampersand", input: "Plumbing & Heating", want: "plumbing-heating"},
		{name: "punctuation", input: "Kids' Tutors, Online!", want: "kids-tutors-online"},
		{name: "parentheses", input: "Repairs (24/7)", want: "repairs-247"},
		{name: "accents folded", input: "Électricité Générale", want: "electricite-generale"},
		{name: "german umlaut", input: "Gärtner Service", want: "gartner-service"},
		{name: "tilde", input: "Niñera", want: "ninera"},
		{name: "already a slug", input: "pet-grooming", want: "pet-grooming"},
		{name: "repeated separators", input: "Car  --  Wash", want: "car-wash"},
		{name: "leading and trailing junk", input: "  --Beauty--  ", want: "beauty"},
		{name: "tabs and newlines", input: "Moving\tand\nStorage", want: "moving-and-storage"},
		{name: "non latin script dropped", input: "Уборка", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "digits kept", input: "Top 10 Salons", want: "top-10-salons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	inputs := []string{"Home Cleaning", "Électricité Générale", "Repairs (24/7)", "pet-grooming"}
	for _, in := range inputs {
		once := Generate(in)
		if twice := Generate(once); twice != once {
			t.Errorf("Generate not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestGenerate_AccentInsensitive(t *testing.T) {
	if Generate("Café Équipe") != Generate("Cafe Equipe") {
		t.Errorf("accented and plain names should share a slug: %q vs %q",
			Generate("Café Équipe"), Generate("Cafe Equipe"))
	}
}
