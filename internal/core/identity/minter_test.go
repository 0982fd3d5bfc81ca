package identity

import (
	"strings"
	"testing"
)

func TestMintIsDeterministic(t *testing.T) {
	m := NewMinter("wdo")

	first := m.Mint("script.py")
	second := m.Mint("script.py")
	if first != second {
		t.Fatalf("expected identical identifiers, got %q and %q", first, second)
	}
	if first != "wdo_script.py" {
		t.Fatalf("expected wdo_script.py, got %q", first)
	}
}

func TestMintSanitizesFilename(t *testing.T) {
	m := NewMinter("wdo")

	cases := []struct {
		input string
		want  string
	}{
		{"my file.py", "wdo_my_file.py"},
		{"weird$name!.js", "wdo_weird_name_.js"},
		{"../../../evil.py", "wdo_evil.py"},
		{"каталог.txt", "wdo________.txt"},
		{"snake_case-ok.json", "wdo_snake_case-ok.json"},
	}
	for _, tc := range cases {
		if got := m.Mint(tc.input); got != tc.want {
			t.Fatalf("Mint(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMintFallsBackForEmptyName(t *testing.T) {
	m := NewMinter("wdo")
	if got := m.Mint(""); got != "wdo_artifact.bin" {
		t.Fatalf("expected fallback identifier, got %q", got)
	}
}

func TestMintWithChecksumAppendsPrefix(t *testing.T) {
	m := NewMinter("wdo")

	got := m.MintWithChecksum("script.py", "abcdef0123456789deadbeef")
	if got != "wdo_script.py_abcdef01" {
		t.Fatalf("expected 8-char checksum suffix, got %q", got)
	}

	short := m.MintWithChecksum("script.py", "ab")
	if short != "wdo_script.py_ab" {
		t.Fatalf("expected short checksum kept whole, got %q", short)
	}
}

func TestChecksumIsHexSHA256(t *testing.T) {
	sum, err := Checksum(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if sum != want {
		t.Fatalf("Checksum() = %q, want %q", sum, want)
	}

	again, err := Checksum(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	if again != sum {
		t.Fatalf("checksum not deterministic: %q vs %q", again, sum)
	}
}
