package normalize

import (
	"testing"

	"github.com/nclalperen/game-tracker-mvp/internal/models"
	"github.com/shopspring/decimal"
)

func TestTitle(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "basic", in: "  The  Witcher 3 ", want: "the witcher 3"},
		{name: "tabs and newlines", in: "Hades\t\nII", want: "hades ii"},
		{name: "empty", in: "", want: ""},
		{name: "only spaces", in: "   ", want: ""},
		{name: "decomposed accent", in: "Pokémon", want: "pokémon"},
		{name: "no-break space", in: "Hades\u00a0II", want: "hades ii"},
		{name: "ideographic space", in: "Hades\u3000 II ", want: "hades ii"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.in); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("NBSP shares identity key", func(t *testing.T) {
		if a, b := IdentityKey("Hades\u00a0II", models.PlatformPC), IdentityKey("Hades II", models.PlatformPC); a != b {
			t.Errorf("expected equal keys, got %q and %q", a, b)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		inputs := []string{
			"  The  Witcher 3 ",
			"HADES",
			"Pokémon   Violet",
			"İstanbul Kıyamet",
			" Ori  and the Blind Forest ",
			"",
		}
		for _, in := range inputs {
			once := Title(in)
			if twice := Title(once); twice != once {
				t.Errorf("Title not idempotent for %q: %q then %q", in, once, twice)
			}
		}
	})
}

func TestExtractTitle(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Hades", want: "Hades"},
		{name: "colon subtitle", in: "Death Stranding: Director's Cut", want: "Death Stranding"},
		{name: "spaced hyphen", in: "Stardew Valley - Switch", want: "Stardew Valley"},
		{name: "em dash", in: "Celeste — Farewell", want: "Celeste"},
		{name: "en dash", in: "Celeste – Farewell", want: "Celeste"},
		{name: "pipe", in: "Hades | Supergiant", want: "Hades"},
		{name: "url stripped", in: "Hades https://store.steampowered.com/app/1145360", want: "Hades"},
		{name: "only url", in: "https://store.steampowered.com/app/1145360", want: ""},
		{name: "leading separator falls back", in: ": Hades", want: ": Hades"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.in); got != tt.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlatform(t *testing.T) {
	tc := []struct {
		in   string
		want models.Platform
	}{
		{"PC", models.PlatformPC},
		{" steam ", models.PlatformPC},
		{"Epic Games", models.PlatformPC},
		{"GOG", models.PlatformPC},
		{"Xbox Series X", models.PlatformXbox},
		{"PS5", models.PlatformPlayStation},
		{"PlayStation 4", models.PlatformPlayStation},
		{"Nintendo Switch", models.PlatformSwitch},
		{"Android", models.PlatformAndroid},
		{"mobile", models.PlatformAndroid},
		{"Atari", Unrecognized},
		{"", Unrecognized},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := Platform(tt.in); got != tt.want {
				t.Errorf("Platform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := PlatformOrDefault("Atari"); got != DefaultPlatform {
		t.Errorf("expected default platform, got %s", got)
	}
}

func TestStatus(t *testing.T) {
	tc := []struct {
		in   string
		want models.Status
	}{
		{"backlog", models.StatusBacklog},
		{"Playing", models.StatusPlaying},
		{"play", models.StatusPlaying},
		{"Beat it", models.StatusBeaten},
		{"finished", models.StatusBeaten},
		{"dropped", models.StatusAbandoned},
		{"Wishlist", models.StatusWishlist},
		{"owned", models.StatusOwned},
		{"purchased", models.StatusOwned},
		{"???", Unrecognized},
		{"", Unrecognized},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := Status(tt.in); got != tt.want {
				t.Errorf("Status(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := StatusOrDefault("???"); got != DefaultStatus {
		t.Errorf("expected default status, got %s", got)
	}
}

func TestDetectAccount(t *testing.T) {
	t.Run("Steam store URL", func(t *testing.T) {
		hint, ok := DetectAccount("Hades https://store.steampowered.com/app/1145360/Hades/")
		if !ok {
			t.Fatal("expected steam account to be detected")
		}
		if hint.Label != "Steam" || hint.Platform != models.PlatformPC {
			t.Errorf("unexpected hint: %+v", hint)
		}
		if hint.AppID == nil || *hint.AppID != 1145360 {
			t.Errorf("expected app id 1145360, got %v", hint.AppID)
		}
	})

	t.Run("steam protocol", func(t *testing.T) {
		hint, ok := DetectAccount("steam://run/620")
		if !ok || hint.AppID == nil || *hint.AppID != 620 {
			t.Errorf("expected app id 620, got %+v ok=%v", hint, ok)
		}
	})

	t.Run("no storefront", func(t *testing.T) {
		if _, ok := DetectAccount("Hades"); ok {
			t.Error("expected no account for plain title")
		}
	})
}

func TestOptionalNumber(t *testing.T) {
	if v := OptionalNumber("42.5"); v == nil || *v != 42.5 {
		t.Errorf("expected 42.5, got %v", v)
	}
	if v := OptionalNumber("0"); v == nil || *v != 0 {
		t.Errorf("expected explicit zero, got %v", v)
	}
	for _, in := range []string{"", "  ", "n/a", "12abc", "inf", "+Inf", "-Inf", "NaN", "Infinity"} {
		if v := OptionalNumber(in); v != nil {
			t.Errorf("expected unset for %q, got %v", in, *v)
		}
	}
}

func TestLabel(t *testing.T) {
	tc := []struct {
		in   string
		want string
	}{
		{" Steam ", "steam"},
		{"Steam  Deck", "steam deck"},
		{"steam\tdeck", "steam deck"},
		{"Steam\u00a0Deck", "steam deck"},
		{"", ""},
	}
	for _, tt := range tc {
		if got := Label(tt.in); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptionalDecimal(t *testing.T) {
	tc := []struct {
		in   string
		want string
	}{
		{"300", "300"},
		{"149,90", "149.9"},
		{"₺ 59.99", "59.99"},
	}
	for _, tt := range tc {
		got := OptionalDecimal(tt.in)
		if got == nil || got.String() != tt.want {
			t.Errorf("OptionalDecimal(%q) = %v, want %s", tt.in, got, tt.want)
		}
	}

	if got := OptionalDecimal("free"); got != nil {
		t.Errorf("expected unset for invalid price, got %v", got)
	}
}

func TestServices(t *testing.T) {
	got := Services(" Game Pass ; EA Play Pro,, game pass ")
	if len(got) != 2 || got[0] != "Game Pass" || got[1] != "EA Play Pro" {
		t.Errorf("unexpected services: %v", got)
	}
	if got := Services(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestPricePerHour(t *testing.T) {
	price := decimal.NewFromInt(200)
	hours := 25.0

	got := PricePerHour(&price, &hours)
	if got == nil || !got.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected 8, got %v", got)
	}

	if PricePerHour(nil, &hours) != nil {
		t.Error("expected unset without price")
	}

	zero := 0.0
	if PricePerHour(&price, &zero) != nil {
		t.Error("expected unset with zero hours")
	}

	odd := 3.0
	if got := PricePerHour(&price, &odd); got.String() != "66.67" {
		t.Errorf("expected 66.67, got %s", got)
	}
}
