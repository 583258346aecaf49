package profile

import (
	"errors"
	"strings"
	"testing"

	"phpfk/encoder-go/pkg/expr"
	"phpfk/encoder-go/pkg/symbols"
)

func TestDefaultProfile(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if p.Name != DefaultName {
		t.Fatalf("Default().Name = %q, want %q", p.Name, DefaultName)
	}
	if p.Alphabet != "9().^" {
		t.Fatalf("unexpected alphabet %q", p.Alphabet)
	}
	if p.IntegerJoin != JoinNumericParse {
		t.Fatalf("unexpected integer join %q", p.IntegerJoin)
	}
	if _, ok := p.Library.Operation(symbols.NameChr); !ok {
		t.Fatalf("nine library has no chr entry")
	}
	for _, c := range []byte("9().^") {
		if !p.Contains(c) {
			t.Fatalf("alphabet should contain %q", c)
		}
	}
	if p.Contains('8') || p.Contains('"') {
		t.Fatalf("alphabet should not contain 8 or quotes")
	}
}

func TestDefaultPrimitives(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if p.Seeds != "0123456789INF" {
		t.Fatalf("unexpected seeds %q", p.Seeds)
	}
	if err := p.Require(PrimCall, PrimXor, PrimConcat, PrimNumericCoercion, PrimSpread); err != nil {
		t.Fatalf("Require returned error: %v", err)
	}
	if p.Has(PrimIndex) {
		t.Fatalf("nine profile should not declare %s", PrimIndex)
	}
	if err := p.Require(PrimIndex); err == nil || !strings.Contains(err.Error(), `"index"`) {
		t.Fatalf("expected missing primitive error, got %v", err)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("brackets")
	if !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestLookupTrimsName(t *testing.T) {
	p, err := Lookup("  nine\n")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if p.Name != "nine" {
		t.Fatalf("got profile %q", p.Name)
	}
}

func TestAllSorted(t *testing.T) {
	all, err := All()
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) == 0 {
		t.Fatalf("no profiles registered")
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Fatalf("profiles not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
}

func TestCheckReportsOffset(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	err = p.Check("(9^9)+9")
	var alphaErr *expr.AlphabetError
	if !errors.As(err, &alphaErr) {
		t.Fatalf("expected AlphabetError, got %v", err)
	}
	if alphaErr.Offset != 5 || alphaErr.Char != '+' {
		t.Fatalf("unexpected error %+v", alphaErr)
	}
}

func TestLoadRejectsBadDescriptors(t *testing.T) {
	libs := map[string]Builder{"nine": symbols.Nine}
	cases := map[string]struct {
		yaml string
		want string
	}{
		"unknown field": {
			yaml: "profiles:\n  - name: x\n    colour: red\n",
			want: "field colour not found",
		},
		"missing name": {
			yaml: "profiles:\n  - alphabet: \"9\"\n    seeds: \"9\"\n",
			want: "without a name",
		},
		"bad join": {
			yaml: "profiles:\n  - name: x\n    alphabet: \"9().^\"\n    seeds: \"9\"\n    integer_join: shift\n    library: nine\n",
			want: "unsupported integer join",
		},
		"unknown primitive": {
			yaml: "profiles:\n  - name: x\n    alphabet: \"9().^\"\n    seeds: \"9\"\n    primitives: [call, goto]\n    integer_join: numeric-parse\n    library: nine\n",
			want: "unknown primitive \"goto\"",
		},
		"unknown library": {
			yaml: "profiles:\n  - name: x\n    alphabet: \"9().^\"\n    seeds: \"9\"\n    integer_join: numeric-parse\n    library: brackets\n",
			want: "no symbol library",
		},
		"alphabet too small": {
			yaml: "profiles:\n  - name: x\n    alphabet: \"9()^\"\n    seeds: \"9\"\n    integer_join: numeric-parse\n    library: nine\n",
			want: "outside the alphabet",
		},
		"duplicate": {
			yaml: "profiles:\n" +
				"  - {name: x, alphabet: \"9().^\", seeds: \"9\", integer_join: numeric-parse, library: nine}\n" +
				"  - {name: x, alphabet: \"9().^\", seeds: \"9\", integer_join: numeric-parse, library: nine}\n",
			want: "declared twice",
		},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			_, err := load([]byte(tc.yaml), libs)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
