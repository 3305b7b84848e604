package studio_test

import (
	"testing"

	"github.com/amonks/blueprint/studio"
)

func TestResolveAddr(t *testing.T) {
	cases := []struct {
		name       string
		configured string
		explicit   string
		want       string
	}{
		{"default", "", "", "127.0.0.1:8323"},
		{"configured", "127.0.0.1:9000", "", "127.0.0.1:9000"},
		{"explicit wins", "127.0.0.1:9000", "127.0.0.1:9100", "127.0.0.1:9100"},
		{"bare port", "", "9100", "127.0.0.1:9100"},
		{"host and port", "", "0.0.0.0:9100", "0.0.0.0:9100"},
		{"whitespace", " 9100 ", "", "127.0.0.1:9100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := studio.ResolveAddr(tc.configured, tc.explicit)
			if err != nil {
				t.Fatalf("ResolveAddr failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestResolveAddrInvalid(t *testing.T) {
	for _, input := range []string{"notaport", "0", "-1", "70000"} {
		if _, err := studio.ResolveAddr("", input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}
