package protocol_test

import (
	"strings"
	"testing"

	"vyshim/internal/protocol"
)

func TestTrailingArgs(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want []string
	}{
		{name: "one", args: []string{"/a.py"}, want: []string{"/a.py"}},
		{name: "three", args: []string{"", "eth0", "/a.py"}, want: []string{"", "eth0", "/a.py"}},
		{name: "extra leading", args: []string{"x", "y", "VAR=1", "eth0", "/a.py"}, want: []string{"VAR=1", "eth0", "/a.py"}},
		{name: "none", args: nil, want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := protocol.TrailingArgs(tc.args)
			if strings.Join(got, "\x00") != strings.Join(tc.want, "\x00") || len(got) != len(tc.want) {
				t.Fatalf("TrailingArgs(%q) = %q, want %q", tc.args, got, tc.want)
			}
		})
	}
}

func TestTrailingArgsCopies(t *testing.T) {
	args := []string{"a", "b"}
	got := protocol.TrailingArgs(args)
	got[0] = "changed"
	if args[0] != "a" {
		t.Fatal("TrailingArgs must not alias its input")
	}
}

func TestBuildDescriptorReverseOrder(t *testing.T) {
	cases := []struct {
		trailing []string
		want     string
	}{
		{[]string{"/opt/vyatta/sbin/interface.py"}, "/opt/vyatta/sbin/interface.py"},
		{[]string{"eth0", "/x.py"}, "/x.pyeth0"},
		{[]string{"", "eth0", "/opt/vyatta/.../interface.py"}, "/opt/vyatta/.../interface.pyeth0"},
		{[]string{"VAR=1", "eth0", "/x.py"}, "/x.pyeth0VAR=1"},
		{[]string{"", "", ""}, ""},
	}
	for _, tc := range cases {
		if got := protocol.BuildDescriptor(tc.trailing); got != tc.want {
			t.Fatalf("BuildDescriptor(%q) = %q, want %q", tc.trailing, got, tc.want)
		}
	}
}

func TestBuildDescriptorTruncatesEachArgument(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := protocol.BuildDescriptor([]string{"tag", long})
	want := strings.Repeat("a", protocol.MaxArgBytes) + "tag"
	if got != want {
		t.Fatalf("unexpected descriptor (len %d): %q", len(got), got)
	}
}

func TestBuildDescriptorBoundsAdversarialInput(t *testing.T) {
	first := strings.Repeat("e", 4096)
	second := strings.Repeat("t", 4096)
	third := strings.Repeat("p", 4096)

	got := protocol.BuildDescriptor([]string{first, second, third})
	if len(got) != protocol.MaxDescriptorBytes {
		t.Fatalf("descriptor length = %d, want %d", len(got), protocol.MaxDescriptorBytes)
	}
	if len(got) >= protocol.DescriptorCapacity {
		t.Fatalf("descriptor overflows capacity: %d", len(got))
	}
	want := strings.Repeat("p", protocol.MaxArgBytes) +
		strings.Repeat("t", protocol.MaxArgBytes) +
		strings.Repeat("e", protocol.MaxDescriptorBytes-2*protocol.MaxArgBytes)
	if got != want {
		t.Fatalf("descriptor corrupted by truncation: %q", got)
	}
}

func TestBuildDescriptorProperty(t *testing.T) {
	pieces := []string{"", "x", "eth0", strings.Repeat("q", 126), strings.Repeat("r", 127), strings.Repeat("s", 128), "dp0p1s0.100"}
	for _, a := range pieces {
		for _, b := range pieces {
			for _, c := range pieces {
				trailing := []string{a, b, c}
				want := clip(c) + clip(b) + clip(a)
				if len(want) > protocol.MaxDescriptorBytes {
					want = want[:protocol.MaxDescriptorBytes]
				}
				if got := protocol.BuildDescriptor(trailing); got != want {
					t.Fatalf("BuildDescriptor(%q) = %q, want %q", trailing, got, want)
				}
			}
		}
	}
}

func clip(s string) string {
	if len(s) > protocol.MaxArgBytes {
		return s[:protocol.MaxArgBytes]
	}
	return s
}
