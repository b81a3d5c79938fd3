package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	def := []string{"GET", "POST"}
	if got := IfEmpty(nil, def); len(got) != 2 {
		t.Fatalf("nil input = %v", got)
	}
	if got := IfEmpty([]string{"DELETE"}, def); len(got) != 1 || got[0] != "DELETE" {
		t.Fatalf("kept input = %v", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString("workspace", "name"); got != "workspace" {
		t.Fatalf("got %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("want panic for blank name")
		}
	}()
	_ = MustString("   ", "name")
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"/workspaces/": "/workspaces",
		" compare  ":   "/compare",
		"//examples//": "/examples",
		"/":            "",
		"":             "",
	}
	for in, want := range cases {
		if want == "" {
			func() {
				defer func() {
					if recover() == nil {
						t.Fatalf("want panic for %q", in)
					}
				}()
				_ = MustPrefix(in)
			}()
			continue
		}
		if got := MustPrefix(in); got != want {
			t.Fatalf("in %q want %q got %q", in, want, got)
		}
	}
}
