package gitrepo

import "testing"

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"acme/widgets":    "acme__widgets",
		"host:port/x":     "host_port__x",
		"name with space": "name_with_space",
	}
	for in, want := range cases {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q): got %q, want %q", in, got, want)
		}
	}
}
