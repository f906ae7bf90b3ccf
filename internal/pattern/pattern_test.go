package pattern

import "testing"

func TestNewRejectsBadPatterns(t *testing.T) {
	for _, patt := range []string{
		"no-percent-here",
		"two%separate%runs",
		"",
	} {
		if _, err := New(patt); err == nil {
			t.Errorf("New(%q): expected error, got none", patt)
		}
	}
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		patt string
		i    int
		want string
	}{
		{"f%%%", 0, "f000"},
		{"f%%%", 7, "f007"},
		{"f%%%", 1234, "f1234"}, // overflow grows the filename
		{"dir/pre%%suf", 3, "dir/pre03suf"},
	}
	for _, tt := range tests {
		fs, err := New(tt.patt)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.patt, err)
		}
		got, err := fs.PathFor(tt.i)
		if err != nil {
			t.Fatalf("PathFor(%d): %v", tt.i, err)
		}
		if got != tt.want {
			t.Errorf("PathFor(%q, %d) = %q, want %q", tt.patt, tt.i, got, tt.want)
		}
	}
}

func TestSidecarPath(t *testing.T) {
	fs, err := New("dir/pre%%%suf")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := fs.SidecarPath()
	if err != nil {
		t.Fatalf("SidecarPath: %v", err)
	}
	if want := "dir/pre000suf.cfg"; got != want {
		t.Errorf("SidecarPath() = %q, want %q", got, want)
	}
}

func TestFromSidecarPathRoundTrip(t *testing.T) {
	sidecars := []string{
		"dir/pre000suf.cfg",
		"f00.cfg",
		"a/b/c00d.cfg",
	}
	for _, sc := range sidecars {
		fs, err := FromSidecarPath(sc)
		if err != nil {
			t.Fatalf("FromSidecarPath(%q): %v", sc, err)
		}
		got, err := fs.SidecarPath()
		if err != nil {
			t.Fatalf("SidecarPath: %v", err)
		}
		if got != sc {
			t.Errorf("sidecar_path_of(template_of(%q)) = %q, want %q (template idempotence)", sc, got, sc)
		}
	}
}

func TestFromSidecarPathRejectsNonCfg(t *testing.T) {
	if _, err := FromSidecarPath("no-suffix-here"); err == nil {
		t.Errorf("expected error for missing .cfg suffix")
	}
}

func TestCfgPathFromTemplate(t *testing.T) {
	got, err := CfgPathFromTemplate("out/chunk%%%.bin")
	if err != nil {
		t.Fatalf("CfgPathFromTemplate: %v", err)
	}
	if want := "out/chunk000.bin.cfg"; got != want {
		t.Errorf("CfgPathFromTemplate() = %q, want %q", got, want)
	}
}

func TestReplaceInBasenameOnlyTouchesBasename(t *testing.T) {
	fs, err := FromSidecarPath("0dir0/pre0mid.cfg")
	if err != nil {
		t.Fatalf("FromSidecarPath: %v", err)
	}
	path, err := fs.PathFor(0)
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	if want := "0dir0/pre0mid"; path != want {
		t.Errorf("directory-component zeros must survive untouched: got %q, want %q", path, want)
	}
}
