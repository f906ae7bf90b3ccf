package freespace

import "testing"

func TestAvailableOnRealPath(t *testing.T) {
	avail, err := Available(t.TempDir())
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if avail == 0 {
		t.Errorf("Available() = 0 on a real, presumably non-full filesystem")
	}
}

func TestAvailableOnMissingPathFails(t *testing.T) {
	if _, err := Available("/this/path/should/not/exist/hopefully"); err == nil {
		t.Errorf("expected an error for a nonexistent mount path")
	}
}
