package platform

import "testing"

func TestAppNameDefault(t *testing.T) {
	if got := (Options{}).appName(); got != DefaultAppName {
		t.Fatalf("unexpected app name: got %q want %q", got, DefaultAppName)
	}
	if got := (Options{AppName: "x"}).appName(); got != "x" {
		t.Fatalf("unexpected app name: got %q want x", got)
	}
}
