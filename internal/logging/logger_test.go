package logging

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("[Hook] grid %dx%d", 4, 4)
	if got != "[Hook] grid 4x4" {
		t.Errorf("unexpected message %q", got)
	}

	SetLogger(nil)
	Logf("dropped")
	if got != "[Hook] grid 4x4" {
		t.Errorf("no-op logger wrote %q", got)
	}
}
