package api

import "testing"

func TestStartRejectsNilSession(t *testing.T) {
	if err := Start(Config{Port: 0}, nil); err == nil {
		t.Fatal("Start accepted a nil session")
	}
}
