package toolhost

import (
	"context"
	"errors"
	"testing"
)

func TestConnectToleratesBrokenServers(t *testing.T) {
	specs := []ServerSpec{
		{Name: "broken", Command: "/nonexistent/tool-server"},
		{Name: "off", Command: "/nonexistent/tool-server", Disabled: true},
	}

	host := Connect(context.Background(), specs, Options{})
	defer host.Close()

	statuses := host.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	broken := statuses[0]
	if broken.Name != "broken" || broken.Connected {
		t.Errorf("expected broken server down, got %+v", broken)
	}
	if broken.Err == "" {
		t.Error("expected connect error recorded")
	}

	off := statuses[1]
	if !off.Disabled || off.Connected || off.Err != "" {
		t.Errorf("expected disabled server skipped cleanly, got %+v", off)
	}

	if tools := host.Tools(); len(tools) != 0 {
		t.Errorf("expected no tools from a dead registry, got %v", tools)
	}
}

func TestCallUnknownTool(t *testing.T) {
	host := Connect(context.Background(), nil, Options{})
	defer host.Close()

	_, err := host.Call(context.Background(), "nonesuch", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	host := Connect(context.Background(), nil, Options{})
	if err := host.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := host.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}
