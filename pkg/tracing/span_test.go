package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSpanTree(t *testing.T) {
	ctx, root := Start(context.Background(), "run")
	_, load := Start(ctx, "load_index")
	load.SetAttr("terms", 2)
	load.End()
	_, eval := Start(ctx, "evaluate")
	eval.End()
	root.End()

	if len(root.Children) != 2 {
		t.Fatalf("root has %d children", len(root.Children))
	}
	if load.TraceID != root.TraceID || root.TraceID == "" {
		t.Errorf("trace ids: root %q child %q", root.TraceID, load.TraceID)
	}
	if FromContext(ctx) != root {
		t.Error("FromContext did not return the root span")
	}

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewJSONHandler(&buf, nil)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("logged %d lines, want 3", len(lines))
	}
	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if second["span"] != "load_index" || second["depth"] != float64(1) || second["terms"] != float64(2) {
		t.Errorf("child line = %v", second)
	}
}

func TestEndedSpanIsClosed(t *testing.T) {
	_, s := Start(context.Background(), "load_index")
	s.SetAttr("format", "json")
	s.End()
	d := s.Duration
	s.SetAttr("terms", 3)
	s.End()

	if _, ok := s.Attrs["terms"]; ok {
		t.Error("attribute set after End was recorded")
	}
	if s.Attrs["format"] != "json" {
		t.Errorf("attrs = %v", s.Attrs)
	}
	if s.Duration != d {
		t.Errorf("second End changed the duration from %v to %v", d, s.Duration)
	}
}

func TestNewTraceWithoutParent(t *testing.T) {
	_, a := Start(context.Background(), "a")
	_, b := Start(context.Background(), "b")
	if a.TraceID == b.TraceID {
		t.Error("independent spans share a trace id")
	}
}
