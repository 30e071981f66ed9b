package filter

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dop251/goja"

	"github.com/wordsieve/runtime/internal/logger"
)

// testLogHandler captures log records for testing.
type testLogHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}
func (h *testLogHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *testLogHandler) WithGroup(_ string) slog.Handler      { return h }

func (h *testLogHandler) attr(i int, key string) (string, bool) {
	var value string
	found := false
	h.records[i].Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value, found = a.Value.String(), true
			return false
		}
		return true
	})
	return value, found
}

func captureLogs(t *testing.T) *testLogHandler {
	t.Helper()
	handler := &testLogHandler{}
	orig := logger.Logger
	t.Cleanup(func() { logger.Logger = orig })
	logger.Logger = slog.New(handler)
	return handler
}

func mustJSConsole(t *testing.T, vm *goja.Runtime) *jsConsole {
	t.Helper()
	c, err := newJSConsole(vm, "filters[0]")
	if err != nil {
		t.Fatalf("newJSConsole: %v", err)
	}
	return c
}

func TestJSConsole_LogLevels(t *testing.T) {
	handler := captureLogs(t)
	vm := goja.New()
	_ = mustJSConsole(t, vm)

	for _, s := range []string{`console.error("e")`, `console.warn("w")`, `console.info("i")`, `console.log("l")`, `console.debug("d")`} {
		if _, err := vm.RunString(s); err != nil {
			t.Fatalf("run %q: %v", s, err)
		}
	}

	want := []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelInfo, slog.LevelDebug}
	if len(handler.records) != len(want) {
		t.Fatalf("got %d log records, want %d", len(handler.records), len(want))
	}
	for i, w := range want {
		if got := handler.records[i].Level; got != w {
			t.Errorf("record %d: level = %v, want %v", i, got, w)
		}
	}
	if id, _ := handler.attr(0, "module_id"); id != "filters[0]" {
		t.Errorf("module_id = %q, want filters[0]", id)
	}
}

func TestJSConsole_WordContext(t *testing.T) {
	handler := captureLogs(t)
	vm := goja.New()
	c := mustJSConsole(t, vm)

	c.SetWord("noon")
	if _, err := vm.RunString(`console.log("checking")`); err != nil {
		t.Fatal(err)
	}
	c.SetWord("")
	if _, err := vm.RunString(`console.log("idle")`); err != nil {
		t.Fatal(err)
	}

	if word, _ := handler.attr(0, "word"); word != "noon" {
		t.Errorf("word = %q, want noon", word)
	}
	if _, found := handler.attr(1, "word"); found {
		t.Error("word attribute should be absent when no word is set")
	}
}

func TestFormatValue(t *testing.T) {
	vm := goja.New()
	if _, err := vm.RunString(`
		var obj = {name: "noon", length: 4};
		var arr = [1, "two"];
		var cyc = {}; cyc.self = cyc;
		function fn() {}
	`); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		value goja.Value
		want  string
	}{
		{"nil", nil, "undefined"},
		{"undefined", goja.Undefined(), "undefined"},
		{"null", goja.Null(), "null"},
		{"string", vm.ToValue("eye"), "eye"},
		{"number", vm.ToValue(42), "42"},
		{"bool", vm.ToValue(true), "true"},
		{"object", vm.Get("obj"), `{"length":4,"name":"noon"}`},
		{"array", vm.Get("arr"), `[1,"two"]`},
		{"cycle", vm.Get("cyc"), "[Object]"},
		{"function", vm.Get("fn"), "[Function]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.value); got != tt.want {
				t.Errorf("formatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatArgs(t *testing.T) {
	vm := goja.New()
	got := formatArgs([]goja.Value{vm.ToValue("word"), vm.ToValue(3), vm.ToValue(false)})
	if got != "word 3 false" {
		t.Errorf("formatArgs() = %q", got)
	}
	if got := formatArgs(nil); got != "" {
		t.Errorf("formatArgs(nil) = %q, want empty", got)
	}
}

func TestJSConsole_LongMessageTruncation(t *testing.T) {
	handler := captureLogs(t)
	vm := goja.New()
	_ = mustJSConsole(t, vm)

	script := `console.log("` + strings.Repeat("a", MaxLogMessageLength+1000) + `")`
	if _, err := vm.RunString(script); err != nil {
		t.Fatalf("console.log with long message failed: %v", err)
	}
	msg := handler.records[0].Message
	if len(msg) != MaxLogMessageLength || !strings.HasSuffix(msg, "...") {
		t.Errorf("message length = %d, want %d with ellipsis", len(msg), MaxLogMessageLength)
	}
}
