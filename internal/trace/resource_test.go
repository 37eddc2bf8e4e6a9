package trace

import (
	"testing"

	"github.com/stacklens/stacklens/internal/testutil"
)

func TestAttachURLResources(t *testing.T) {
	thread := validThread()
	thread.Funcs.Name = append(thread.Funcs.Name, "onClick", "render", "eval")
	thread.Funcs.FileName = append(thread.Funcs.FileName,
		"https://example.com/app.js",
		"https://example.com/vendor.js",
		"self-hosted",
	)
	thread.Funcs.LineNumber = append(thread.Funcs.LineNumber, None, None, None)
	thread.Funcs.ColumnNumber = append(thread.Funcs.ColumnNumber, None, None, None)
	thread.Funcs.Resource = append(thread.Funcs.Resource, None, None, None)
	thread.Funcs.IsJS = append(thread.Funcs.IsJS, true, true, true)
	thread.Funcs.RelevantForJS = append(thread.Funcs.RelevantForJS, false, false, false)
	thread.Funcs.Length += 3

	thread.AttachURLResources()

	// Both URLs share an origin, so exactly one resource is synthesized.
	// The unparsable file name stays without a resource.
	if thread.Resources.Length != 1 {
		t.Fatalf("resource count: got %d, want 1", thread.Resources.Length)
	}
	if diff := testutil.Diff([]string{"example.com"}, thread.Resources.Host); diff != "" {
		t.Fatalf("host mismatch: %v", diff)
	}
	if got := thread.Resources.Type[0]; got != ResourceTypeWebhost {
		t.Fatalf("type: got %q, want %q", got, ResourceTypeWebhost)
	}
	if diff := testutil.Diff([]int{None, None, 0, 0, None}, thread.Funcs.Resource); diff != "" {
		t.Fatalf("func resources mismatch: %v", diff)
	}
}

func TestGetOrCreateForOriginCaches(t *testing.T) {
	var table ResourceTable
	cache := make(map[string]int)

	first := table.GetOrCreateForOrigin("https://a.example/x.js", cache)
	second := table.GetOrCreateForOrigin("https://a.example/x.js", cache)
	other := table.GetOrCreateForOrigin("https://b.example/y.js", cache)

	if first != second {
		t.Errorf("same origin produced two resources: %d and %d", first, second)
	}
	if other == first {
		t.Error("distinct origins share a resource")
	}
	if table.Length != 2 {
		t.Errorf("resource count: got %d, want 2", table.Length)
	}
}

func TestGetOrCreateForOriginUnparsable(t *testing.T) {
	var table ResourceTable
	cache := make(map[string]int)

	if got := table.GetOrCreateForOrigin("self-hosted", cache); got != None {
		t.Fatalf("got resource %d, want None", got)
	}
	// The negative verdict is cached too.
	if got := table.GetOrCreateForOrigin("self-hosted", cache); got != None {
		t.Fatalf("cached lookup: got %d, want None", got)
	}
	if table.Length != 0 {
		t.Fatalf("resource count: got %d, want 0", table.Length)
	}
}
