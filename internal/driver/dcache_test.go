package driver

import (
	"errors"
	"testing"

	"girder/internal/bridge"
	"girder/internal/fault"
)

func testCache(t *testing.T) *DiskCache {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err := OpenDiskCache("girder-test")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDiskCache_PutGet(t *testing.T) {
	c := testCache(t)
	key := HashBytes([]byte("module contents"))

	in := &DiskPayload{
		Schema:    diskCacheSchemaVersion,
		Module:    "unit.c",
		OK:        true,
		FuncCount: 2,
		FuncNames: []string{"main", "helper"},
	}
	if err := c.Put(key, in); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	var out DiskPayload
	hit, err := c.Get(key, &out)
	if err != nil || !hit {
		t.Fatalf("Get() = %v, %v", hit, err)
	}
	if out.Module != "unit.c" || !out.OK || out.FuncCount != 2 || len(out.FuncNames) != 2 {
		t.Errorf("payload = %+v", out)
	}
}

func TestDiskCache_Miss(t *testing.T) {
	c := testCache(t)
	var out DiskPayload
	hit, err := c.Get(HashBytes([]byte("never stored")), &out)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if hit {
		t.Error("unexpected hit")
	}
}

func TestDiskCache_SchemaMismatch(t *testing.T) {
	c := testCache(t)
	key := HashBytes([]byte("old entry"))
	if err := c.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	hit, err := c.Get(key, &out)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if hit {
		t.Error("stale schema must read as a miss")
	}
}

func TestDiskCache_DropAll(t *testing.T) {
	c := testCache(t)
	key := HashBytes([]byte("doomed"))
	if err := c.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll() error: %v", err)
	}
}

func TestDiskCache_NilReceiver(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Digest{}, &DiskPayload{}); err != nil {
		t.Errorf("nil Put() error: %v", err)
	}
	if hit, err := c.Get(Digest{}, &DiskPayload{}); hit || err != nil {
		t.Errorf("nil Get() = %v, %v", hit, err)
	}
}

func TestVerdictRoundTrip_Success(t *testing.T) {
	unit := &Unit{Functions: []*bridge.Function{
		{Name: "main"},
		{Name: "helper"},
	}}
	payload := verdictPayload("unit.c", unit, nil)
	if !payload.OK || payload.FuncCount != 2 {
		t.Fatalf("payload = %+v", payload)
	}
	if err := payloadVerdict(payload); err != nil {
		t.Errorf("verdict = %v", err)
	}
}

func TestVerdictRoundTrip_Fault(t *testing.T) {
	orig := fault.NotSupportedYet(fault.UnsupportedVectorization)
	payload := verdictPayload("unit.c", nil, orig)
	got := payloadVerdict(payload)
	if item, ok := fault.UnsupportedOf(got); !ok || item != fault.UnsupportedVectorization {
		t.Fatalf("verdict = %v", got)
	}
	if got.Error() != orig.Error() {
		t.Errorf("rendering drifted: %q vs %q", got.Error(), orig.Error())
	}

	orig2 := fault.InvariantViolation("register type mismatch")
	got2 := payloadVerdict(verdictPayload("unit.c", nil, orig2))
	if got2.Error() != orig2.Error() {
		t.Errorf("rendering drifted: %q vs %q", got2.Error(), orig2.Error())
	}
}

func TestVerdictRoundTrip_ForeignError(t *testing.T) {
	payload := verdictPayload("unit.c", nil, errors.New("disk on fire"))
	got := payloadVerdict(payload)
	if kind, ok := fault.KindOf(got); !ok || kind != fault.KindLoading {
		t.Fatalf("verdict = %v", got)
	}
}
