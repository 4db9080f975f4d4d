package bplus

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"pmdb/dberr"
)

func mustInsert(t *testing.T, tr *Tree, k Key, v string) {
	t.Helper()
	if err := tr.Insert(k, []byte(v)); err != nil {
		t.Fatalf("insert %v: %v", k, err)
	}
}

func TestKeyEncoding(t *testing.T) {
	one, err := IntKey(1).Encode()
	if err != nil {
		t.Fatalf("encode 1: %v", err)
	}
	if !bytes.Equal(one, []byte{0, 0, 0, 0, 0, 0, 0, 1}) {
		t.Errorf("encode 1 = % x", one)
	}
	big, err := IntKey(256).Encode()
	if err != nil {
		t.Fatalf("encode 256: %v", err)
	}
	if !bytes.Equal(big, []byte{0, 0, 0, 0, 0, 0, 1, 0}) {
		t.Errorf("encode 256 = % x", big)
	}
	// Big-endian encoding keeps numeric order under byte comparison.
	if bytes.Compare(one, big) >= 0 {
		t.Errorf("encoded 1 should sort before encoded 256")
	}

	txt, err := TextKey("abc").Encode()
	if err != nil {
		t.Fatalf("encode text: %v", err)
	}
	if !bytes.Equal(txt, []byte("abc")) {
		t.Errorf("encode abc = % x", txt)
	}

	if _, err := (Key{}).Encode(); !errors.Is(err, dberr.ErrUnsupportedKeyType) {
		t.Errorf("zero key encode: got %v, want ErrUnsupportedKeyType", err)
	}
	if _, err := NewKey(3.14); !errors.Is(err, dberr.ErrUnsupportedKeyType) {
		t.Errorf("NewKey(float): got %v, want ErrUnsupportedKeyType", err)
	}
}

func TestNewTreeOrderTooSmall(t *testing.T) {
	if _, err := NewTree(2); err == nil {
		t.Fatalf("order 2 should be rejected")
	}
	if _, err := NewTree(3); err != nil {
		t.Fatalf("order 3 should be accepted, got %v", err)
	}
}

func TestEmptyTree(t *testing.T) {
	tr, _ := NewTree(DefaultOrder)

	if _, found, err := tr.Search(IntKey(1)); err != nil || found {
		t.Errorf("search on empty tree: found=%v err=%v", found, err)
	}
	if ok, err := tr.Delete(IntKey(1)); err != nil || ok {
		t.Errorf("delete on empty tree: ok=%v err=%v", ok, err)
	}
	if tr.Scan().Valid() {
		t.Errorf("scan of empty tree should be invalid")
	}
	if tr.Height() != 1 {
		t.Errorf("empty tree height = %d, want 1", tr.Height())
	}
	if tr.Len() != 0 {
		t.Errorf("empty tree len = %d, want 0", tr.Len())
	}
}

// Order 4 holds three keys per node, so the fourth insert forces the first
// leaf split and the root ends up with exactly one separator key.
func TestSplitScenario(t *testing.T) {
	tr, err := NewTree(4)
	if err != nil {
		t.Fatalf("new tree: %v", err)
	}
	values := []string{"a", "b", "c", "d", "e"}
	for i, v := range values {
		mustInsert(t, tr, IntKey(uint64((i+1)*10)), v)
	}

	if h := tr.Height(); h != 2 {
		t.Errorf("height = %d, want 2", h)
	}
	if n := tr.RootKeyCount(); n != 1 {
		t.Errorf("root key count = %d, want 1", n)
	}

	for i, v := range values {
		got, found, err := tr.Search(IntKey(uint64((i + 1) * 10)))
		if err != nil || !found {
			t.Fatalf("search %d: found=%v err=%v", (i+1)*10, found, err)
		}
		if string(got) != v {
			t.Errorf("search %d = %q, want %q", (i+1)*10, got, v)
		}
	}
	if _, found, _ := tr.Search(IntKey(25)); found {
		t.Errorf("search 25 should find nothing")
	}

	it, err := tr.RangeSearch(IntKey(15), IntKey(45))
	if err != nil {
		t.Fatalf("range search: %v", err)
	}
	var got []string
	for _, v := range it.Values() {
		got = append(got, string(v))
	}
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("range [15,45) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range [15,45)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	ok, err := tr.Delete(IntKey(30))
	if err != nil || !ok {
		t.Fatalf("delete 30: ok=%v err=%v", ok, err)
	}
	if _, found, _ := tr.Search(IntKey(30)); found {
		t.Errorf("30 still found after delete")
	}
	if ok, _ := tr.Delete(IntKey(30)); ok {
		t.Errorf("second delete of 30 should report false")
	}
	if tr.Len() != 4 {
		t.Errorf("len after delete = %d, want 4", tr.Len())
	}
}

func TestOrderedScanAfterRandomInserts(t *testing.T) {
	tr, _ := NewTree(4)
	rng := rand.New(rand.NewSource(1))
	const n = 200

	perm := rng.Perm(n)
	for _, k := range perm {
		mustInsert(t, tr, IntKey(uint64(k)), fmt.Sprintf("v%d", k))
	}

	if tr.Len() != n {
		t.Fatalf("len = %d, want %d", tr.Len(), n)
	}
	if tr.Height() < 3 {
		t.Errorf("height = %d, expected at least 3 for %d keys at order 4", tr.Height(), n)
	}

	var prev []byte
	count := 0
	for it := tr.Scan(); it.Valid(); it.Next() {
		if prev != nil && bytes.Compare(prev, it.Key()) >= 0 {
			t.Fatalf("scan out of order at entry %d", count)
		}
		prev = append(prev[:0], it.Key()...)
		count++
	}
	if count != n {
		t.Errorf("scan yielded %d entries, want %d", count, n)
	}

	for _, k := range perm {
		got, found, err := tr.Search(IntKey(uint64(k)))
		if err != nil || !found {
			t.Fatalf("search %d: found=%v err=%v", k, found, err)
		}
		if want := fmt.Sprintf("v%d", k); string(got) != want {
			t.Errorf("search %d = %q, want %q", k, got, want)
		}
	}
	if _, found, _ := tr.Search(IntKey(n + 5)); found {
		t.Errorf("absent key reported found")
	}
}

func TestRangeBounds(t *testing.T) {
	tr, _ := NewTree(4)
	for i := 0; i < 50; i++ {
		mustInsert(t, tr, IntKey(uint64(i*2)), fmt.Sprintf("v%d", i*2))
	}

	// Start below the minimum, end above the maximum.
	it, err := tr.RangeSearch(IntKey(0), IntKey(1000))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if got := len(it.Values()); got != 50 {
		t.Errorf("full range yielded %d, want 50", got)
	}

	// Bounds that fall between stored keys.
	it, err = tr.RangeSearch(IntKey(5), IntKey(11))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	vals := it.Values()
	if len(vals) != 3 { // 6, 8, 10
		t.Fatalf("range [5,11) yielded %d entries, want 3", len(vals))
	}
	if string(vals[0]) != "v6" || string(vals[2]) != "v10" {
		t.Errorf("range [5,11) = %q..%q, want v6..v10", vals[0], vals[2])
	}

	// Empty interval.
	it, err = tr.RangeSearch(IntKey(7), IntKey(8))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if it.Valid() {
		t.Errorf("range [7,8) should be empty")
	}
}

func TestDuplicateKeys(t *testing.T) {
	tr, _ := NewTree(4)
	mustInsert(t, tr, IntKey(7), "first")
	mustInsert(t, tr, IntKey(7), "second")

	if tr.Len() != 2 {
		t.Fatalf("len = %d, want 2", tr.Len())
	}
	it, err := tr.RangeSearch(IntKey(7), IntKey(8))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if got := len(it.Values()); got != 2 {
		t.Fatalf("equal range yielded %d entries, want 2", got)
	}

	// Delete removes one entry at a time.
	if ok, _ := tr.Delete(IntKey(7)); !ok {
		t.Fatalf("first delete failed")
	}
	if _, found, _ := tr.Search(IntKey(7)); !found {
		t.Errorf("one duplicate should remain")
	}
	if ok, _ := tr.Delete(IntKey(7)); !ok {
		t.Fatalf("second delete failed")
	}
	if _, found, _ := tr.Search(IntKey(7)); found {
		t.Errorf("no entry should remain")
	}
}

func TestTextKeys(t *testing.T) {
	tr, _ := NewTree(4)
	words := []string{"pear", "apple", "cherry", "banana", "fig", "date"}
	for _, w := range words {
		mustInsert(t, tr, TextKey(w), w)
	}

	var got []string
	for it := tr.Scan(); it.Valid(); it.Next() {
		got = append(got, string(it.Value()))
	}
	want := []string{"apple", "banana", "cherry", "date", "fig", "pear"}
	if len(got) != len(want) {
		t.Fatalf("scan = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scan[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	it, err := tr.RangeSearch(TextKey("b"), TextKey("d"))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	vals := it.Values()
	if len(vals) != 2 || string(vals[0]) != "banana" || string(vals[1]) != "cherry" {
		t.Errorf("range [b,d) = %q", vals)
	}
}

func TestDescendingInserts(t *testing.T) {
	tr, _ := NewTree(3)
	for i := 100; i > 0; i-- {
		mustInsert(t, tr, IntKey(uint64(i)), fmt.Sprintf("v%d", i))
	}
	if tr.Len() != 100 {
		t.Fatalf("len = %d, want 100", tr.Len())
	}
	it := tr.Scan()
	if string(it.Value()) != "v1" {
		t.Errorf("first scanned value = %q, want v1", it.Value())
	}
	var prev []byte
	for ; it.Valid(); it.Next() {
		if prev != nil && bytes.Compare(prev, it.Key()) >= 0 {
			t.Fatalf("scan out of order")
		}
		prev = append(prev[:0], it.Key()...)
	}
}

func TestDeleteMany(t *testing.T) {
	tr, _ := NewTree(4)
	const n = 64
	for i := 0; i < n; i++ {
		mustInsert(t, tr, IntKey(uint64(i)), fmt.Sprintf("v%d", i))
	}
	for i := 0; i < n; i += 2 {
		ok, err := tr.Delete(IntKey(uint64(i)))
		if err != nil || !ok {
			t.Fatalf("delete %d: ok=%v err=%v", i, ok, err)
		}
	}
	if tr.Len() != n/2 {
		t.Fatalf("len = %d, want %d", tr.Len(), n/2)
	}
	for i := 0; i < n; i++ {
		_, found, err := tr.Search(IntKey(uint64(i)))
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if found != (i%2 == 1) {
			t.Errorf("search %d found=%v, want %v", i, found, i%2 == 1)
		}
	}
}
