package tracking

import (
	"testing"
	"testing/quick"
	"unicode/utf8"

	"github.com/dshills/hybridmd/internal/engine/buffer"
)

func change(rev uint64) buffer.Change {
	return buffer.Change{NewRange: buffer.Range{End: 1}, NewText: "x", Revision: rev}
}

func TestLogSince(t *testing.T) {
	l := NewLog(3)
	for rev := uint64(1); rev <= 2; rev++ {
		l.Record(change(rev))
	}
	got, ok := l.Since(0)
	if !ok || len(got) != 2 || got[0].Revision != 1 {
		t.Fatalf("Since(0) = %v, %v", got, ok)
	}
	for rev := uint64(3); rev <= 5; rev++ {
		l.Record(change(rev))
	}
	if l.Len() != 3 {
		t.Fatalf("Len = %d", l.Len())
	}
	if _, ok := l.Since(1); ok {
		t.Error("Since(1) should report dropped changes")
	}
	got, ok = l.Since(2)
	if !ok || len(got) != 3 || got[0].Revision != 3 || got[2].Revision != 5 {
		t.Errorf("Since(2) = %v, %v", got, ok)
	}
	if got, ok := l.Since(5); !ok || len(got) != 0 {
		t.Errorf("Since(5) = %v, %v", got, ok)
	}
	l.Reset()
	if l.Len() != 0 {
		t.Error("Reset kept changes")
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		old, new string
		want     Edit
	}{
		{"abc", "abc", Edit{Range: buffer.Range{Start: 3, End: 3}}},
		{"abc", "abXc", Edit{Range: buffer.Range{Start: 2, End: 2}, Text: "X"}},
		{"hello world", "hello", Edit{Range: buffer.Range{Start: 5, End: 11}}},
		{"", "new", Edit{Range: buffer.Range{}, Text: "new"}},
		{"aaa", "aa", Edit{Range: buffer.Range{Start: 2, End: 3}}},
		{"é", "è", Edit{Range: buffer.Range{Start: 0, End: 2}, Text: "è"}},
	}
	for _, tt := range tests {
		got := Diff(tt.old, tt.new)
		if got != tt.want {
			t.Errorf("Diff(%q, %q) = %+v, want %+v", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestDiffApplies(t *testing.T) {
	f := func(old, new string) bool {
		e := Diff(old, new)
		out := old[:e.Range.Start] + e.Text + old[e.Range.End:]
		return out == new && utf8.ValidString(e.Text)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
