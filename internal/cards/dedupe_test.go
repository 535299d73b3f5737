package cards

import "testing"

func strp(s string) *string { return &s }

func TestDedupe_EmailKeyWins(t *testing.T) {
	rows := []Row{
		{Email1: strp("john@abc.com"), FullName: strp("John")},
		{Email1: strp("john@abc.com"), FullName: strp("Jane")},
		{Email1: strp("jane@xyz.com"), FullName: strp("Jane")},
	}
	got := Dedupe(rows)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if *got[0].FullName != "John" {
		t.Errorf("first occurrence did not win: %q", *got[0].FullName)
	}
}

func TestDedupe_FallbackKey(t *testing.T) {
	rows := []Row{
		{Phone1: strp("9876543210"), FullName: strp("Bob"), Company: strp("X")},
		{Phone1: strp("9876543210"), FullName: strp("BOB"), Company: strp("x")}, // same after lowercase
		{Phone1: strp("1111111111"), FullName: strp("Alice"), Company: strp("Y")},
	}
	got := Dedupe(rows)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

// The six-row determinism case: rows 1, 2, 4, 6 survive in order.
func TestDedupe_Deterministic(t *testing.T) {
	rows := []Row{
		{Email1: strp("john@abc.com")},
		{Email1: strp("jane@xyz.com")},
		{Email1: strp("john@abc.com")},
		{Phone1: strp("9876543210"), FullName: strp("Bob")},
		{Phone1: strp("9876543210"), FullName: strp("Bob")},
		{Email1: strp("sam@test.com")},
	}
	got := Dedupe(rows)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	wantKeys := []string{
		"email:john@abc.com",
		"email:jane@xyz.com",
		"fallback:9876543210|bob|",
		"email:sam@test.com",
	}
	for i, want := range wantKeys {
		if key := DedupKey(got[i]); key != want {
			t.Errorf("row %d key = %q, want %q", i, key, want)
		}
	}
}

func TestDedupe_MixedKeys(t *testing.T) {
	rows := []Row{
		{Email1: strp("john@abc.com"), Phone1: strp("111"), FullName: strp("John"), Company: strp("A")},
		{Phone1: strp("222"), FullName: strp("Bob"), Company: strp("B")},
		{Email1: strp("john@abc.com"), Phone1: strp("333"), FullName: strp("J. Doe"), Company: strp("C")},
	}
	if got := Dedupe(rows); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestDedupe_Empty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestDedupe_SingleRow(t *testing.T) {
	rows := []Row{{Email1: strp("x@y.com")}}
	got := Dedupe(rows)
	if len(got) != 1 || *got[0].Email1 != "x@y.com" {
		t.Errorf("unexpected result: %+v", got)
	}
}
