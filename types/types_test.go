package types

import (
	"testing"
)

func TestHashRoundTrip(t *testing.T) {
	s := "4d027c72cee4689ba3d5fd163304ec6b96d996bcf30fbc1a7f1f5bdf2059cb59"
	h, err := HashFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	if h.String() != s {
		t.Fatalf("expected %s, got %s", s, h)
	}

	buf, err := h.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "\""+s+"\"" {
		t.Fatalf("unexpected json %s", buf)
	}

	var h2 Hash
	if err = h2.UnmarshalJSON(buf); err != nil {
		t.Fatal(err)
	}
	if h2 != h {
		t.Fatalf("expected %s, got %s", h, h2)
	}
}

func TestHashFromStringErrors(t *testing.T) {
	if _, err := HashFromString("abcd"); err == nil {
		t.Error("expected err on short input")
	}
	if _, err := HashFromString("zz027c72cee4689ba3d5fd163304ec6b96d996bcf30fbc1a7f1f5bdf2059cb59"); err == nil {
		t.Error("expected err on invalid hex")
	}
}

func TestHashCmp(t *testing.T) {
	low := MustHashFromString("0000000000000000000000000000000000000000000000000000000000000001")
	high := MustHashFromString("ff00000000000000000000000000000000000000000000000000000000000000")

	if low.Cmp(high) != -1 {
		t.Error("expected low < high")
	}
	if high.Cmp(low) != 1 {
		t.Error("expected high > low")
	}
	if low.Cmp(low) != 0 {
		t.Error("expected equality")
	}
	if ZeroHash.Cmp(low) != -1 {
		t.Error("expected zero below everything")
	}
}

func TestDifficultyJSONRoundTrip(t *testing.T) {
	d := DifficultyFrom64(412975968250)

	buf, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var d2 Difficulty
	if err = d2.UnmarshalJSON(buf); err != nil {
		t.Fatal(err)
	}
	if !d2.Equals(d) {
		t.Fatalf("expected %s, got %s", d, d2)
	}

	// plain decimal is accepted as well
	var d3 Difficulty
	if err = d3.UnmarshalJSON([]byte("412975968250")); err != nil {
		t.Fatal(err)
	}
	if !d3.Equals(d) {
		t.Fatalf("expected %s, got %s", d, d3)
	}
}
