package platform

import "testing"

func TestParseBBox_Valid(t *testing.T) {
	b, err := ParseBBox("545,310,350,269")
	if err != nil {
		t.Fatal(err)
	}
	if b.X != 545 || b.Y != 310 || b.Width != 350 || b.Height != 269 {
		t.Errorf("got %+v, want {545 310 350 269}", b)
	}
}

func TestParseBBox_WithSpaces(t *testing.T) {
	b, err := ParseBBox("10, 20, 300, 400")
	if err != nil {
		t.Fatal(err)
	}
	if b.X != 10 || b.Y != 20 || b.Width != 300 || b.Height != 400 {
		t.Errorf("got %+v, want {10 20 300 400}", b)
	}
}

func TestParseBBox_Invalid(t *testing.T) {
	tests := []string{
		"",
		"10,20,300",
		"10,20,300,400,500",
		"a,b,c,d",
		"10,20,abc,400",
	}
	for _, s := range tests {
		_, err := ParseBBox(s)
		if err == nil {
			t.Errorf("ParseBBox(%q) should fail", s)
		}
	}
}

func TestBounds_String(t *testing.T) {
	b := Bounds{X: 1, Y: 2, Width: 3, Height: 4}
	if got := b.String(); got != "1,2,3,4" {
		t.Errorf("String() = %q, want %q", got, "1,2,3,4")
	}
	if b.Empty() {
		t.Error("non-zero bounds should not be empty")
	}
	if !(Bounds{Width: 0, Height: 5}).Empty() {
		t.Error("zero width should be empty")
	}
}
