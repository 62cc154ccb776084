package calendar

import (
	"errors"
	"testing"
)

func TestNewRejectsMalformedDates(t *testing.T) {
	cases := []string{
		"",
		"01.01",
		"01.01.2400.5",
		"aa.01.2400",
		"01.bb.2400",
		"01.01.cccc",
		"00.01.2400",
		"31.01.2400",
		"01.13.2400",
		"01.00.2400",
		"01/01/2400",
	}
	for _, in := range cases {
		if _, err := New(in, 24); !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("New(%q): expected ErrInvalidDateFormat, got %v", in, err)
		}
	}
}

func TestNewRejectsZeroDayLength(t *testing.T) {
	if _, err := New("01.01.2400", 0); !errors.Is(err, ErrInvalidDayLength) {
		t.Fatalf("expected ErrInvalidDayLength, got %v", err)
	}
}

func TestCurrentDateIsZeroPadded(t *testing.T) {
	c, err := New(" 1.2.2400 ", 24)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.CurrentDate(); got != "01.02.2400" {
		t.Errorf("CurrentDate = %q, want 01.02.2400", got)
	}
	if got := c.FullTime(); got != "01.02.2400 00:00" {
		t.Errorf("FullTime = %q", got)
	}
}

func TestAdvanceOneHourRollsOver(t *testing.T) {
	c, _ := New("30.12.2400", 3)
	c.AdvanceOneHour()
	c.AdvanceOneHour()
	if c.CurrentDate() != "30.12.2400" || c.Hour() != 2 {
		t.Fatalf("before rollover: %s", c.FullTime())
	}
	c.AdvanceOneHour()
	if c.CurrentDate() != "01.01.2401" || c.Hour() != 0 {
		t.Errorf("after rollover: %s, want 01.01.2401 00:00", c.FullTime())
	}
}

func TestAdvanceOneHourMonthBoundary(t *testing.T) {
	c, _ := New("30.01.2400", 1)
	c.AdvanceOneHour()
	if got := c.CurrentDate(); got != "01.02.2400" {
		t.Errorf("got %s, want 01.02.2400", got)
	}
}

func TestAdvanceHoursMatchesIterative(t *testing.T) {
	starts := []string{"01.01.2400", "30.12.2399", "15.06.0", "29.11.2400"}
	dayLengths := []int{1, 2, 7, 24, 25, 100}
	hours := []int{0, 1, 2, 23, 24, 25, 359, 360, 719, 8640, 10007, 123457}

	for _, start := range starts {
		for _, dl := range dayLengths {
			for _, n := range hours {
				iter, _ := New(start, dl)
				// Offset the hour so the starting point is mid-day.
				iter.AdvanceOneHour()
				direct := iter.Clone()

				for i := 0; i < n; i++ {
					iter.AdvanceOneHour()
				}
				direct.AdvanceHours(n)

				if iter.FullTime() != direct.FullTime() {
					t.Errorf("start=%s dayLength=%d n=%d: iterative %s, direct %s",
						start, dl, n, iter.FullTime(), direct.FullTime())
				}
			}
		}
	}
}

func TestAdvanceHoursNegativeIsNoop(t *testing.T) {
	c, _ := New("05.05.2400", 24)
	c.AdvanceHours(-10)
	if c.FullTime() != "05.05.2400 00:00" {
		t.Errorf("got %s", c.FullTime())
	}
}

func TestMatchesDate(t *testing.T) {
	c, _ := New("01.01.2400", 24)
	if !c.MatchesDate("01.01.2400") {
		t.Error("expected exact match")
	}
	if !c.MatchesDate("1.1.2400") {
		t.Error("expected match after normalization")
	}
	if c.MatchesDate("02.01.2400") {
		t.Error("unexpected match on different day")
	}
	if c.MatchesDate("garbage") {
		t.Error("malformed date must never match")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c, _ := New("01.01.2400", 24)
	cp := c.Clone()
	cp.AdvanceHours(48)
	if c.CurrentDate() != "01.01.2400" {
		t.Errorf("original changed to %s", c.CurrentDate())
	}
	if cp.CurrentDate() != "03.01.2400" {
		t.Errorf("clone = %s, want 03.01.2400", cp.CurrentDate())
	}
}
