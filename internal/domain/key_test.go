package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestScanKey_Basename(t *testing.T) {
	assert.Equal(t, "MOB_N0B_2024_04_26_18_13_04", ScanKey("MOB_N0B_2024_04_26_18_13_04").Basename())
	assert.Equal(t, "MOB_N0B_2024_04_26_18_13_04", ScanKey("level3/MOB_N0B_2024_04_26_18_13_04").Basename())
	assert.Equal(t, "", ScanKey("level3/").Basename())
}

func TestNewChronological_SortsAscending(t *testing.T) {
	keys := []ScanKey{
		"MOB_N0B_2024_04_26_18_13_04",
		"MOB_N0B_2024_04_26_17_55_51",
		"MOB_N0B_2024_04_26_18_04_28",
	}
	got := NewChronological(keys)

	want := Chronological{
		"MOB_N0B_2024_04_26_17_55_51",
		"MOB_N0B_2024_04_26_18_04_28",
		"MOB_N0B_2024_04_26_18_13_04",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("chronological order mismatch (-want +got):\n%s", diff)
	}

	// Input slice is not mutated.
	assert.Equal(t, ScanKey("MOB_N0B_2024_04_26_18_13_04"), keys[0])
}

func TestChronological_TrailingWindow(t *testing.T) {
	c := NewChronological([]ScanKey{"a", "b", "c", "d", "e"})

	t.Run("takes the newest n, still ascending", func(t *testing.T) {
		assert.Equal(t, Chronological{"c", "d", "e"}, c.TrailingWindow(3))
	})

	t.Run("under-count returns everything", func(t *testing.T) {
		assert.Equal(t, c, c.TrailingWindow(10))
	})

	t.Run("exact count returns everything", func(t *testing.T) {
		assert.Equal(t, c, c.TrailingWindow(5))
	})

	t.Run("non-positive n is empty", func(t *testing.T) {
		assert.Empty(t, c.TrailingWindow(0))
		assert.Empty(t, c.TrailingWindow(-1))
	})
}

func TestToday_UsesInjectedClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 23, 59, 0, 0, time.UTC))
	SetClock(fake)
	defer SetClock(nil)

	assert.Equal(t, "2024_04_26", Today())

	fake.Advance(2 * time.Minute)
	assert.Equal(t, "2024_04_27", Today())
}
