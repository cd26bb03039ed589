package core

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func tx(year, month, day int, amount float64) Transaction {
	return Transaction{
		UserID:   1,
		Date:     NewDate(year, month, day),
		Category: "Food",
		Amount:   decimal.NewFromFloat(amount),
	}
}

func TestAggregateMonthlyGroupsAndSums(t *testing.T) {
	txs := []Transaction{
		tx(2024, 1, 3, 10),
		tx(2024, 1, 20, -5), // refunds count by magnitude
		tx(2024, 3, 1, 7.50),
	}

	points := AggregateMonthly(txs)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Period != (Period{2024, time.January}) || !points[0].Total.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("january point wrong: %+v", points[0])
	}
	// February has no data and must not appear as a zero point.
	if points[1].Period != (Period{2024, time.March}) || !points[1].Total.Equal(decimal.NewFromFloat(7.50)) {
		t.Fatalf("march point wrong: %+v", points[1])
	}
}

func TestAggregateMonthlyOrderIndependent(t *testing.T) {
	var txs []Transaction
	for i := 0; i < 30; i++ {
		txs = append(txs, tx(2022+i/12, 1+i%12, 10, float64(50+i)))
	}

	want := AggregateMonthly(txs)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]Transaction, len(txs))
		copy(shuffled, txs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := AggregateMonthly(shuffled)
		if len(got) != len(want) {
			t.Fatalf("trial %d: length %d != %d", trial, len(got), len(want))
		}
		for i := range got {
			if got[i].Period != want[i].Period || !got[i].Total.Equal(want[i].Total) {
				t.Fatalf("trial %d point %d: %+v != %+v", trial, i, got[i], want[i])
			}
		}
	}
}

func TestSplitCurrentMonthIncomplete(t *testing.T) {
	series := AggregateMonthly([]Transaction{
		tx(2024, 4, 2, 100),
		tx(2024, 5, 2, 110),
		tx(2024, 6, 2, 55), // month in progress
	})
	now := NewDate(2024, 6, 15)

	split := SplitCurrentMonth(series, now)
	if len(split.Training) != 2 {
		t.Fatalf("expected 2 training points, got %d", len(split.Training))
	}
	if split.Partial == nil || !split.Partial.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("partial actual wrong: %v", split.Partial)
	}
	if split.Horizon != 13 {
		t.Fatalf("expected horizon 13, got %d", split.Horizon)
	}
	if split.Start != (Period{2024, time.June}) {
		t.Fatalf("expected projections to start at the current month, got %v", split.Start)
	}
}

func TestSplitCurrentMonthComplete(t *testing.T) {
	series := AggregateMonthly([]Transaction{
		tx(2024, 4, 2, 100),
		tx(2024, 5, 2, 110),
	})
	now := NewDate(2024, 7, 1) // June had no data, May is simply the last month

	split := SplitCurrentMonth(series, now)
	if len(split.Training) != 2 || split.Partial != nil {
		t.Fatalf("expected full training and nil partial, got %d / %v", len(split.Training), split.Partial)
	}
	if split.Horizon != 12 {
		t.Fatalf("expected horizon 12, got %d", split.Horizon)
	}
	if split.Start != (Period{2024, time.June}) {
		t.Fatalf("expected projections to continue after the last data month, got %v", split.Start)
	}
}
