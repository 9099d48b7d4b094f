package store

import (
	"math"
	"testing"

	"github.com/lazypower/decay/internal/decay"
)

func TestRecordAndGetCalculation(t *testing.T) {
	db := testDB(t)

	r := decay.Params{InitialAmount: 1000, DecayRate: 0.01, ElapsedTime: 10}.Evaluate()
	c, err := db.RecordCalculation(r, true)
	if err != nil {
		t.Fatalf("RecordCalculation: %v", err)
	}
	if c.ID == 0 || c.RunID == "" {
		t.Fatalf("expected id and run id, got %+v", c)
	}

	got, err := db.GetCalculation(c.RunID)
	if err != nil {
		t.Fatalf("GetCalculation: %v", err)
	}
	if got == nil {
		t.Fatal("expected calculation")
	}
	if got.Result != r {
		t.Errorf("Result = %+v, want %+v", got.Result, r)
	}
	if !got.Strict {
		t.Error("Strict = false, want true")
	}
	if got.CreatedAt != c.CreatedAt {
		t.Errorf("CreatedAt = %d, want %d", got.CreatedAt, c.CreatedAt)
	}
}

func TestGetCalculationMissing(t *testing.T) {
	db := testDB(t)

	got, err := db.GetCalculation("no-such-run")
	if err != nil {
		t.Fatalf("GetCalculation: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRecordNaNResult(t *testing.T) {
	db := testDB(t)

	r := decay.Params{InitialAmount: 1000, DecayRate: 1.5, ElapsedTime: 2}.Evaluate()
	c, err := db.RecordCalculation(r, false)
	if err != nil {
		t.Fatalf("RecordCalculation: %v", err)
	}

	got, err := db.GetCalculation(c.RunID)
	if err != nil {
		t.Fatalf("GetCalculation: %v", err)
	}
	if !math.IsNaN(got.Result.DecayedAmount) {
		t.Errorf("DecayedAmount = %v, want NaN", got.Result.DecayedAmount)
	}
	if got.Result.DecayRate != 1.5 {
		t.Errorf("DecayRate = %v, want 1.5", got.Result.DecayRate)
	}
}

func TestRecentCalculations(t *testing.T) {
	db := testDB(t)

	for _, e := range []float64{1, 2, 3} {
		r := decay.Params{InitialAmount: 100, DecayRate: 0.1, ElapsedTime: e}.Evaluate()
		if _, err := db.RecordCalculation(r, false); err != nil {
			t.Fatalf("RecordCalculation: %v", err)
		}
	}

	n, err := db.CountCalculations()
	if err != nil {
		t.Fatalf("CountCalculations: %v", err)
	}
	if n != 3 {
		t.Errorf("CountCalculations = %d, want 3", n)
	}

	recent, err := db.RecentCalculations(2)
	if err != nil {
		t.Fatalf("RecentCalculations: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d calculations, want 2", len(recent))
	}
	if recent[0].Result.ElapsedTime != 3 || recent[1].Result.ElapsedTime != 2 {
		t.Errorf("unexpected order: %v, %v", recent[0].Result.ElapsedTime, recent[1].Result.ElapsedTime)
	}
}
