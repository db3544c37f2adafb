package checkpointer

import "testing"

type countingSaver struct {
	saves int
}

func (c *countingSaver) Save(dir string) error {
	c.saves++
	return nil
}

func TestBestScoreSavesOnNewBestOnly(t *testing.T) {
	saver := new(countingSaver)
	best := NewBestScore(saver, t.TempDir())

	// The best score starts at zero, so the first positive score saves
	if err := best.Checkpoint(0, 0.1); err != nil {
		t.Fatalf("could not checkpoint: %v", err)
	}
	if saver.saves != 1 {
		t.Fatalf("first positive score should checkpoint \n\thave(%v)",
			saver.saves)
	}

	// Ties and regressions do not save
	if err := best.Checkpoint(1, 0.1); err != nil {
		t.Fatalf("could not checkpoint: %v", err)
	}
	if err := best.Checkpoint(2, 0.05); err != nil {
		t.Fatalf("could not checkpoint: %v", err)
	}
	if saver.saves != 1 {
		t.Fatalf("tie or regression should not checkpoint \n\thave(%v)",
			saver.saves)
	}

	// A new best saves again
	if err := best.Checkpoint(3, 0.2); err != nil {
		t.Fatalf("could not checkpoint: %v", err)
	}
	if saver.saves != 2 {
		t.Fatalf("new best score should checkpoint \n\thave(%v)",
			saver.saves)
	}
	if best.Best() != 0.2 {
		t.Errorf("wrong best score \n\twant(%v) \n\thave(%v)", 0.2,
			best.Best())
	}
}

func TestBestScoreIgnoresNonPositiveScores(t *testing.T) {
	saver := new(countingSaver)
	best := NewBestScore(saver, t.TempDir())

	if err := best.Checkpoint(0, -0.5); err != nil {
		t.Fatalf("could not checkpoint: %v", err)
	}
	if err := best.Checkpoint(1, 0.0); err != nil {
		t.Fatalf("could not checkpoint: %v", err)
	}
	if saver.saves != 0 {
		t.Errorf("non-positive scores should not checkpoint \n\thave(%v)",
			saver.saves)
	}
}

func TestIntervalSavesEveryN(t *testing.T) {
	saver := new(countingSaver)
	interval, err := NewInterval(saver, t.TempDir(), 3)
	if err != nil {
		t.Fatalf("could not create checkpointer: %v", err)
	}

	for episode := 0; episode < 10; episode++ {
		if err := interval.Checkpoint(episode, 0.0); err != nil {
			t.Fatalf("could not checkpoint episode %v: %v", episode, err)
		}
	}

	// Episodes 3, 6, and 9
	if saver.saves != 3 {
		t.Errorf("wrong number of checkpoints \n\twant(%v) \n\thave(%v)", 3,
			saver.saves)
	}
}

func TestIntervalRejectsNonPositiveInterval(t *testing.T) {
	if _, err := NewInterval(new(countingSaver), t.TempDir(), 0); err == nil {
		t.Error("zero interval accepted")
	}
	if _, err := NewInterval(new(countingSaver), t.TempDir(), -2); err == nil {
		t.Error("negative interval accepted")
	}
}
