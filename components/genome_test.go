package components

import (
	"math/rand"
	"testing"
)

func TestNewGenomeCooperationBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		g := NewGenome(rng)
		if g.Cooperation < 0 || g.Cooperation > 1 {
			t.Fatalf("cooperation = %v outside [0,1]", g.Cooperation)
		}
	}
}

func TestScoresLinear(t *testing.T) {
	var g Genome
	g.Weights[ActHarvest][FeatBias] = 2.0
	g.Weights[ActHarvest][FeatSelfEnergy] = -1.0

	var f Features
	f[FeatBias] = 1
	f[FeatSelfEnergy] = 0.5

	scores := g.Scores(&f)
	if scores[ActHarvest] != 1.5 {
		t.Errorf("harvest score = %v, want 1.5", scores[ActHarvest])
	}
	if scores[ActIdle] != 0 {
		t.Errorf("idle score = %v, want 0 for zero weights", scores[ActIdle])
	}
}

func TestMutateRateZero(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := NewGenome(rng)
	before := g

	if n := g.Mutate(rng, 0, 1.0, 4); n != 0 {
		t.Errorf("mutated %d genes at rate 0", n)
	}
	if g != before {
		t.Error("rate 0 mutation changed the genome")
	}
}

func TestMutateClampsToLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := NewGenome(rng)
	g.Mutate(rng, 1.0, 100.0, 1.5)

	for i := range g.Weights {
		for j := range g.Weights[i] {
			if w := g.Weights[i][j]; w < -1.5 || w > 1.5 {
				t.Fatalf("weight [%d][%d] = %v escaped limit", i, j, w)
			}
		}
	}
	if g.Cooperation < 0 || g.Cooperation > 1 {
		t.Errorf("cooperation = %v outside [0,1]", g.Cooperation)
	}
}

func TestCrossoverTakesFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := NewGenome(rng)
	b := NewGenome(rng)

	child := Crossover(rng, &a, &b)
	for i := range child.Weights {
		for j := range child.Weights[i] {
			w := child.Weights[i][j]
			if w != a.Weights[i][j] && w != b.Weights[i][j] {
				t.Fatalf("gene [%d][%d] = %v came from neither parent", i, j, w)
			}
		}
	}
	if child.Cooperation != a.Cooperation && child.Cooperation != b.Cooperation {
		t.Errorf("cooperation %v came from neither parent", child.Cooperation)
	}
}
