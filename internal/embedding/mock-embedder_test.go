package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/hyperjump/vektor/pkg/utils"
)

func TestMockEmbedder_deterministicUnitVectors(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, err := e.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "hello")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text should embed identically")
		}
	}
	if n := utils.L2Norm(a); math.Abs(n-1.0) > 1e-5 {
		t.Errorf("norm = %f", n)
	}
	if e.Dimensions() != 16 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}

func TestMockEmbedder_batchMatchesSingle(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()
	batch, err := e.EmbedBatch(ctx, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	single, _ := e.Embed(ctx, "y")
	for i := range single {
		if batch[1][i] != single[i] {
			t.Fatal("batch row should match single embed")
		}
	}
}

func TestMockEmbedder_emptyBatch(t *testing.T) {
	e := NewMockEmbedder(8)
	out, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("empty input should yield empty output, got %d rows", len(out))
	}
	if e.Calls() != 0 {
		t.Errorf("empty batch should not count a forward pass")
	}
}
