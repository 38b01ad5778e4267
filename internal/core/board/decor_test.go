package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecorFor_FillSpansInsideBorder(t *testing.T) {
	d := DecorFor(2, 3)
	assert.InDelta(t, 2*(1-2*BorderThickness), d.Fill.Size.X(), 1e-12)
	assert.InDelta(t, 3*(1-2*BorderThickness), d.Fill.Size.Y(), 1e-12)
	assert.Equal(t, 0.0, d.Fill.Center.X())
	assert.Equal(t, 0.0, d.Fill.Center.Y())
}

func TestDecorFor_SegmentsStayWithinFootprint(t *testing.T) {
	d := DecorFor(1.5, 2.7)
	for i, seg := range d.Segments {
		maxX := seg.Center.X() + seg.Size.X()/2
		maxY := seg.Center.Y() + seg.Size.Y()/2
		assert.LessOrEqual(t, maxX, 1.5/2+1e-12, "segment %d", i)
		assert.LessOrEqual(t, maxY, 2.7/2+1e-12, "segment %d", i)
	}
}

func TestDecorFor_ScalesWithFootprint(t *testing.T) {
	small := DecorFor(1, 1)
	big := DecorFor(2, 2)
	for i := range small.Segments {
		assert.InDelta(t, small.Segments[i].Size.X()*2, big.Segments[i].Size.X(), 1e-12)
		assert.InDelta(t, small.Segments[i].Center.Y()*2, big.Segments[i].Center.Y(), 1e-12)
	}
}

func TestDecor_TracksBoardScale(t *testing.T) {
	b := New(1.8)
	b.ScaleBy(2 / MinScale) // scale 2, footprint 2 x 3.6
	d := b.Decor()
	assert.InDelta(t, 2*(1-2*BorderThickness), d.Fill.Size.X(), 1e-12)
	assert.InDelta(t, 3.6*(1-2*BorderThickness), d.Fill.Size.Y(), 1e-12)
}
