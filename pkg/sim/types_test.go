package sim

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/geom"
)

type changeCounter struct {
	changed, removed int
}

func (c *changeCounter) ObjectsChanged(fx.ControlContext, ...Object) { c.changed++ }
func (c *changeCounter) ObjectsRemoved(fx.ControlContext, ...Object) { c.removed++ }

func TestObjectsChangeCaster(t *testing.T) {
	var caster ObjectsChangeCaster
	ln := &changeCounter{}
	caster.SubscribeObjectsChange(ln)
	caster.SubscribeObjectsChange(ln)
	caster.ObjectsChanged(nil)
	caster.ObjectsRemoved(nil)
	require.Equal(t, 1, ln.changed)
	require.Equal(t, 1, ln.removed)
}

func TestFootprint(t *testing.T) {
	outline := SquareOutline(2)
	pts := Footprint(outline, geom.NewPose2D(10, 0, geom.QuarterCCW))
	require.Len(t, pts, 4)
	expected := []r2.Point{{X: 11, Y: -1}, {X: 11, Y: 1}, {X: 9, Y: 1}, {X: 9, Y: -1}}
	for i, pt := range pts {
		require.InDelta(t, expected[i].X, pt.X, 1e-9)
		require.InDelta(t, expected[i].Y, pt.Y, 1e-9)
	}
}
