package swerve

import (
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/sim"
	"github.com/robotalks/swerve.go/pkg/sim/visualization/see"
)

const imageSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-150 -150 300 300">
	<g>
		<rect x="-120" y="-120" width="240" height="240" rx="10" fill="none" stroke="black" stroke-width="4" />
		<rect x="60" y="60" width="50" height="30" rx="5" />
		<rect x="60" y="-90" width="50" height="30" rx="5" />
		<rect x="-110" y="60" width="50" height="30" rx="5" />
		<rect x="-110" y="-90" width="50" height="30" rx="5" />
		<path d="M 20 -30 L 80 0 L 20 30 Z" />
	</g>
</svg>`

// MapObject implements see.ObjectMapper. The robot is rendered with its
// footprint and one vector per module showing its actual velocity in the
// world frame.
func (c *Controller) MapObject(vo see.VisibleObject) []see.Object {
	id := see.ObjectID(c.Name())
	objs := []see.Object{
		see.ObjectFrom("image", vo).
			With("src", "data:image/svg+xml;utf8,"+imageSVG).
			Polygon(sim.Footprint(c.Outline, c.Pose)...),
	}
	conf := c.Bot.Drivetrain.Config()
	for i, st := range c.ModuleStates() {
		at := c.Pose.Translation.Add(geom.Rotate(c.Physics.Points()[i], c.Pose.Rotation))
		objs = append(objs, see.NewObject("vector", id+"."+conf.ModuleName(i)).
			At(at.X, at.Y).
			Rotate(c.Pose.Rotation.Plus(st.Angle).Degrees()).
			Vector(geom.Rotate(st.Vector(), c.Pose.Rotation)))
	}
	return objs
}
