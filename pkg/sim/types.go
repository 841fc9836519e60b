package sim

import (
	"slices"

	"github.com/golang/geo/r2"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/geom"
)

// Rectangular object provides an rectangluar outline in its own frame.
type Rectangular interface {
	OutlineRect() r2.Rect
}

// Positionable2D object maintains a 2D position.
type Positionable2D interface {
	Position2D() geom.Pose2D
}

// Placeable2D object can be moved with a new pose on a 2D plane.
type Placeable2D interface {
	Positionable2D
	SetPose2D(geom.Pose2D) geom.Pose2D
}

// Object represents an object in the world.
type Object interface {
	fx.Named
}

// ObjectsChangeListener listens for object changes.
type ObjectsChangeListener interface {
	ObjectsChanged(fx.ControlContext, ...Object)
	ObjectsRemoved(fx.ControlContext, ...Object)
}

// ObjectsChangeSubscriber subscribes objects change notifications.
type ObjectsChangeSubscriber interface {
	SubscribeObjectsChange(ObjectsChangeListener)
}

// SquareOutline creates a square outline of the size centered at origin.
func SquareOutline(size float64) r2.Rect {
	return r2.RectFromCenterSize(r2.Point{}, r2.Point{X: size, Y: size})
}

// Footprint returns the corners of outline placed at pose, counter-clockwise.
func Footprint(outline r2.Rect, pose geom.Pose2D) []r2.Point {
	corners := outline.Vertices()
	pts := make([]r2.Point, 0, len(corners))
	for _, c := range corners {
		pts = append(pts, pose.Translation.Add(geom.Rotate(c, pose.Rotation)))
	}
	return pts
}

// ObjectsChangeCaster provides a subscriber and implements
// listener to cast notifcations.
type ObjectsChangeCaster struct {
	listeners []ObjectsChangeListener
}

// SubscribeObjectsChange implements ObjectsChangeSubscriber.
// A listener subscribed more than once is notified once.
func (c *ObjectsChangeCaster) SubscribeObjectsChange(ln ObjectsChangeListener) {
	if !slices.Contains(c.listeners, ln) {
		c.listeners = append(c.listeners, ln)
	}
}

// ObjectsChanged implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsChanged(cc fx.ControlContext, objs ...Object) {
	for _, ln := range c.listeners {
		ln.ObjectsChanged(cc, objs...)
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsRemoved(cc fx.ControlContext, objs ...Object) {
	for _, ln := range c.listeners {
		ln.ObjectsRemoved(cc, objs...)
	}
}
