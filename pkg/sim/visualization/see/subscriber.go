// Package see is the adapter to visualize a 2D world in
// github.com/robotalks/see.
package see

import (
	"encoding/json"
	"io"
	"os"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/sim"
)

const cornerRadius = 0.01

// Adapter is the visualization adapter to visualize using
// github.com/robotalks/see.
type Adapter struct {
	Config *Config
	Mapper ObjectMapper
	Out    io.Writer

	initial    bool
	updated    map[string]sim.Object
	removedIDs map[string]bool
}

// NewAdapter creates the adapter.
func NewAdapter(config *Config) *Adapter {
	return &Adapter{
		Config:  config,
		Out:     os.Stdout,
		initial: true,
	}
}

// Subscribe is a helper to subscribe object changes.
func (a *Adapter) Subscribe(sub sim.ObjectsChangeSubscriber) *Adapter {
	sub.SubscribeObjectsChange(a)
	return a
}

// ObjectsChanged implements ObjectsChangeListener.
func (a *Adapter) ObjectsChanged(cc fx.ControlContext, objs ...sim.Object) {
	if a.updated == nil {
		a.updated = make(map[string]sim.Object)
	}
	for _, obj := range objs {
		a.updated[obj.Name()] = obj
		if a.removedIDs != nil {
			delete(a.removedIDs, obj.Name())
		}
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (a *Adapter) ObjectsRemoved(cc fx.ControlContext, objs ...sim.Object) {
	if a.removedIDs == nil {
		a.removedIDs = make(map[string]bool)
	}
	for _, obj := range objs {
		a.removedIDs[obj.Name()] = true
		if a.updated != nil {
			delete(a.updated, obj.Name())
		}
	}
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(a.ReportChanges))
}

// ReportChanges is a controller to report changes.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	var msgs []Message
	if a.initial {
		msgs = []Message{
			{Action: ActionReset},
			{Action: ActionObject, Object: NewObject("corner", "corner-lt").With("loc", "lt").At(-a.Config.W/2, -a.Config.H/2).Radius(cornerRadius)},
			{Action: ActionObject, Object: NewObject("corner", "corner-lb").With("loc", "lb").At(-a.Config.W/2, a.Config.H/2).Radius(cornerRadius)},
			{Action: ActionObject, Object: NewObject("corner", "corner-rt").With("loc", "rt").At(a.Config.W/2, -a.Config.H/2).Radius(cornerRadius)},
			{Action: ActionObject, Object: NewObject("corner", "corner-rb").With("loc", "rb").At(a.Config.W/2, a.Config.H/2).Radius(cornerRadius)},
		}
		a.initial = false
		a.removedIDs = nil
	}

	mapper := a.Mapper
	if mapper == nil {
		mapper = DefaultMapper
	}
	for _, obj := range a.updated {
		if vo, ok := obj.(VisibleObject); ok {
			for _, mapped := range mapper.MapObject(vo) {
				if mapped == nil {
					continue
				}
				msgs = append(msgs, Message{
					Action: ActionObject,
					Object: mapped,
				})
			}
		}
	}

	for id := range a.removedIDs {
		msgs = append(msgs, Message{
			Action:   ActionRemove,
			RemoveID: ObjectID(id),
		})
	}

	a.updated, a.removedIDs = nil, nil
	if len(msgs) == 0 {
		return nil
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	_, err = a.Out.Write(append(encoded, '\n', '\n'))
	return err
}
