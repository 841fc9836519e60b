// Package kinematics maps chassis velocity to swerve module velocities and back.
package kinematics

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/robotalks/swerve.go/pkg/geom"
)

// SpeedEpsilon is the module speed (m/s) below which the module angle is
// considered meaningless and the previous angle is kept.
const SpeedEpsilon = 1e-6

// Kinematics converts between ChassisSpeeds and per-module states for a fixed
// set of module offsets. The order of the offsets is the order of every
// per-module slice accepted or returned. Kinematics is immutable once created.
type Kinematics struct {
	points []r2.Point
	// inverse is the 2N×3 matrix mapping (vx, vy, ω) to module vector components.
	inverse *mat.Dense
}

// NewKinematics creates Kinematics from module offsets relative to the
// robot's rotation center.
func NewKinematics(points ...r2.Point) (*Kinematics, error) {
	if len(points) == 0 {
		return nil, ErrNoModules
	}
	for i := range points {
		for j := 0; j < i; j++ {
			if points[i] == points[j] {
				return nil, fmt.Errorf("%w: module %d and %d at %v", ErrDuplicateModule, j, i, points[i])
			}
		}
	}
	k := &Kinematics{
		points:  append([]r2.Point(nil), points...),
		inverse: mat.NewDense(len(points)*2, 3, nil),
	}
	for i, p := range k.points {
		k.inverse.SetRow(i*2, []float64{1, 0, -p.Y})
		k.inverse.SetRow(i*2+1, []float64{0, 1, p.X})
	}
	return k, nil
}

// NumModules returns the number of modules.
func (k *Kinematics) NumModules() int {
	return len(k.points)
}

// Points returns a copy of module offsets.
func (k *Kinematics) Points() []r2.Point {
	return append([]r2.Point(nil), k.points...)
}

// ToModuleStates computes the state of each module for the chassis speeds.
// A module with (near) zero speed keeps its angle in prev, the states last
// commanded; modules missing from prev keep 0.
func (k *Kinematics) ToModuleStates(speeds ChassisSpeeds, prev []ModuleState) []ModuleState {
	states := make([]ModuleState, len(k.points))
	for i, p := range k.points {
		v := r2.Point{
			X: speeds.VX - speeds.Omega*p.Y,
			Y: speeds.VY + speeds.Omega*p.X,
		}
		speed := v.Norm()
		if speed < SpeedEpsilon {
			if i < len(prev) {
				states[i].Angle = prev[i].Angle
			}
			continue
		}
		states[i] = ModuleState{Speed: speed, Angle: geom.FromVector(v)}
	}
	return states
}

// ToChassisSpeeds performs forward kinematics: the least-squares chassis
// velocity that best explains the module states.
func (k *Kinematics) ToChassisSpeeds(states []ModuleState) (ChassisSpeeds, error) {
	if err := CheckCount(len(k.points), len(states)); err != nil {
		return ChassisSpeeds{}, err
	}
	x, err := k.solve(len(states), func(i int) r2.Point { return states[i].Vector() })
	if err != nil {
		return ChassisSpeeds{}, err
	}
	return ChassisSpeeds{VX: x.AtVec(0), VY: x.AtVec(1), Omega: x.AtVec(2)}, nil
}

// ToTwist computes the chassis motion from module displacements of one tick.
func (k *Kinematics) ToTwist(deltas []ModulePosition) (geom.Twist2D, error) {
	if err := CheckCount(len(k.points), len(deltas)); err != nil {
		return geom.Twist2D{}, err
	}
	x, err := k.solve(len(deltas), func(i int) r2.Point { return deltas[i].Angle.Project(deltas[i].Distance) })
	if err != nil {
		return geom.Twist2D{}, err
	}
	return geom.Twist2D{DX: x.AtVec(0), DY: x.AtVec(1), DTheta: x.AtVec(2)}, nil
}

func (k *Kinematics) solve(n int, vec func(int) r2.Point) (*mat.VecDense, error) {
	b := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		v := vec(i)
		b.SetVec(i*2, v.X)
		b.SetVec(i*2+1, v.Y)
	}
	var x mat.VecDense
	if err := x.SolveVec(k.inverse, b); err != nil {
		return nil, fmt.Errorf("forward kinematics: %w", err)
	}
	return &x, nil
}

// Desaturate scales all module speeds down uniformly so that none exceeds
// maxSpeed, preserving their ratios. maxSpeed must be positive.
func Desaturate(states []ModuleState, maxSpeed float64) {
	var top float64
	for _, s := range states {
		top = math.Max(top, math.Abs(s.Speed))
	}
	if top <= maxSpeed || maxSpeed <= 0 {
		return
	}
	scale := maxSpeed / top
	for i := range states {
		states[i].Speed *= scale
	}
}

// Optimize returns the equivalent of desired requiring the least steering
// rotation from current: angles more than 90° away are flipped by 180° with
// the speed negated.
func Optimize(desired ModuleState, current geom.Rotation) ModuleState {
	if math.Abs(desired.Angle.Minus(current).Radians()) > math.Pi/2 {
		return ModuleState{
			Speed: -desired.Speed,
			Angle: desired.Angle.Plus(geom.Half),
		}
	}
	return desired
}
