package drivetrain

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
)

const eps = 1e-9

type fakeModule struct {
	pos      kinematics.ModulePosition
	desired  []kinematics.ModuleState
	steered  []geom.Rotation
	setErr   error
	posErr   error
	optimize bool
}

func (m *fakeModule) Position() (kinematics.ModulePosition, error) {
	return m.pos, m.posErr
}

func (m *fakeModule) SetDesiredState(s kinematics.ModuleState) error {
	if m.optimize {
		s = s.Optimize(m.pos.Angle)
	}
	m.desired = append(m.desired, s)
	if m.setErr == nil {
		m.pos.Angle = s.Angle
	}
	return m.setErr
}

func (m *fakeModule) SetModuleAngle(a geom.Rotation) error {
	m.steered = append(m.steered, a)
	if m.setErr == nil {
		m.pos.Angle = a
	}
	return m.setErr
}

// drive moves the module as if it ran at its last desired speed for dt.
func (m *fakeModule) drive(dt float64) {
	if n := len(m.desired); n > 0 {
		m.pos.Distance += m.desired[n-1].Speed * dt
	}
}

type fakeGyro struct {
	heading geom.Rotation
	err     error
}

func (g *fakeGyro) Heading() (geom.Rotation, error) {
	return g.heading, g.err
}

func newFakes(n int) ([]Module, []*fakeModule) {
	modules := make([]Module, n)
	fakes := make([]*fakeModule, n)
	for i := range fakes {
		fakes[i] = &fakeModule{}
		modules[i] = fakes[i]
	}
	return modules, fakes
}

func newDrivetrain(t *testing.T) (*Drivetrain, []*fakeModule, *fakeGyro) {
	modules, fakes := newFakes(4)
	gyro := &fakeGyro{}
	d, err := New(NewConfig(), modules, gyro)
	require.NoError(t, err)
	return d, fakes, gyro
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		expect error
	}{
		{"default", func(*Config) {}, nil},
		{"no modules", func(c *Config) { c.Modules = nil }, kinematics.ErrNoModules},
		{"zero speed", func(c *Config) { c.MaxModuleSpeed = 0 }, ErrInvalidMaxSpeed},
		{"negative speed", func(c *Config) { c.MaxModuleSpeed = -1 }, ErrInvalidMaxSpeed},
		{"duplicated name", func(c *Config) { c.Modules[1].Name = "fl" }, ErrDuplicateName},
		{"duplicated offset", func(c *Config) { c.Modules[3].X, c.Modules[3].Y = 0.3, 0.3 }, kinematics.ErrDuplicateModule},
		{"single module", func(c *Config) { c.Modules = c.Modules[:1] }, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			tc.modify(conf)
			err := conf.Validate()
			if tc.expect == nil {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, tc.expect), "unexpected error %v", err)
			}
		})
	}
	require.Len(t, Default().Modules, 4, "defaults must not be modified by NewConfig copies")
}

func TestConfigLoad(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.Load([]byte(`
modules:
  - {name: front, x: 0.4, y: 0}
  - {name: left, x: -0.2, y: 0.35}
  - {name: right, x: -0.2, y: -0.35}
max_module_speed: 3.2
`)))
	require.Len(t, conf.Modules, 3)
	require.Equal(t, "left", conf.Modules[1].Name)
	require.Equal(t, 3.2, conf.MaxModuleSpeed)
	require.Equal(t, DefaultLockAngle, conf.LockAngle)
	require.NoError(t, conf.Validate())

	require.Error(t, NewConfig().Load([]byte("max_speed: 1\n")), "unknown keys rejected")

	fn := filepath.Join(t.TempDir(), "drivetrain.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("lock_angle: 30\n"), 0644))
	conf = NewConfig()
	require.NoError(t, conf.LoadFile(fn))
	require.Equal(t, 30.0, conf.LockAngle)
	require.Len(t, conf.Modules, 4)
}

func TestNewRejectsInvalid(t *testing.T) {
	modules, _ := newFakes(3)
	_, err := New(NewConfig(), modules, &fakeGyro{})
	require.True(t, errors.Is(err, kinematics.ErrModuleCountMismatch))

	modules, _ = newFakes(4)
	_, err = New(NewConfig(), modules, nil)
	require.True(t, errors.Is(err, ErrNoGyro))

	conf := NewConfig()
	conf.MaxModuleSpeed = 0
	_, err = New(conf, modules, &fakeGyro{})
	require.True(t, errors.Is(err, ErrInvalidMaxSpeed))

	gyroErr := errors.New("gyro offline")
	_, err = New(NewConfig(), modules, &fakeGyro{err: gyroErr})
	require.True(t, errors.Is(err, gyroErr))
}

func TestNewSeedsFromMeasurements(t *testing.T) {
	modules, fakes := newFakes(4)
	for i, f := range fakes {
		f.pos = kinematics.ModulePosition{Distance: float64(i), Angle: geom.FromDegrees(30)}
	}
	d, err := New(NewConfig(), modules, &fakeGyro{heading: geom.FromDegrees(90)})
	require.NoError(t, err)
	require.True(t, d.Pose().Equal(geom.NewPose2D(0, 0, geom.FromDegrees(90)), eps))

	// a zero command keeps the measured angles instead of snapping to 0.
	require.NoError(t, d.Drive(0, 0, 0, false))
	for _, f := range fakes {
		require.InDelta(t, 30, f.desired[0].Angle.Degrees(), eps)
		require.Zero(t, f.desired[0].Speed)
	}
}

func TestDrive(t *testing.T) {
	testCases := []struct {
		name          string
		vx, vy, omega float64
		fieldRelative bool
		heading       float64
		expectSpeed   float64
		expectAngle   float64
	}{
		{name: "forward", vx: 1, expectSpeed: 1},
		{name: "strafe", vy: -2, expectSpeed: 2, expectAngle: -90},
		{name: "saturated", vx: 10, expectSpeed: DefaultMaxModuleSpeed},
		{name: "field relative", vx: 1, fieldRelative: true, heading: 90, expectSpeed: 1, expectAngle: -90},
		{name: "field relative ignored", vx: 1, heading: 90, expectSpeed: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, fakes, gyro := newDrivetrain(t)
			gyro.heading = geom.FromDegrees(tc.heading)
			require.NoError(t, d.Drive(tc.vx, tc.vy, tc.omega, tc.fieldRelative))
			for _, f := range fakes {
				require.Len(t, f.desired, 1)
				require.InDelta(t, tc.expectSpeed, f.desired[0].Speed, eps)
				require.InDelta(t, tc.expectAngle, f.desired[0].Angle.Degrees(), eps)
			}
			require.Equal(t, fakes[2].desired[0], d.ModuleStates()[2])
		})
	}
}

func TestDriveRotationDesaturated(t *testing.T) {
	d, fakes, _ := newDrivetrain(t)
	require.NoError(t, d.Drive(4, 0, 10, false))
	var top float64
	for _, f := range fakes {
		top = math.Max(top, math.Abs(f.desired[0].Speed))
	}
	require.InDelta(t, DefaultMaxModuleSpeed, top, eps)
	// spinning CCW while driving forward, the right side covers more ground.
	require.Greater(t, fakes[1].desired[0].Speed, fakes[0].desired[0].Speed)
	require.InDelta(t, fakes[0].desired[0].Speed, fakes[2].desired[0].Speed, eps)
}

func TestDriveDispatchesDespiteErrors(t *testing.T) {
	d, fakes, _ := newDrivetrain(t)
	failure := errors.New("motor fault")
	fakes[1].setErr = failure
	fakes[3].setErr = failure
	err := d.Drive(1, 0, 0, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "module fr")
	require.Contains(t, err.Error(), "module br")
	for _, f := range fakes {
		require.Len(t, f.desired, 1, "every module must be commanded")
	}

	gyroErr := errors.New("gyro offline")
	d2, fakes2, gyro := newDrivetrain(t)
	gyro.err = gyroErr
	require.True(t, errors.Is(d2.Drive(1, 0, 0, true), gyroErr))
	require.Empty(t, fakes2[0].desired)
	require.NoError(t, d2.Drive(1, 0, 0, false))
}

func TestSetAllModuleAngles(t *testing.T) {
	d, fakes, _ := newDrivetrain(t)
	for _, f := range fakes {
		f.optimize = true
	}
	// 135° would be optimized if sent as a desired state.
	require.NoError(t, d.SetAllModuleAngles(geom.FromDegrees(135)))
	for _, f := range fakes {
		require.Len(t, f.steered, 1)
		require.InDelta(t, 135, f.steered[0].Degrees(), eps)
		require.Empty(t, f.desired)
	}

	require.NoError(t, d.Lock())
	require.NoError(t, d.Drive(0, 0, 0, false))
	for i, f := range fakes {
		require.InDelta(t, DefaultLockAngle, f.steered[1].Degrees(), eps)
		require.InDelta(t, DefaultLockAngle, f.desired[0].Angle.Degrees(), eps, "module %d stays locked", i)
	}

	require.NoError(t, d.ZeroWheels())
	for _, f := range fakes {
		require.InDelta(t, 0, f.steered[2].Degrees(), eps)
	}
	for _, s := range d.ModuleStates() {
		require.Equal(t, kinematics.ModuleState{}, s)
	}
}

func TestUpdateOdometry(t *testing.T) {
	d, fakes, gyro := newDrivetrain(t)
	require.NoError(t, d.Drive(0, 1, 0, false))
	for i := 0; i < 10; i++ {
		for _, f := range fakes {
			f.drive(0.1)
		}
		_, err := d.UpdateOdometry()
		require.NoError(t, err)
	}
	require.True(t, d.Pose().Equal(geom.NewPose2D(0, 1, geom.Zero), 1e-6), d.Pose().String())

	gyro.heading = geom.FromDegrees(20)
	require.NoError(t, d.ResetPose(geom.NewPose2D(5, 5, geom.Zero)))
	pose, err := d.UpdateOdometry()
	require.NoError(t, err)
	require.True(t, pose.Equal(geom.NewPose2D(5, 5, geom.Zero), eps), pose.String())

	posErr := errors.New("encoder fault")
	fakes[0].posErr = posErr
	pose, err = d.UpdateOdometry()
	require.True(t, errors.Is(err, posErr))
	require.True(t, pose.Equal(geom.NewPose2D(5, 5, geom.Zero), eps))
	require.True(t, errors.Is(d.ResetPose(geom.Pose2D{}), posErr))
}

func TestDriveRoundTrip(t *testing.T) {
	d, fakes, _ := newDrivetrain(t)
	for _, f := range fakes {
		f.optimize = true
		f.pos.Angle = geom.FromDegrees(170)
	}
	require.NoError(t, d.Drive(0.8, -0.4, 0.5, false))
	states := make([]kinematics.ModuleState, len(fakes))
	for i, f := range fakes {
		states[i] = f.desired[0]
	}
	speeds, err := d.Kinematics().ToChassisSpeeds(states)
	require.NoError(t, err)
	require.InDelta(t, 0.8, speeds.VX, eps)
	require.InDelta(t, -0.4, speeds.VY, eps)
	require.InDelta(t, 0.5, speeds.Omega, eps)
}

func TestRejectNonFinite(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	testCases := []struct {
		name string
		call func(*Drivetrain) error
	}{
		{"drive vx nan", func(d *Drivetrain) error { return d.Drive(nan, 0, 0, false) }},
		{"drive vy inf", func(d *Drivetrain) error { return d.Drive(0, inf, 0, false) }},
		{"drive omega -inf", func(d *Drivetrain) error { return d.Drive(0, 0, -inf, true) }},
		{"angle nan", func(d *Drivetrain) error { return d.SetAllModuleAngles(geom.FromRadians(nan)) }},
		{"angle inf", func(d *Drivetrain) error { return d.SetAllModuleAngles(geom.FromRadians(inf)) }},
		{"pose x nan", func(d *Drivetrain) error { return d.ResetPose(geom.NewPose2D(nan, 0, geom.Zero)) }},
		{"pose heading inf", func(d *Drivetrain) error {
			return d.ResetPose(geom.Pose2D{Rotation: geom.FromRadians(inf)})
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, fakes, _ := newDrivetrain(t)
			require.NoError(t, d.Drive(1, 1, 0, false))
			pose := d.Pose()

			require.True(t, errors.Is(tc.call(d), ErrInvalidCommand))
			for _, f := range fakes {
				require.Len(t, f.desired, 1, "modules untouched")
				require.Empty(t, f.steered)
			}
			require.Equal(t, pose, d.Pose())

			// the held angles survive the rejected command.
			require.NoError(t, d.Drive(0, 0, 0, false))
			for i, f := range fakes {
				require.Zero(t, f.desired[1].Speed)
				require.InDelta(t, 45, f.desired[1].Angle.Degrees(), eps, "module %d", i)
			}
			for _, s := range d.ModuleStates() {
				require.False(t, math.IsNaN(s.Angle.Radians()))
			}
		})
	}
}

func TestCheckSpeeds(t *testing.T) {
	require.NoError(t, CheckSpeeds(1, -2, 3))
	require.True(t, errors.Is(CheckSpeeds(0, math.NaN(), 0), ErrInvalidCommand))
}
