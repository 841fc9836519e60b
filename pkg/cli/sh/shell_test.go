package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/swerve.go/pkg/l1"
	"github.com/robotalks/swerve.go/pkg/l1/msgs"
)

func TestFormat(t *testing.T) {
	s := &Shell{}
	out, err := s.Format(&msgs.SwervePose{X: 1.5})
	require.NoError(t, err)
	require.Contains(t, out, "SwervePose")
	require.Contains(t, out, "1.5")

	s.OutputJSON = true
	out, err = s.Format(&msgs.SwervePose{X: 1.5, Heading: 1})
	require.NoError(t, err)
	require.JSONEq(t, `{"x":1.5,"heading":1}`, out)

	_, err = s.Format(&l1.CommandMsg{})
	require.ErrorIs(t, err, msgs.ErrNotSerializable)
}

func TestFormatInfo(t *testing.T) {
	info := l1.ControllerInfo{Ref: l1.ControllerRef{Type: "sim-swerve", ID: "a1"}}
	require.Equal(t, "sim-swerve/a1", FormatInfo(info))
	info.Meta.Description = "Simulation"
	require.Equal(t, "sim-swerve/a1: Simulation", FormatInfo(info))
}

func TestParseFloat(t *testing.T) {
	testCases := []struct {
		arg string
		val float64
		ok  bool
	}{
		{"1.5", 1.5, true},
		{"-2", -2, true},
		{"abc", 0, false},
		{"nan", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"-Inf", 0, false},
		{"1e400", 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.arg, func(t *testing.T) {
			val, err := ParseFloat("VX", tc.arg)
			if !tc.ok {
				require.Error(t, err)
				require.Contains(t, err.Error(), "VX")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.val, val)
		})
	}
}
