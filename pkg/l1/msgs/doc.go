// Package msgs provides the L1 envelope and the swerve message schemas.
//
// Commands flow from a connector (robocli, an L2 brain) to the swerve
// controller, which answers every command with exactly one reply carrying
// the same sequence. SwerveStatus is the only event: it's published by the
// controller whenever the pose or the commanded module states change.
//
// Units on the wire are meters, meters/second and radians.
package msgs
