package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
)

// Swerve messages use meters, seconds and radians, in the conventions of
// the robot frame: +x forward, +y left, counter-clockwise positive.

// SwerveCapsQuery queries the drivetrain capabilities.
type SwerveCapsQuery struct {
}

// NewMessage implements Message.
func (m *SwerveCapsQuery) NewMessage() fx.Message { return &SwerveCapsQuery{} }

// TypeID implements SerializableMessage.
func (m *SwerveCapsQuery) TypeID() uint32 { return SwerveCapsQueryTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveCapsQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveCapsQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveCapsQuery) Reset() { *m = SwerveCapsQuery{} }

// String implements proto.Message.
func (m *SwerveCapsQuery) String() string { return proto.CompactTextString(m) }

// SwerveCaps is the response to SwerveCapsQuery.
type SwerveCaps struct {
	MaxModuleSpeed float64             `protobuf:"fixed64,1,opt,name=max_module_speed,proto3" json:"max_module_speed,omitempty"`
	LockAngle      float64             `protobuf:"fixed64,2,opt,name=lock_angle,proto3" json:"lock_angle,omitempty"`
	Modules        []*SwerveModuleInfo `protobuf:"bytes,3,rep,name=modules,proto3" json:"modules,omitempty"`
}

// NewMessage implements Message.
func (m *SwerveCaps) NewMessage() fx.Message { return &SwerveCaps{} }

// TypeID implements SerializableMessage.
func (m *SwerveCaps) TypeID() uint32 { return SwerveCapsTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveCaps) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveCaps) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveCaps) Reset() { *m = SwerveCaps{} }

// String implements proto.Message.
func (m *SwerveCaps) String() string { return proto.CompactTextString(m) }

// SwerveModuleInfo describes the placement of a module.
type SwerveModuleInfo struct {
	Name string  `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	X    float64 `protobuf:"fixed64,2,opt,name=x,proto3" json:"x,omitempty"`
	Y    float64 `protobuf:"fixed64,3,opt,name=y,proto3" json:"y,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *SwerveModuleInfo) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveModuleInfo) Reset() { *m = SwerveModuleInfo{} }

// String implements proto.Message.
func (m *SwerveModuleInfo) String() string { return proto.CompactTextString(m) }

// SwerveDrive commands chassis velocity. It stays in effect until replaced
// or expired.
type SwerveDrive struct {
	VX            float64 `protobuf:"fixed64,1,opt,name=vx,proto3" json:"vx,omitempty"`
	VY            float64 `protobuf:"fixed64,2,opt,name=vy,proto3" json:"vy,omitempty"`
	Omega         float64 `protobuf:"fixed64,3,opt,name=omega,proto3" json:"omega,omitempty"`
	FieldRelative bool    `protobuf:"varint,4,opt,name=field_relative,proto3" json:"field_relative,omitempty"`
}

// NewMessage implements Message.
func (m *SwerveDrive) NewMessage() fx.Message { return &SwerveDrive{} }

// TypeID implements SerializableMessage.
func (m *SwerveDrive) TypeID() uint32 { return SwerveDriveTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveDrive) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveDrive) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveDrive) Reset() { *m = SwerveDrive{} }

// String implements proto.Message.
func (m *SwerveDrive) String() string { return proto.CompactTextString(m) }

// SwerveStop stops driving, modules keep their angles.
type SwerveStop struct {
}

// NewMessage implements Message.
func (m *SwerveStop) NewMessage() fx.Message { return &SwerveStop{} }

// TypeID implements SerializableMessage.
func (m *SwerveStop) TypeID() uint32 { return SwerveStopTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveStop) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveStop) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveStop) Reset() { *m = SwerveStop{} }

// String implements proto.Message.
func (m *SwerveStop) String() string { return proto.CompactTextString(m) }

// SwerveSetAngle stops driving and steers all modules to Angle.
type SwerveSetAngle struct {
	Angle float64 `protobuf:"fixed64,1,opt,name=angle,proto3" json:"angle,omitempty"`
}

// NewMessage implements Message.
func (m *SwerveSetAngle) NewMessage() fx.Message { return &SwerveSetAngle{} }

// TypeID implements SerializableMessage.
func (m *SwerveSetAngle) TypeID() uint32 { return SwerveSetAngleTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveSetAngle) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveSetAngle) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveSetAngle) Reset() { *m = SwerveSetAngle{} }

// String implements proto.Message.
func (m *SwerveSetAngle) String() string { return proto.CompactTextString(m) }

// SwerveLock stops driving and steers modules to the lock angle.
type SwerveLock struct {
}

// NewMessage implements Message.
func (m *SwerveLock) NewMessage() fx.Message { return &SwerveLock{} }

// TypeID implements SerializableMessage.
func (m *SwerveLock) TypeID() uint32 { return SwerveLockTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveLock) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveLock) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveLock) Reset() { *m = SwerveLock{} }

// String implements proto.Message.
func (m *SwerveLock) String() string { return proto.CompactTextString(m) }

// SwervePoseQuery queries the odometry pose.
type SwervePoseQuery struct {
}

// NewMessage implements Message.
func (m *SwervePoseQuery) NewMessage() fx.Message { return &SwervePoseQuery{} }

// TypeID implements SerializableMessage.
func (m *SwervePoseQuery) TypeID() uint32 { return SwervePoseQueryTypeID }

// Serializable implements SerializableMessage.
func (m *SwervePoseQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwervePoseQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwervePoseQuery) Reset() { *m = SwervePoseQuery{} }

// String implements proto.Message.
func (m *SwervePoseQuery) String() string { return proto.CompactTextString(m) }

// SwervePose is a field-relative pose. It's the reply to SwervePoseQuery.
type SwervePose struct {
	X       float64 `protobuf:"fixed64,1,opt,name=x,proto3" json:"x,omitempty"`
	Y       float64 `protobuf:"fixed64,2,opt,name=y,proto3" json:"y,omitempty"`
	Heading float64 `protobuf:"fixed64,3,opt,name=heading,proto3" json:"heading,omitempty"`
}

// PoseFrom converts geom.Pose2D to SwervePose.
func PoseFrom(pose geom.Pose2D) *SwervePose {
	return &SwervePose{X: pose.X(), Y: pose.Y(), Heading: pose.Rotation.Radians()}
}

// Pose2D converts to geom.Pose2D.
func (m *SwervePose) Pose2D() geom.Pose2D {
	return geom.NewPose2D(m.X, m.Y, geom.FromRadians(m.Heading))
}

// NewMessage implements Message.
func (m *SwervePose) NewMessage() fx.Message { return &SwervePose{} }

// TypeID implements SerializableMessage.
func (m *SwervePose) TypeID() uint32 { return SwervePoseTypeID }

// Serializable implements SerializableMessage.
func (m *SwervePose) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwervePose) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwervePose) Reset() { *m = SwervePose{} }

// String implements proto.Message.
func (m *SwervePose) String() string { return proto.CompactTextString(m) }

// SwerveResetPose restarts odometry from Pose.
type SwerveResetPose struct {
	Pose *SwervePose `protobuf:"bytes,1,opt,name=pose,proto3" json:"pose,omitempty"`
}

// NewMessage implements Message.
func (m *SwerveResetPose) NewMessage() fx.Message { return &SwerveResetPose{} }

// TypeID implements SerializableMessage.
func (m *SwerveResetPose) TypeID() uint32 { return SwerveResetPoseTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveResetPose) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveResetPose) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveResetPose) Reset() { *m = SwerveResetPose{} }

// String implements proto.Message.
func (m *SwerveResetPose) String() string { return proto.CompactTextString(m) }

// SwerveModuleState is the commanded state of a module.
type SwerveModuleState struct {
	Speed float64 `protobuf:"fixed64,1,opt,name=speed,proto3" json:"speed,omitempty"`
	Angle float64 `protobuf:"fixed64,2,opt,name=angle,proto3" json:"angle,omitempty"`
}

// ModuleStatesFrom converts module states for the wire.
func ModuleStatesFrom(states []kinematics.ModuleState) []*SwerveModuleState {
	out := make([]*SwerveModuleState, len(states))
	for i, s := range states {
		out[i] = &SwerveModuleState{Speed: s.Speed, Angle: s.Angle.Radians()}
	}
	return out
}

// ModuleState converts to kinematics.ModuleState.
func (m *SwerveModuleState) ModuleState() kinematics.ModuleState {
	return kinematics.ModuleState{Speed: m.Speed, Angle: geom.FromRadians(m.Angle)}
}

// ProtoMessage implements proto.Message.
func (m *SwerveModuleState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveModuleState) Reset() { *m = SwerveModuleState{} }

// String implements proto.Message.
func (m *SwerveModuleState) String() string { return proto.CompactTextString(m) }

// SwerveStatus is an Event message reflecting the pose and the commanded
// module states.
type SwerveStatus struct {
	Pose    *SwervePose          `protobuf:"bytes,1,opt,name=pose,proto3" json:"pose,omitempty"`
	Modules []*SwerveModuleState `protobuf:"bytes,2,rep,name=modules,proto3" json:"modules,omitempty"`
	Driving bool                 `protobuf:"varint,3,opt,name=driving,proto3" json:"driving,omitempty"`
}

// NewMessage implements Message.
func (m *SwerveStatus) NewMessage() fx.Message { return &SwerveStatus{} }

// TypeID implements SerializableMessage.
func (m *SwerveStatus) TypeID() uint32 { return SwerveStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *SwerveStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SwerveStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SwerveStatus) Reset() { *m = SwerveStatus{} }

// String implements proto.Message.
func (m *SwerveStatus) String() string { return proto.CompactTextString(m) }

// TypeIDs
const (
	SwerveStatusEventTypeID uint32 = GroupSwerve | TypeIDKindEvent | 0x0000
	SwerveCapsQueryTypeID   uint32 = GroupSwerve | 0x0000
	SwerveCapsTypeID        uint32 = SwerveCapsQueryTypeID | TypeIDMaskReply
	SwerveDriveTypeID       uint32 = GroupSwerve | 0x0001
	SwerveStopTypeID        uint32 = GroupSwerve | 0x0002
	SwerveSetAngleTypeID    uint32 = GroupSwerve | 0x0003
	SwerveLockTypeID        uint32 = GroupSwerve | 0x0004
	SwervePoseQueryTypeID   uint32 = GroupSwerve | 0x0005
	SwervePoseTypeID        uint32 = SwervePoseQueryTypeID | TypeIDMaskReply
	SwerveResetPoseTypeID   uint32 = GroupSwerve | 0x0006
)

func init() {
	MessageTypes[SwerveStatusEventTypeID] = (*SwerveStatus)(nil)
	MessageTypes[SwerveCapsQueryTypeID] = (*SwerveCapsQuery)(nil)
	MessageTypes[SwerveCapsTypeID] = (*SwerveCaps)(nil)
	MessageTypes[SwerveDriveTypeID] = (*SwerveDrive)(nil)
	MessageTypes[SwerveStopTypeID] = (*SwerveStop)(nil)
	MessageTypes[SwerveSetAngleTypeID] = (*SwerveSetAngle)(nil)
	MessageTypes[SwerveLockTypeID] = (*SwerveLock)(nil)
	MessageTypes[SwervePoseQueryTypeID] = (*SwervePoseQuery)(nil)
	MessageTypes[SwervePoseTypeID] = (*SwervePose)(nil)
	MessageTypes[SwerveResetPoseTypeID] = (*SwerveResetPose)(nil)
}
