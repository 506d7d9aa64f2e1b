package pmx

import (
	"math"

	"github.com/pmxutil/pmxfile"
)

// jointRaw is the fixed record that stores every kind of joint. Version 2.0
// only defines spring 6DOF joints, so the parameters of the other kinds are
// packed into the slots of this record:
//
//	Spring6DOF  every slot has its natural meaning
//	SixDOF      as Spring6DOF, springs are zero
//	P2P         position and rotation only
//	ConeTwist   MoveLower  = (damping, 0, motor)
//	            MoveUpper  = (fixThresh, 0, maxImpulse)
//	            RotLower   = (twist, swing2, swing1)
//	            SpringMove = (softness, bias, relaxation)
//	            SpringRot  = motorTarget
//	Slider      MoveLower.X = lowerLinear, MoveUpper.X = upperLinear
//	            RotLower.X  = lowerAngle,  RotUpper.X  = upperAngle
//	            SpringMove = (linearMotor, velocity, force)
//	            SpringRot  = (angularMotor, velocity, force)
//	Hinge       MoveLower.X = low, MoveUpper.X = high
//	            SpringMove = (softness, bias, relaxation)
//	            SpringRot  = (motor, targetVelocity, maxImpulse)
//
// Unused components are zero. Motor flags are stored as 1.0 or 0.0 and read
// back with a tolerance of flagEpsilon. Position and rotation are stored as-is
// for every kind.
type jointRaw struct {
	Type   uint8
	RigidA int32
	RigidB int32

	Position   pmxfile.Vec3
	Rotation   pmxfile.Vec3
	MoveLower  pmxfile.Vec3
	MoveUpper  pmxfile.Vec3
	RotLower   pmxfile.Vec3
	RotUpper   pmxfile.Vec3
	SpringMove pmxfile.Vec3
	SpringRot  pmxfile.Vec3
}

// flagEpsilon is the tolerance with which a stored float is recognized as a
// set flag.
const flagEpsilon = 0.01

func floatFlag(f float32) bool {
	return math.Abs(float64(f)-1) < flagEpsilon
}

func flagFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// jointFromRaw unpacks the parameters of a joint from its raw record.
func jointFromRaw(raw *jointRaw) (pmxfile.JointParams, error) {
	switch pmxfile.JointType(raw.Type) {
	case pmxfile.JointSpring6DOF:
		return pmxfile.Spring6DOF{
			RigidA:         raw.RigidA,
			RigidB:         raw.RigidB,
			Position:       raw.Position,
			Rotation:       raw.Rotation,
			MoveLower:      raw.MoveLower,
			MoveUpper:      raw.MoveUpper,
			RotationLower:  raw.RotLower,
			RotationUpper:  raw.RotUpper,
			SpringMove:     raw.SpringMove,
			SpringRotation: raw.SpringRot,
		}, nil
	case pmxfile.JointSixDOF:
		return pmxfile.SixDOF{
			RigidA:        raw.RigidA,
			RigidB:        raw.RigidB,
			Position:      raw.Position,
			Rotation:      raw.Rotation,
			MoveLower:     raw.MoveLower,
			MoveUpper:     raw.MoveUpper,
			RotationLower: raw.RotLower,
			RotationUpper: raw.RotUpper,
		}, nil
	case pmxfile.JointP2P:
		return pmxfile.P2P{
			RigidA:   raw.RigidA,
			RigidB:   raw.RigidB,
			Position: raw.Position,
			Rotation: raw.Rotation,
		}, nil
	case pmxfile.JointConeTwist:
		return pmxfile.ConeTwist{
			RigidA:           raw.RigidA,
			RigidB:           raw.RigidB,
			Position:         raw.Position,
			Rotation:         raw.Rotation,
			TwistSpan:        raw.RotLower[0],
			SwingSpan2:       raw.RotLower[1],
			SwingSpan1:       raw.RotLower[2],
			Softness:         raw.SpringMove[0],
			BiasFactor:       raw.SpringMove[1],
			RelaxationFactor: raw.SpringMove[2],
			Damping:          raw.MoveLower[0],
			EnableMotor:      floatFlag(raw.MoveLower[2]),
			FixThresh:        raw.MoveUpper[0],
			MaxImpulse:       raw.MoveUpper[2],
			MotorTarget:      raw.SpringRot,
		}, nil
	case pmxfile.JointSlider:
		return pmxfile.Slider{
			RigidA:               raw.RigidA,
			RigidB:               raw.RigidB,
			Position:             raw.Position,
			Rotation:             raw.Rotation,
			LowerLinear:          raw.MoveLower[0],
			UpperLinear:          raw.MoveUpper[0],
			LowerAngle:           raw.RotLower[0],
			UpperAngle:           raw.RotUpper[0],
			LinearMotor:          floatFlag(raw.SpringMove[0]),
			LinearMotorVelocity:  raw.SpringMove[1],
			LinearMotorForce:     raw.SpringMove[2],
			AngularMotor:         floatFlag(raw.SpringRot[0]),
			AngularMotorVelocity: raw.SpringRot[1],
			AngularMotorForce:    raw.SpringRot[2],
		}, nil
	case pmxfile.JointHinge:
		return pmxfile.Hinge{
			RigidA:           raw.RigidA,
			RigidB:           raw.RigidB,
			Position:         raw.Position,
			Rotation:         raw.Rotation,
			Low:              raw.MoveLower[0],
			High:             raw.MoveUpper[0],
			Softness:         raw.SpringMove[0],
			BiasFactor:       raw.SpringMove[1],
			RelaxationFactor: raw.SpringMove[2],
			EnableMotor:      floatFlag(raw.SpringRot[0]),
			TargetVelocity:   raw.SpringRot[1],
			MaxImpulse:       raw.SpringRot[2],
		}, nil
	}
	return nil, DiscriminantError{Field: "joint type", Value: int64(raw.Type)}
}

// jointToRaw packs the parameters of a joint into a raw record. A nil params
// is written as an empty spring 6DOF joint.
func jointToRaw(params pmxfile.JointParams) (raw jointRaw) {
	switch p := params.(type) {
	case pmxfile.Spring6DOF:
		raw = jointRaw{
			Position:   p.Position,
			Rotation:   p.Rotation,
			MoveLower:  p.MoveLower,
			MoveUpper:  p.MoveUpper,
			RotLower:   p.RotationLower,
			RotUpper:   p.RotationUpper,
			SpringMove: p.SpringMove,
			SpringRot:  p.SpringRotation,
		}
	case pmxfile.SixDOF:
		raw = jointRaw{
			Position:  p.Position,
			Rotation:  p.Rotation,
			MoveLower: p.MoveLower,
			MoveUpper: p.MoveUpper,
			RotLower:  p.RotationLower,
			RotUpper:  p.RotationUpper,
		}
	case pmxfile.P2P:
		raw = jointRaw{
			Position: p.Position,
			Rotation: p.Rotation,
		}
	case pmxfile.ConeTwist:
		raw = jointRaw{
			Position:   p.Position,
			Rotation:   p.Rotation,
			MoveLower:  pmxfile.Vec3{p.Damping, 0, flagFloat(p.EnableMotor)},
			MoveUpper:  pmxfile.Vec3{p.FixThresh, 0, p.MaxImpulse},
			RotLower:   pmxfile.Vec3{p.TwistSpan, p.SwingSpan2, p.SwingSpan1},
			SpringMove: pmxfile.Vec3{p.Softness, p.BiasFactor, p.RelaxationFactor},
			SpringRot:  p.MotorTarget,
		}
	case pmxfile.Slider:
		raw = jointRaw{
			Position:   p.Position,
			Rotation:   p.Rotation,
			MoveLower:  pmxfile.Vec3{p.LowerLinear},
			MoveUpper:  pmxfile.Vec3{p.UpperLinear},
			RotLower:   pmxfile.Vec3{p.LowerAngle},
			RotUpper:   pmxfile.Vec3{p.UpperAngle},
			SpringMove: pmxfile.Vec3{flagFloat(p.LinearMotor), p.LinearMotorVelocity, p.LinearMotorForce},
			SpringRot:  pmxfile.Vec3{flagFloat(p.AngularMotor), p.AngularMotorVelocity, p.AngularMotorForce},
		}
	case pmxfile.Hinge:
		raw = jointRaw{
			Position:   p.Position,
			Rotation:   p.Rotation,
			MoveLower:  pmxfile.Vec3{p.Low},
			MoveUpper:  pmxfile.Vec3{p.High},
			SpringMove: pmxfile.Vec3{p.Softness, p.BiasFactor, p.RelaxationFactor},
			SpringRot:  pmxfile.Vec3{flagFloat(p.EnableMotor), p.TargetVelocity, p.MaxImpulse},
		}
	case nil:
		return raw
	}
	raw.Type = uint8(params.JointType())
	raw.RigidA, raw.RigidB = params.Rigids()
	return raw
}

func (r *binaryReader) jointRaw(raw *jointRaw) (failed bool) {
	if r.Number(&raw.Type) {
		return true
	}
	if r.index(r.header.RigidIndex, &raw.RigidA) {
		return true
	}
	if r.index(r.header.RigidIndex, &raw.RigidB) {
		return true
	}
	for _, v := range []*pmxfile.Vec3{
		&raw.Position, &raw.Rotation,
		&raw.MoveLower, &raw.MoveUpper,
		&raw.RotLower, &raw.RotUpper,
		&raw.SpringMove, &raw.SpringRot,
	} {
		if r.floats(v[:]) {
			return true
		}
	}
	return false
}

func (w *binaryWriter) jointRaw(raw *jointRaw) (failed bool) {
	if w.Number(raw.Type) {
		return true
	}
	if w.index(w.header.RigidIndex, "joint rigid index", raw.RigidA) {
		return true
	}
	if w.index(w.header.RigidIndex, "joint rigid index", raw.RigidB) {
		return true
	}
	for _, v := range []*pmxfile.Vec3{
		&raw.Position, &raw.Rotation,
		&raw.MoveLower, &raw.MoveUpper,
		&raw.RotLower, &raw.RotUpper,
		&raw.SpringMove, &raw.SpringRot,
	} {
		if w.floats(v[:]) {
			return true
		}
	}
	return false
}
