package pmx

import (
	"reflect"
	"testing"

	"github.com/pmxutil/pmxfile"
	"github.com/pmxutil/pmxfile/errors"
)

var testJoints = []pmxfile.JointParams{
	pmxfile.Spring6DOF{
		RigidA:         0,
		RigidB:         1,
		Position:       pmxfile.Vec3{1, 2, 3},
		Rotation:       pmxfile.Vec3{0.1, 0.2, 0.3},
		MoveLower:      pmxfile.Vec3{-1, -1, -1},
		MoveUpper:      pmxfile.Vec3{1, 1, 1},
		RotationLower:  pmxfile.Vec3{-0.5, -0.5, -0.5},
		RotationUpper:  pmxfile.Vec3{0.5, 0.5, 0.5},
		SpringMove:     pmxfile.Vec3{10, 20, 30},
		SpringRotation: pmxfile.Vec3{40, 50, 60},
	},
	pmxfile.SixDOF{
		RigidA:        2,
		RigidB:        -1,
		MoveLower:     pmxfile.Vec3{-2, 0, 0},
		RotationUpper: pmxfile.Vec3{0, 0, 1.5},
	},
	pmxfile.P2P{
		RigidA:   3,
		RigidB:   4,
		Position: pmxfile.Vec3{0, 10, 0},
	},
	pmxfile.ConeTwist{
		RigidA:           1,
		RigidB:           2,
		Position:         pmxfile.Vec3{0, 1, 0},
		SwingSpan1:       0.7,
		SwingSpan2:       0.6,
		TwistSpan:        0.5,
		Softness:         1,
		BiasFactor:       0.3,
		RelaxationFactor: 1,
		Damping:          0.1,
		FixThresh:        0.05,
		EnableMotor:      true,
		MaxImpulse:       12,
		MotorTarget:      pmxfile.Vec3{0.1, 0.2, 0.3},
	},
	pmxfile.Slider{
		RigidA:               0,
		RigidB:               5,
		LowerLinear:          -1,
		UpperLinear:          1,
		LowerAngle:           -0.25,
		UpperAngle:           0.25,
		LinearMotor:          true,
		LinearMotorVelocity:  2,
		LinearMotorForce:     3,
		AngularMotorVelocity: 4,
		AngularMotorForce:    5,
	},
	pmxfile.Hinge{
		RigidA:           6,
		RigidB:           7,
		Rotation:         pmxfile.Vec3{0, 0, 1},
		Low:              -1.5,
		High:             1.5,
		Softness:         0.9,
		BiasFactor:       0.3,
		RelaxationFactor: 1,
		EnableMotor:      true,
		TargetVelocity:   8,
		MaxImpulse:       9,
	},
}

func TestJointRaw(t *testing.T) {
	for _, params := range testJoints {
		raw := jointToRaw(params)
		if raw.Type != uint8(params.JointType()) {
			t.Errorf("%s: unexpected type tag %d", params.JointType(), raw.Type)
		}
		got, err := jointFromRaw(&raw)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", params.JointType(), err)
			continue
		}
		if !reflect.DeepEqual(got, params) {
			t.Errorf("%s: expected %+v, got %+v", params.JointType(), params, got)
		}
	}
}

func TestJointRawLayout(t *testing.T) {
	raw := jointToRaw(testJoints[3])
	if raw.RotLower != (pmxfile.Vec3{0.5, 0.6, 0.7}) {
		t.Error("cone twist spans stored in wrong order:", raw.RotLower)
	}
	if raw.MoveLower != (pmxfile.Vec3{0.1, 0, 1}) {
		t.Error("cone twist damping and motor flag stored in wrong slot:", raw.MoveLower)
	}

	raw = jointToRaw(testJoints[5])
	if raw.SpringRot != (pmxfile.Vec3{1, 8, 9}) {
		t.Error("hinge motor stored in wrong slot:", raw.SpringRot)
	}
}

func TestJointFlagTolerance(t *testing.T) {
	for _, c := range []struct {
		v      float32
		expect bool
	}{
		{1, true},
		{0.995, true},
		{1.005, true},
		{0.98, false},
		{0, false},
		{2, false},
	} {
		raw := jointRaw{Type: uint8(pmxfile.JointHinge), SpringRot: pmxfile.Vec3{c.v}}
		params, err := jointFromRaw(&raw)
		if err != nil {
			t.Fatal("unexpected error:", err)
		}
		if got := params.(pmxfile.Hinge).EnableMotor; got != c.expect {
			t.Errorf("flag %g: expected %t, got %t", c.v, c.expect, got)
		}
	}
}

func TestJointUnknownType(t *testing.T) {
	raw := jointRaw{Type: 6}
	_, err := jointFromRaw(&raw)
	var de DiscriminantError
	if !errors.As(err, &de) || de.Value != 6 {
		t.Error("expected error (DiscriminantError), got:", err)
	}
}

func TestJointNilParams(t *testing.T) {
	raw := jointToRaw(nil)
	if raw != (jointRaw{}) {
		t.Errorf("expected zero record, got %+v", raw)
	}
}
