package pmxfile

// RigidShape is the collision shape of a rigid body.
type RigidShape uint8

const (
	ShapeSphere RigidShape = iota
	ShapeBox
	ShapeCapsule
)

func (s RigidShape) String() string {
	switch s {
	case ShapeSphere:
		return "Sphere"
	case ShapeBox:
		return "Box"
	case ShapeCapsule:
		return "Capsule"
	}
	return "Invalid"
}

// RigidCalcMethod determines how a rigid body relates to its bone.
type RigidCalcMethod uint8

const (
	// CalcStatic makes the rigid body follow its bone.
	CalcStatic RigidCalcMethod = iota
	// CalcDynamic makes the bone follow the simulated rigid body.
	CalcDynamic
	// CalcDynamicWithBone simulates rotation only, aligning the position
	// with the bone.
	CalcDynamicWithBone
)

func (m RigidCalcMethod) String() string {
	switch m {
	case CalcStatic:
		return "Static"
	case CalcDynamic:
		return "Dynamic"
	case CalcDynamicWithBone:
		return "DynamicWithBonePosition"
	}
	return "Invalid"
}

// Rigid is a rigid body used for physics simulation.
type Rigid struct {
	Name   string
	NameEN string

	// Bone is the related bone, or -1.
	Bone int32

	Group uint8

	// NoCollisionMask has one bit per group that the body does not collide
	// with.
	NoCollisionMask uint16

	Shape    RigidShape
	Size     Vec3
	Position Vec3
	Rotation Vec3

	Mass           float32
	MoveResist     float32
	RotationResist float32
	Repulsion      float32
	Friction       float32

	CalcMethod RigidCalcMethod
}

////////////////////////////////////////////////////////////////

// JointType identifies the kind of a joint. Its value is the tag used by the
// binary format.
type JointType uint8

const (
	JointSpring6DOF JointType = iota
	JointSixDOF
	JointP2P
	JointConeTwist
	JointSlider
	JointHinge
)

var jointTypeStrings = map[JointType]string{
	JointSpring6DOF: "Spring6DOF",
	JointSixDOF:     "SixDOF",
	JointP2P:        "P2P",
	JointConeTwist:  "ConeTwist",
	JointSlider:     "Slider",
	JointHinge:      "Hinge",
}

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t JointType) String() string {
	s, ok := jointTypeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

// V21 returns whether the joint type requires version 2.1.
func (t JointType) V21() bool {
	return t >= JointConeTwist
}

// Joint connects two rigid bodies.
type Joint struct {
	Name   string
	NameEN string
	Params JointParams
}

// JointParams holds the parameters of one kind of joint.
type JointParams interface {
	// JointType returns the type tag of the parameters.
	JointType() JointType
	// Rigids returns the indexes of the connected rigid bodies.
	Rigids() (a, b int32)
}

// Spring6DOF is a six-degree-of-freedom constraint with springs.
type Spring6DOF struct {
	RigidA, RigidB int32

	Position Vec3
	Rotation Vec3

	MoveLower     Vec3
	MoveUpper     Vec3
	RotationLower Vec3
	RotationUpper Vec3

	SpringMove     Vec3
	SpringRotation Vec3
}

// SixDOF is a six-degree-of-freedom constraint without springs.
type SixDOF struct {
	RigidA, RigidB int32

	Position Vec3
	Rotation Vec3

	MoveLower     Vec3
	MoveUpper     Vec3
	RotationLower Vec3
	RotationUpper Vec3
}

// P2P is a point-to-point constraint.
type P2P struct {
	RigidA, RigidB int32

	Position Vec3
	Rotation Vec3
}

// ConeTwist is a cone-twist constraint. (2.1)
type ConeTwist struct {
	RigidA, RigidB int32

	Position Vec3
	Rotation Vec3

	SwingSpan1 float32
	SwingSpan2 float32
	TwistSpan  float32

	Softness         float32
	BiasFactor       float32
	RelaxationFactor float32

	Damping     float32
	FixThresh   float32
	EnableMotor bool
	MaxImpulse  float32
	MotorTarget Vec3
}

// Slider is a slider constraint. (2.1)
type Slider struct {
	RigidA, RigidB int32

	Position Vec3
	Rotation Vec3

	LowerLinear float32
	UpperLinear float32
	LowerAngle  float32
	UpperAngle  float32

	LinearMotor         bool
	LinearMotorVelocity float32
	LinearMotorForce    float32

	AngularMotor         bool
	AngularMotorVelocity float32
	AngularMotorForce    float32
}

// Hinge is a hinge constraint. (2.1)
type Hinge struct {
	RigidA, RigidB int32

	Position Vec3
	Rotation Vec3

	Low  float32
	High float32

	Softness         float32
	BiasFactor       float32
	RelaxationFactor float32

	EnableMotor    bool
	TargetVelocity float32
	MaxImpulse     float32
}

func (Spring6DOF) JointType() JointType { return JointSpring6DOF }
func (SixDOF) JointType() JointType     { return JointSixDOF }
func (P2P) JointType() JointType        { return JointP2P }
func (ConeTwist) JointType() JointType  { return JointConeTwist }
func (Slider) JointType() JointType     { return JointSlider }
func (Hinge) JointType() JointType      { return JointHinge }

func (j Spring6DOF) Rigids() (a, b int32) { return j.RigidA, j.RigidB }
func (j SixDOF) Rigids() (a, b int32)     { return j.RigidA, j.RigidB }
func (j P2P) Rigids() (a, b int32)        { return j.RigidA, j.RigidB }
func (j ConeTwist) Rigids() (a, b int32)  { return j.RigidA, j.RigidB }
func (j Slider) Rigids() (a, b int32)     { return j.RigidA, j.RigidB }
func (j Hinge) Rigids() (a, b int32)      { return j.RigidA, j.RigidB }

////////////////////////////////////////////////////////////////

// SoftBodyForm is the topology of a soft body.
type SoftBodyForm uint8

const (
	SoftBodyTriMesh SoftBodyForm = iota
	SoftBodyRope
)

func (f SoftBodyForm) String() string {
	switch f {
	case SoftBodyTriMesh:
		return "TriMesh"
	case SoftBodyRope:
		return "Rope"
	}
	return "Invalid"
}

// AeroModel is the aerodynamics model of a soft body.
type AeroModel int32

const (
	AeroVPoint AeroModel = iota
	AeroVTwoSided
	AeroVOneSided
	AeroFTwoSided
	AeroFOneSided
)

var aeroModelStrings = map[AeroModel]string{
	AeroVPoint:    "VPoint",
	AeroVTwoSided: "VTwoSided",
	AeroVOneSided: "VOneSided",
	AeroFTwoSided: "FTwoSided",
	AeroFOneSided: "FOneSided",
}

func (m AeroModel) String() string {
	s, ok := aeroModelStrings[m]
	if !ok {
		return "Invalid"
	}
	return s
}

// SoftBodyFlags is the bit set of a soft body.
type SoftBodyFlags uint8

const (
	SoftBodyBLink SoftBodyFlags = 1 << iota
	SoftBodyClusters
	SoftBodyLinkHybrid
)

// SoftBodyConfig holds the solver coefficients of a soft body. The field
// names follow the Bullet soft body configuration.
type SoftBodyConfig struct {
	VCF float32 // velocity correction factor
	DP  float32 // damping
	DG  float32 // drag
	LF  float32 // lift
	PR  float32 // pressure
	VC  float32 // volume conservation
	DF  float32 // dynamic friction
	MT  float32 // pose matching
	CHR float32 // rigid contact hardness
	KHR float32 // kinetic contact hardness
	SHR float32 // soft contact hardness
	AHR float32 // anchor hardness
}

// SoftBodyCluster holds the cluster coefficients of a soft body.
type SoftBodyCluster struct {
	SRHR float32
	SKHR float32
	SSHR float32

	SRSplit float32
	SKSplit float32
	SSSplit float32
}

// SoftBodyIteration holds the solver iteration counts of a soft body.
type SoftBodyIteration struct {
	Velocity int32
	Position int32
	Drift    int32
	Cluster  int32
}

// SoftBodyMaterial holds the stiffness coefficients of a soft body.
type SoftBodyMaterial struct {
	LST float32 // linear
	AST float32 // angular
	VST float32 // volume
}

// SoftBodyAnchor binds a vertex of a soft body to a rigid body.
type SoftBodyAnchor struct {
	Rigid    int32
	Vertex   int32
	NearMode bool
}

// SoftBody is a cloth or rope simulated by the physics engine. (2.1)
type SoftBody struct {
	Name   string
	NameEN string

	Form     SoftBodyForm
	Material int32

	Group           uint8
	NoCollisionMask uint16

	Flags SoftBodyFlags

	BLinkDistance   int32
	Clusters        int32
	Mass            float32
	CollisionMargin float32
	AeroModel       AeroModel

	Config    SoftBodyConfig
	Cluster   SoftBodyCluster
	Iteration SoftBodyIteration
	Stiffness SoftBodyMaterial

	Anchors     []SoftBodyAnchor
	PinVertices []int32
}
