package geom

// Frame is a rigid 2D transform: a yaw about the up axis followed by a
// translation. World = Position + Rotate(local, Yaw).
type Frame struct {
	Position Vec2
	Yaw      float64
}

// Identity is the frame that leaves every point where it is.
func Identity() Frame {
	return Frame{}
}

func (f Frame) ToWorld(local Vec2) Vec2 {
	return f.Position.Add(Rotate(local, f.Yaw))
}

func (f Frame) ToLocal(world Vec2) Vec2 {
	return Rotate(world.Sub(f.Position), -f.Yaw)
}

func (f Frame) DirToWorld(local Vec2) Vec2 {
	return Rotate(local, f.Yaw)
}

func (f Frame) DirToLocal(world Vec2) Vec2 {
	return Rotate(world, -f.Yaw)
}

// RotateAround turns the frame by deg degrees about a world-space pivot.
// Points at the pivot keep their world position.
func (f *Frame) RotateAround(pivot Vec2, deg float64) {
	f.Position = pivot.Add(Rotate(f.Position.Sub(pivot), deg))
	f.Yaw = WrapAngle(f.Yaw + deg)
}

// Translate shifts the frame by a world-space offset.
func (f *Frame) Translate(t Vec2) {
	f.Position = f.Position.Add(t)
}
