// Package geom holds the ground-plane math shared by the redirection core.
//
// All positions and directions live on the x/z plane with +z forward, stored
// as [Vec2] values whose first component is x and second is z. Angles are in
// degrees and a positive angle turns clockwise when seen from above, which
// matches a yaw rotation about the up axis.
//
// [Frame] models the redirected root: the tracked user's real pose is local to
// the frame and the virtual pose is the frame applied to it.
package geom
