// Package redirectors holds the redirection algorithms a [rdw.Manager] runs
// while the user is walking.
//
// The steer-to family ([SteerToCenter], [SteerToOrbit]) shares one gain
// shaping pipeline in [SteerTo] and differs only in how it picks the
// steering target. [ZigZag] instead solves for all three gains each tick so
// a zig-zag virtual path folds onto two fixed real anchors.
package redirectors
