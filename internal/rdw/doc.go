// Package rdw runs the per-tick redirected walking control loop.
//
// A [Manager] owns the tracking area, the active [Redirector] and
// [Resetter], and the statistics aggregator. Each call to [Manager.Tick]
// performs, in order:
//
//  1. the user-state update (virtual and real pose, per-tick deltas)
//  2. the redirector's observation hook, if it implements [Observer]
//  3. the reset trigger and the backup out-of-bounds check
//  4. either the active reset or the redirection step
//  5. the statistics update
//  6. the previous-state snapshot
//
// Algorithms never touch the aggregator directly; they inject gains through
// [Manager.InjectRotation], [Manager.InjectCurvature],
// [Manager.InjectTranslation] and [Manager.InjectResetRotation], which
// apply the change to the redirected frame and report the matching event.
//
// The manager is not safe for concurrent use. Independent experiments use
// independent managers.
package rdw
