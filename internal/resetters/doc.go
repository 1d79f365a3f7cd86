// Package resetters provides the reset policies a [rdw.Manager] runs when
// redirection alone cannot keep the user inside the tracking area.
package resetters
