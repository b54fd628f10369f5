// Package session owns the explorer state and drives it one frame at a
// time.
//
// A [Session] is confined to the render loop goroutine. Command lines
// reach it through an input.Mailbox; key presses from the front ends go
// through [Session.HandleKey]. Each [Session.Step] applies at most one
// pending command, advances an active recording by one frame and
// re-renders when the view or palette changed.
package session
