// Package record drives a zoom recording: it plans the number of frames
// needed to reach a target magnification at a given velocity, advances the
// view by a constant per-frame factor and feeds each rendered frame to an
// encoder.
//
// # States
//
//	Idle ──configure──▶ Armed ──start──▶ Active ⇄ Paused
//	                                       │
//	                      target reached / stop
//	                                       ▼
//	                                  Finalizing ──▶ Idle
//
// A failed start leaves the controller where it was.
package record
