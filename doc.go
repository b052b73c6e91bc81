// Package flick provides the touch-gesture core of a scrollable viewport
// widget: gesture recognition (tap vs. drag disambiguation), physics-based
// overscroll effects, and a delegation protocol that coordinates nested
// scroll views sharing a single touch.
//
// The package deliberately stops at the widget boundary. Layout, rendering
// and raw input decoding belong to the embedding toolkit; flick consumes an
// ordered stream of touch down/move/up events (see Touch and Dispatcher)
// and exposes scroll positions plus on-scroll-start/move/stop callbacks.
//
// All state is single-threaded and frame-driven. A Clock owns every
// deferred decision (gesture timeouts, settle-phase polling, synthetic
// click completion); advancing the Clock from the host's frame loop drives
// all animation and physics.
package flick
