// Package session pairs a reference schema with an obfuscated one by walking
// both declaration orders side by side.
//
// A Session is a state machine: Start moves it to the first pairing that needs
// an outside decision, and Advance applies that decision and moves on. Pairings
// that are certain (cross-set exact-unique matches and structurally identical
// types at the cursors) are accepted without asking. Run drives a Session with
// a Decider, which may be an operator at a terminal or a scripted list.
package session
