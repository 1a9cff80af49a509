// Package state keeps per-user conversation steps for multi-message flows
// such as composing a broadcast. A step lasts until it is cleared or its
// idle timeout passes. Menu navigation never touches it.
package state
