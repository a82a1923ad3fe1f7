/*
Package session serializes access to persisted session State.

A Manager wraps a ports.StateStore with per-session locks (reference counted
so idle sessions leave nothing behind) and, optionally, a distributed locker
so replicas sharing one store do not interleave read-modify-write cycles.
*/
package session
