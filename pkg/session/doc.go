/*
Package session holds the mutable side of blockflow.

An Editor is the single mutator of one workflow canvas: it inserts, connects,
configures and removes blocks, keeps the deletable flags current after every
change, owns the workflow error banner, and runs the save gate.

A Manager keeps the open editors of a process and serialises access to each
one with reference-counted per-session locks, optionally backed by a
DistributedLocker so that several replicas never mutate the same session at
once. Saved documents go through a ports.WorkflowStore.
*/
package session
