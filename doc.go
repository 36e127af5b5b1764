// Package dff implements the group-projection engine of a distributed
// dataflow runtime: it records which nodes of a single-process pipeline/
// all-to-all/farm graph belong to which group, wraps the nodes that cross a
// group boundary with (de)serializing adapters, loads a cluster-wide JSON
// topology, and projects the locally running group's subgraph into a farm
// whose emitter and collector are a network receiver and sender.
//
// The underlying building-block framework (Node, Pipeline, AllToAll, Farm,
// Combine) is treated by the original system as an external collaborator;
// this package provides a minimal concrete implementation of it so the
// projection engine is self-contained and testable.
package dff
