// Package project implements the Project aggregate: the decider that turns
// commands into events and the fold that rebuilds state from those events.
//
// A project owns its tasks and tags exclusively and references members by user
// id only. The aggregate has two macro states. Before project.created is folded
// only project.create is legal; afterwards every other command is decided
// against its own preconditions. User existence is checked by callers before a
// command reaches the decider.
package project
