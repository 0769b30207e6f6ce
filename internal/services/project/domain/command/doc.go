// Package command defines the command envelope, the decision type returned by
// deciders, and the registry that validates commands before they are decided.
package command
