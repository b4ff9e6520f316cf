// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"slices"

	"github.com/bureau-foundation/envvars/lib/fault"
)

// DefaultSentinel is the selector name reserved for a context's default
// entry unless a node configures another.
const DefaultSentinel = "default"

// NodeConfig holds the fields of a Node before validation.
type NodeConfig struct {
	Context          string
	ContextRequired  bool
	Selector         string
	SelectorRequired bool
	DefaultPolicy    DefaultPolicy
	Sections         Sections
	// Sentinel defaults to DefaultSentinel when empty.
	Sentinel string
	Shape    Shape
	Children []*Node
}

// Node is one level of the walk schema.
type Node struct {
	context          string
	contextRequired  bool
	selector         string
	selectorRequired bool
	defaultPolicy    DefaultPolicy
	sections         Sections
	sentinel         string
	shape            Shape
	children         []*Node
}

// NewNode validates config and builds a Node.
func NewNode(config NodeConfig) (*Node, error) {
	if config.Sentinel == "" {
		config.Sentinel = DefaultSentinel
	}
	if config.Context == "" {
		return nil, fault.New(fault.Structural, "", "node context name is blank")
	}
	if config.Selector == "" {
		return nil, fault.New(fault.Structural, config.Context,
			"node selector for context %q is blank", config.Context)
	}
	if config.Selector == config.Sentinel {
		return nil, fault.New(fault.Structural, config.Context,
			"selector %q for context %q collides with the default sentinel", config.Selector, config.Context).WithKey(config.Selector)
	}
	if _, ok := defaultPolicyNames[config.DefaultPolicy]; !ok {
		return nil, fault.New(fault.Structural, config.Context, "invalid default policy %d", int(config.DefaultPolicy))
	}
	for i, child := range config.Children {
		if child == nil {
			return nil, fault.New(fault.Structural, config.Context, "child node %d is nil", i)
		}
	}

	return &Node{
		context:          config.Context,
		contextRequired:  config.ContextRequired,
		selector:         config.Selector,
		selectorRequired: config.SelectorRequired,
		defaultPolicy:    config.DefaultPolicy,
		sections:         config.Sections,
		sentinel:         config.Sentinel,
		shape:            config.Shape,
		children:         slices.Clone(config.Children),
	}, nil
}

func (n *Node) Context() string              { return n.context }
func (n *Node) ContextRequired() bool        { return n.contextRequired }
func (n *Node) Selector() string             { return n.selector }
func (n *Node) SelectorRequired() bool       { return n.selectorRequired }
func (n *Node) DefaultPolicy() DefaultPolicy { return n.defaultPolicy }
func (n *Node) Sections() Sections           { return n.sections }
func (n *Node) Sentinel() string             { return n.sentinel }
func (n *Node) Shape() Shape                 { return n.shape }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}
