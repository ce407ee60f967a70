// Package wantlist walks the wanted and owned hierarchies and reconciles them
// into want-lists.
//
// Every run works on clones of its inputs: the loaded hierarchies are never
// annotated, so the same inputs can be reconciled any number of times.
package wantlist

import (
	"go.uber.org/zap"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/cards"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/reconcile"
)

// Options tune a reconciliation run.
type Options struct {
	// Filter restricts which wanted elements may be satisfied by owned copies
	// when building the detailed want-list.
	Filter reconcile.Filter
}

// Engine drives the reconciliation of a registry against an owned collection.
type Engine struct {
	logger  *zap.Logger
	options Options
}

// New creates an engine. A nil logger disables logging.
func New(logger *zap.Logger, options Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, options: options}
}

// WantList is the flat reconciliation of every wanted card against every owned card.
type WantList struct {
	Needed  []*collection.Element // Wanted cards with no owned copy left
	Covered []*collection.Element // Owned copies consumed by a requirement
	Surplus []*collection.Element // Owned copies nothing requires
}

// CreateWantList flattens every collection and deck, flattens the owned
// collection, and partitions them first by print code then by global id.
func (e *Engine) CreateWantList(reg *collection.Registry, owned *collection.Owned) *WantList {
	wanted := collection.CloneAll(reg.Flatten())
	pool := owned.Clone().Flatten()

	res := reconcile.PartitionChain(wanted, pool, cards.ByPrintCode, cards.ByGlobalID)

	e.logger.Debug("want-list created",
		zap.Int("wanted", len(wanted)),
		zap.Int("owned", len(pool)),
		zap.Int("needed", len(res.SourceOnly)),
		zap.Int("covered", len(res.Intersection)),
		zap.Int("surplus", len(res.PoolOnly)),
	)

	return &WantList{
		Needed:  res.SourceOnly,
		Covered: res.Intersection,
		Surplus: res.PoolOnly,
	}
}

// ThirdPartyResult is the cross-check of a third party's list against the want-list.
type ThirdPartyResult struct {
	Obtainable   []*collection.Element // Third-party cards that are still needed
	Wanted       []*collection.Element // Want-list entries they satisfy
	Unneeded     []*collection.Element // Third-party cards nobody needs
	StillMissing []*collection.Element // Want-list entries the third party cannot supply
}

// CrossCheckThirdParty partitions a third party's list against the needed
// cards, by print code then by global id.
func (e *Engine) CrossCheckThirdParty(thirdParty, needed []*collection.Element) *ThirdPartyResult {
	res := reconcile.PartitionChain(thirdParty, needed, cards.ByPrintCode, cards.ByGlobalID)

	e.logger.Debug("third-party list cross-checked",
		zap.Int("offered", len(thirdParty)),
		zap.Int("needed", len(needed)),
		zap.Int("obtainable", len(res.Pairs)),
	)

	return &ThirdPartyResult{
		Obtainable:   res.Matched(),
		Wanted:       res.Intersection,
		Unneeded:     res.SourceOnly,
		StillMissing: res.PoolOnly,
	}
}
