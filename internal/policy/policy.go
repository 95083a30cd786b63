// Package policy decides whether a caller may perform an action on a resource.
package policy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionMine     Action = "mine"
	ActionBlock    Action = "block"
)

type Rule int

const (
	// Deny is the zero value so a missing entry refuses the action.
	Deny Rule = iota
	Authenticated
	Admin
)

func (r Rule) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "deny"
	}
}

// Table maps resource and action to the rule that guards it.
type Table map[string]map[Action]Rule

// Rule returns the rule for an action, or Deny when none is declared.
func (t Table) Rule(resource string, action Action) Rule {
	return t[resource][action]
}

func crud(list, retrieve, create, update, del Rule) map[Action]Rule {
	return map[Action]Rule{
		ActionList:     list,
		ActionRetrieve: retrieve,
		ActionCreate:   create,
		ActionUpdate:   update,
		ActionDelete:   del,
	}
}

func with(rules map[Action]Rule, action Action, rule Rule) map[Action]Rule {
	rules[action] = rule
	return rules
}

// DefaultTable returns the access rules of the clinic API.
func DefaultTable() Table {
	return Table{
		model.ResourceAccounts:      with(crud(Admin, Admin, Admin, Admin, Admin), ActionMine, Authenticated),
		model.ResourceClinics:       crud(Authenticated, Authenticated, Admin, Admin, Admin),
		model.ResourcePatients:      with(with(crud(Admin, Authenticated, Authenticated, Authenticated, Authenticated), ActionMine, Authenticated), ActionBlock, Admin),
		model.ResourceAppointments:  with(crud(Authenticated, Authenticated, Authenticated, Authenticated, Authenticated), ActionMine, Authenticated),
		model.ResourceDentalRecords: with(crud(Admin, Admin, Admin, Admin, Admin), ActionMine, Authenticated),
		model.ResourceFiles:         with(crud(Admin, Admin, Admin, Admin, Admin), ActionMine, Authenticated),
		model.ResourceBlocklist:     crud(Admin, Admin, Admin, Deny, Admin),
		model.ResourceNotes:         with(crud(Admin, Admin, Admin, Admin, Admin), ActionMine, Authenticated),
		model.ResourceAds:           with(crud(Admin, Admin, Admin, Admin, Admin), ActionMine, Authenticated),
		model.ResourceUploads: {
			ActionRetrieve: Authenticated,
			ActionCreate:   Admin,
		},
	}
}

// BlockChecker reports whether an account or address is on the blocklist.
type BlockChecker interface {
	IsBlocked(ctx context.Context, accountID *uuid.UUID, ip string) (bool, error)
}

type Engine struct {
	blocks  BlockChecker
	table   Table
	metrics *metrics.Metrics
}

func NewEngine(blocks BlockChecker, table Table, m *metrics.Metrics) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	return &Engine{blocks: blocks, table: table, metrics: m}
}

// Authorize runs the blocklist check before the rule lookup, so a blocked caller
// is refused even on actions open to everyone.
func (e *Engine) Authorize(ctx context.Context, caller Caller, resource string, action Action) error {
	var account *uuid.UUID
	if !caller.Anonymous() {
		account = &caller.AccountID
	}

	blocked, err := e.blocks.IsBlocked(ctx, account, caller.IP)
	if err != nil {
		return errors.Internal(fmt.Errorf("failed to check blocklist: %w", err))
	}
	if blocked {
		e.deny(caller, resource, action, "blocked")
		return errors.Forbidden(nil)
	}

	rule := e.table.Rule(resource, action)
	switch {
	case rule == Deny:
		e.deny(caller, resource, action, "deny")
		return errors.Forbidden(nil)
	case caller.Anonymous():
		e.deny(caller, resource, action, "anonymous")
		return errors.Unauthorized(nil)
	case rule == Admin && !caller.IsAdmin:
		e.deny(caller, resource, action, "role")
		return errors.Forbidden(nil)
	}
	return nil
}

func (e *Engine) deny(caller Caller, resource string, action Action, reason string) {
	e.metrics.Deny(resource, string(action), reason)
	log.Debug().
		Str("resource", resource).
		Str("action", string(action)).
		Str("account", caller.Username).
		Str("ip", caller.IP).
		Str("reason", reason).
		Msg("Action denied")
}
