package model

import (
	"net"

	"github.com/google/uuid"
)

// Blocklist bars an account, an address or both from every action.
type Blocklist struct {
	Base
	AccountID *uuid.UUID `json:"account,omitempty" db:"account_id"`
	IPAddr    *string    `json:"ip_addr,omitempty" db:"ip_addr" validate:"omitempty,ip"`
}

func (b *Blocklist) Clone() *Blocklist {
	c := *b
	c.AccountID = clonePtr(b.AccountID)
	c.IPAddr = clonePtr(b.IPAddr)
	return &c
}

// Normalize drops empty references and rewrites the address in canonical form.
func (b *Blocklist) Normalize() {
	if b.AccountID != nil && *b.AccountID == uuid.Nil {
		b.AccountID = nil
	}
	if b.IPAddr == nil {
		return
	}
	if *b.IPAddr == "" {
		b.IPAddr = nil
		return
	}
	if ip := net.ParseIP(*b.IPAddr); ip != nil {
		canonical := ip.String()
		b.IPAddr = &canonical
	}
}

// Empty reports an entry that matches nobody.
func (b *Blocklist) Empty() bool {
	return b.AccountID == nil && b.IPAddr == nil
}

// NormalizeIP returns the canonical text form of addr, or addr unchanged if it does not parse.
func NormalizeIP(addr string) string {
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String()
	}
	return addr
}
