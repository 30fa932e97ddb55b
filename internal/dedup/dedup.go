// Package dedup detects duplicate leads by exact comparison of normalized
// identity keys. The first record seen for a key wins.
package dedup

import (
	"strings"

	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/normalize"
)

// Kind names an identity projection.
type Kind string

const (
	KindEmail  Kind = "email"
	KindPhone  Kind = "phone"
	KindDomain Kind = "domain"
	KindName   Kind = "name"
)

// Key is one identity projection of a lead.
type Key struct {
	Kind  Kind
	Value string
}

// Keys returns the identity projections available on lead: lower-cased email,
// phone digits, website domain and normalized name. Empty projections are
// omitted.
func Keys(lead *model.Lead) []Key {
	var keys []Key
	if email := strings.ToLower(strings.TrimSpace(model.Deref(lead.Email))); email != "" {
		keys = append(keys, Key{KindEmail, email})
	}
	if digits := normalize.DigitsOnly(model.Deref(lead.Phone)); digits != "" {
		keys = append(keys, Key{KindPhone, digits})
	}
	if lead.Website != nil {
		if domain, ok := normalize.ExtractDomain(*lead.Website); ok {
			keys = append(keys, Key{KindDomain, domain})
		}
	}
	if name := normalize.NormalizeName(lead.Name); name != "" {
		keys = append(keys, Key{KindName, name})
	}
	return keys
}

// Deduplicator remembers every key it has accepted. A lead sharing any single
// key with an accepted lead is a duplicate. It is not safe for concurrent use.
type Deduplicator struct {
	seen map[Key]struct{}
}

// New returns an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{seen: make(map[Key]struct{})}
}

// Seen reports whether any of lead's keys was already accepted.
func (d *Deduplicator) Seen(lead *model.Lead) bool {
	for _, k := range Keys(lead) {
		if _, ok := d.seen[k]; ok {
			return true
		}
	}
	return false
}

// Add records all of lead's keys.
func (d *Deduplicator) Add(lead *model.Lead) {
	for _, k := range Keys(lead) {
		d.seen[k] = struct{}{}
	}
}

// Offer accepts lead unless it is a duplicate and reports whether it was
// accepted.
func (d *Deduplicator) Offer(lead *model.Lead) bool {
	if d.Seen(lead) {
		return false
	}
	d.Add(lead)
	return true
}

// Seed records the keys of already persisted leads without filtering them.
func (d *Deduplicator) Seed(leads []model.Lead) {
	for i := range leads {
		d.Add(&leads[i])
	}
}

// Len returns the number of distinct keys recorded.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}

// Filter returns the leads that survive deduplication in input order and the
// number dropped.
func Filter(leads []model.Lead) ([]model.Lead, int) {
	d := New()
	kept := make([]model.Lead, 0, len(leads))
	for i := range leads {
		if d.Offer(&leads[i]) {
			kept = append(kept, leads[i])
		}
	}
	return kept, len(leads) - len(kept)
}

// Signature is the strict identity of a record from collector output.
type Signature struct {
	Name    string
	Address string
}

// SignatureOf returns the lower-cased trimmed name and address of lead.
func SignatureOf(lead *model.Lead) Signature {
	return Signature{
		Name:    strings.ToLower(strings.TrimSpace(lead.Name)),
		Address: strings.ToLower(strings.TrimSpace(model.Deref(lead.Address))),
	}
}

// Complete reports whether both parts of the signature are present.
func (s Signature) Complete() bool {
	return s.Name != "" && s.Address != ""
}

// StrictDeduplicator keys leads on name and address together. Leads missing
// either part are always rejected.
type StrictDeduplicator struct {
	seen map[Signature]struct{}
}

// NewStrict returns an empty StrictDeduplicator.
func NewStrict() *StrictDeduplicator {
	return &StrictDeduplicator{seen: make(map[Signature]struct{})}
}

// Seed records the signatures of already persisted leads.
func (d *StrictDeduplicator) Seed(leads []model.Lead) {
	for i := range leads {
		d.seen[SignatureOf(&leads[i])] = struct{}{}
	}
}

// Offer accepts lead when its signature is complete and unseen.
func (d *StrictDeduplicator) Offer(lead *model.Lead) bool {
	sig := SignatureOf(lead)
	if !sig.Complete() {
		return false
	}
	if _, ok := d.seen[sig]; ok {
		return false
	}
	d.seen[sig] = struct{}{}
	return true
}
