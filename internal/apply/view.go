package apply

import "krushisetu/internal/requirement"

// view is the derived state of a draft at one revision.
type view struct {
	rev     uint64
	docs    []DocumentRecord
	missing requirement.Set
}

func (d *Draft) derived() *view {
	if d.cache != nil && d.cache.rev == d.rev {
		return d.cache
	}
	docs := make([]DocumentRecord, 0, len(d.staged)+len(d.persisted))
	for _, r := range d.staged {
		docs = append(docs, *r)
	}
	for _, r := range d.persisted {
		docs = append(docs, *r)
	}
	d.cache = &view{
		rev:     d.rev,
		docs:    docs,
		missing: d.required.Missing(d.present(true)),
	}
	return d.cache
}

// Documents returns staged records, most recent first, followed by persisted records in
// server order. A record checked out for editing is not listed.
func (d *Draft) Documents() []DocumentRecord {
	v := d.derived()
	out := make([]DocumentRecord, len(v.docs))
	copy(out, v.docs)
	return out
}

// Staged returns only the staged records, most recent first.
func (d *Draft) Staged() []DocumentRecord {
	return d.Documents()[:len(d.staged)]
}

// Persisted returns only the persisted records in server order.
func (d *Draft) Persisted() []DocumentRecord {
	return d.Documents()[len(d.staged):]
}

// Missing returns the required documents not yet present, in required order.
func (d *Draft) Missing() requirement.Set {
	v := d.derived()
	out := make(requirement.Set, len(v.missing))
	copy(out, v.missing)
	return out
}

// Complete reports whether every required document is present.
func (d *Draft) Complete() bool {
	return len(d.derived().missing) == 0
}
