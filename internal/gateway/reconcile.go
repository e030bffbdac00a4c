package gateway

import (
	"context"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
)

// ImportCheck compares one manifest with the rows stored under it.
type ImportCheck struct {
	Manifest  model.ImportManifest
	Persisted int
}

// Complete reports whether every row the manifest counted was stored.
func (c ImportCheck) Complete() bool {
	return c.Persisted == c.Manifest.RecordCount
}

// Missing is the number of rows the manifest counted but the store lacks.
func (c ImportCheck) Missing() int {
	return max(c.Manifest.RecordCount-c.Persisted, 0)
}

// Reconciliation is the result of checking an owner's imports.
type Reconciliation struct {
	Imports []ImportCheck
	// Orphaned counts rows whose import no longer exists or that were
	// never attached to one.
	Orphaned int
	Total    int
}

// Incomplete returns the checks whose manifest count and stored rows
// disagree.
func (r Reconciliation) Incomplete() []ImportCheck {
	var out []ImportCheck
	for _, c := range r.Imports {
		if !c.Complete() {
			out = append(out, c)
		}
	}
	return out
}

// Reconcile checks every import of owner against the stored rows, which
// surfaces saves that stopped part way.
func (g *Gateway) Reconcile(ctx context.Context, owner string) (Reconciliation, error) {
	if noOwner(owner) {
		return Reconciliation{}, nil
	}

	manifests, err := g.Manifests(ctx, owner)
	if err != nil {
		return Reconciliation{}, err
	}

	total, err := g.store.CountRecords(ctx, service.RecordQuery{Owner: owner})
	if err != nil {
		return Reconciliation{}, &common.PersistenceError{Op: "load", Err: err}
	}

	rec := Reconciliation{Total: total, Imports: make([]ImportCheck, 0, len(manifests))}
	attached := 0
	for _, m := range manifests {
		n, err := g.store.CountRecords(ctx, service.RecordQuery{Owner: owner, ImportID: m.ID})
		if err != nil {
			return Reconciliation{}, &common.PersistenceError{Op: "load", Err: err}
		}
		attached += n
		rec.Imports = append(rec.Imports, ImportCheck{Manifest: m, Persisted: n})
	}
	rec.Orphaned = total - attached
	return rec, nil
}
