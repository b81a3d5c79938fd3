package repokit

// Binder builds a repo on top of a Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// MustBind binds q and panics when q is nil
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: bind on nil Queryer")
	}
	return b.Bind(q)
}
