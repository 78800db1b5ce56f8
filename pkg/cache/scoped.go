package cache

// ScopedKeyer prefixes every key produced by an inner Keyer. The server uses
// it to keep API-generated entries apart from other tenants of a shared Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "heatmap:api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// Prefix returns the scope prefix.
func (k *ScopedKeyer) Prefix() string { return k.prefix }
