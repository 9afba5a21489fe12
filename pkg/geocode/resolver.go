package geocode

import (
	"context"

	"github.com/dixieflatline76/PanCrop/util"
)

// Resolver runs lookups in the background and keeps only the newest answer.
type Resolver struct {
	lookup AddressResolver
	slot   util.Latest[string]
}

// NewResolver wraps r.
func NewResolver(r AddressResolver) *Resolver {
	return &Resolver{lookup: r}
}

// Request starts a lookup and returns immediately. onDone runs on the lookup
// goroutine, and only if no newer Request or Reset happened meanwhile. It
// receives the request's generation; callers that hand the answer on to
// another goroutine re-check it there with Current.
func (r *Resolver) Request(ctx context.Context, lat, lon float64, onDone func(gen uint64, addr string, ok bool)) {
	gen := r.slot.Begin()
	go func() {
		addr, ok := r.lookup.ResolveAddress(ctx, lat, lon)
		if !r.slot.Publish(gen, addr) {
			return
		}
		if onDone != nil {
			onDone(gen, addr, ok)
		}
	}()
}

// Current reports whether gen belongs to the newest Request with no Reset
// since.
func (r *Resolver) Current(gen uint64) bool {
	return r.slot.Current(gen)
}

// Address returns the newest resolved address, if any.
func (r *Resolver) Address() (string, bool) {
	addr, ok := r.slot.Get()
	return addr, ok && addr != ""
}

// Reset drops the stored address and any lookup in flight.
func (r *Resolver) Reset() {
	r.slot.Reset()
}
