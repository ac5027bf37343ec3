package geometry

import "git.home.luguber.info/inful/pagecrop/internal/util/sets"

// Resolver maps page numbers to crop geometry.
type Resolver struct {
	rect   *Rect
	exempt sets.Set[int]
}

// NewResolver builds a resolver. A nil rect disables cropping for every page.
func NewResolver(rect *Rect, noCrop []int) *Resolver {
	return &Resolver{rect: rect, exempt: sets.New(noCrop...)}
}

// Exempt reports whether page is in the no-transform set.
func (r *Resolver) Exempt(page int) bool {
	return r.exempt.Has(page)
}

// Resolve returns the crop geometry for page, or false when the page is
// extracted at full size.
func (r *Resolver) Resolve(page int) (Geometry, bool) {
	if r.rect == nil || r.Exempt(page) {
		return Geometry{}, false
	}
	w, h := r.rect.Size()
	return Geometry{
		Width:   w,
		Height:  h,
		OffsetX: -r.rect.Left,
		OffsetY: r.rect.Top,
	}, true
}
