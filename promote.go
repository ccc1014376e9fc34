package vstr

// DescriptorsEqual reports whether d1 and d2 are interchangeable: same
// coercion policy and sentinels equal under NAEqual. Arena and ownership do
// not matter.
func DescriptorsEqual(d1, d2 *Descriptor) bool {
	if d1 == d2 {
		return true
	}
	if d1 == nil || d2 == nil {
		return false
	}
	if d1.coerce != d2.coerce {
		return false
	}
	if d1.na.HasNull != d2.na.HasNull {
		return false
	}
	return !d1.na.HasNull || NAEqual(d1.na.Sentinel, d2.na.Sentinel)
}

// Equal reports whether other is interchangeable with d.
func (d *Descriptor) Equal(other *Descriptor) bool {
	return DescriptorsEqual(d, other)
}

// CommonInstance returns a new Owned descriptor, with its own arena, that can
// hold the values of both d1 and d2. It fails with
// ErrIncompatibleDescriptors unless the two are equal.
func CommonInstance(d1, d2 *Descriptor) (*Descriptor, error) {
	if !DescriptorsEqual(d1, d2) {
		return nil, opError("common instance", -1, ErrIncompatibleDescriptors)
	}
	nd, err := d1.detach()
	if err != nil {
		return nil, opError("common instance", -1, err)
	}
	return nd, nil
}

// promotions lists the kinds a string column absorbs. Everything else
// declines, leaving the caller to try the reverse direction.
var promotions = map[Kind]Kind{
	KindUnicode: KindString,
	KindString:  KindString,
}

// CommonKind returns the kind resulting from combining a string column with
// a column of kind other. ok is false when no promotion is defined.
func CommonKind(other Kind) (Kind, bool) {
	k, ok := promotions[other]
	return k, ok
}
