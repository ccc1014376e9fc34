package vstr

// Finalize binds the descriptor to a concrete column and settles arena
// ownership. It is meant to run once per descriptor.
//
//   - Independent: becomes Owned; the same descriptor is returned.
//   - View: a new Owned descriptor with the same NA configuration and
//     coercion policy and a freshly allocated arena is returned. The view
//     and its arena are untouched.
//   - Owned: no-op, the same descriptor is returned.
func (d *Descriptor) Finalize() (*Descriptor, error) {
	if err := d.checkOpen("finalize"); err != nil {
		return nil, err
	}

	d.mu.Lock()
	from := d.ownership
	switch from {
	case Independent:
		d.ownership = Owned
		d.mu.Unlock()
	case View:
		d.mu.Unlock()
		nd, err := d.detach()
		d.logger.LogFinalize(from, true, err)
		if err != nil {
			return nil, opError("finalize", -1, err)
		}
		d.metrics.RecordFinalize(true)
		return nd, nil
	default:
		d.mu.Unlock()
	}

	d.logger.LogFinalize(from, false, nil)
	d.metrics.RecordFinalize(false)
	return d, nil
}

// detach builds an Owned copy of d's configuration on a new arena.
func (d *Descriptor) detach() (*Descriptor, error) {
	o := d.opts
	o.arena = nil
	nd, err := newDescriptor(o)
	if err != nil {
		return nil, err
	}
	nd.ownership = Owned
	return nd, nil
}

// Close destroys the descriptor. Owned and Independent descriptors destroy
// their arena; a View leaves it alone. Closing twice returns ErrClosed.
func (d *Descriptor) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return opError("close", -1, ErrClosed)
	}

	d.mu.Lock()
	owns := d.ownership != View
	d.mu.Unlock()

	var err error
	if owns {
		err = d.arena.Close()
	}
	d.logger.LogClose(owns, err)
	return opError("close", -1, err)
}
