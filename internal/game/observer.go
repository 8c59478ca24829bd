package game

// CellObserver receives a snapshot of one cell each time it changes.
type CellObserver func(CellState)

// InfoObserver receives the board-level aggregate each time it changes.
type InfoObserver func(Info)

// registry fans engine notifications out to renderers. It has no logic of
// its own: a missing observer makes a notification a no-op.
type registry struct {
	cells    []CellObserver
	info     InfoObserver
	lastInfo Info
	sentInfo bool
}

func newRegistry(size int) *registry {
	return &registry{cells: make([]CellObserver, size)}
}

func (r *registry) notifyCell(i int, s CellState) {
	if fn := r.cells[i]; fn != nil {
		fn(s)
	}
}

// notifyInfo delivers info unless it equals the last delivered snapshot.
// force delivers regardless.
func (r *registry) notifyInfo(info Info, force bool) {
	if r.info == nil {
		return
	}
	if !force && r.sentInfo && r.lastInfo == info {
		return
	}
	r.lastInfo = info
	r.sentInfo = true
	r.info(info)
}

// each calls fn for every registered cell index in row-major order.
func (r *registry) each(fn func(int)) {
	for i, obs := range r.cells {
		if obs != nil {
			fn(i)
		}
	}
}
