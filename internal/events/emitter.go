package events

// Emitter stamps events with the picker ID and drops no-op notifications
// before handing them to the underlying Notifier:
//
//   - a Change whose Date and OldDate are the same instant
//   - a Change, Error or Hide that carries neither Date nor OldDate
//
// Update and Show carry no dates and are always delivered.
type Emitter struct {
	ID string
	N  Notifier
	// Suppressed, if set, is called for every dropped event.
	Suppressed func(Event)
}

// Emit delivers e unless it is a no-op. It reports whether e was delivered.
func (em *Emitter) Emit(e Event) bool {
	e.Picker = em.ID
	if suppressed(e) {
		if em.Suppressed != nil {
			em.Suppressed(e)
		}
		return false
	}
	if em.N != nil {
		em.N.Notify(e)
	}
	return true
}

func suppressed(e Event) bool {
	switch e.Kind {
	case Update, Show:
		return false
	}
	if e.Date == nil && e.OldDate == nil {
		return true
	}
	return e.Kind == Change && e.Date != nil && e.OldDate != nil && e.Date.Equal(*e.OldDate)
}

// Notify makes an Emitter usable wherever a Notifier is expected.
func (em *Emitter) Notify(e Event) { em.Emit(e) }
