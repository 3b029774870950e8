package turn

// Supersede overwrites the pending request identity, simulating a newer
// turn having been issued while an older one is still draining.
func (r *Runner) Supersede(id string) {
	r.pending.Store(id)
}
