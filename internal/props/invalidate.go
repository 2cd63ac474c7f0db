package props

import (
	"context"

	"github.com/roach88/physprop/internal/logging"
	"github.com/roach88/physprop/internal/store"
)

// supersede removes the explicit values in names. Called with i.mu held.
func (i *Instance) supersede(cause string, names []string) {
	for _, name := range names {
		if i.store.HasExplicit(name) {
			i.store.Delete(name)
			i.logger.Debug("superseded", "cause", cause, "slot", name)
		}
	}
}

// invalidate forces every slot in names back to absent: explicit slots are
// removed, the others are assigned absent. Called with i.mu held, after the
// causing value has been stored.
func (i *Instance) invalidate(cause string, names []string) {
	ctx := context.Background()
	for _, name := range names {
		if i.store.HasExplicit(name) {
			i.store.Delete(name)
			i.logger.Log(ctx, logging.LevelTrace, "slot removed", "cause", cause, "slot", name)
		} else {
			i.store.Set(name, store.Absent)
			i.logger.Log(ctx, logging.LevelTrace, "slot forced absent", "cause", cause, "slot", name)
		}
	}
	if len(names) > 0 {
		i.logger.Debug("invalidated", "cause", cause, "slots", names)
	}
}
