package bridge

// configuratorField is the back-reference a configuration payload carries to
// its owning context. It cannot cross the channel and is stripped before
// sending; no other payload validation happens here.
const configuratorField = "configurator"

// sanitizeConfiguration returns a shallow copy of cfg without the
// configurator back-reference. A nil map stays nil.
func sanitizeConfiguration(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		if k == configuratorField {
			continue
		}
		out[k] = v
	}
	return out
}
