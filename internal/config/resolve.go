package config

// Diagnostics reports advisory findings from a resolve pass. NewKeys lists
// non-hidden default keys missing from the persisted file ("new, using
// default"); DeprecatedKeys lists persisted keys no longer understood. Both
// are surfaced through logging only, never fatal.
type Diagnostics struct {
	NewKeys        []string
	DeprecatedKeys []string
}

// Resolve merges the three configuration layers into the effective snapshot.
// Merge order is strict: override wins over persisted, persisted wins over
// defaults. Each overlay is applied key-by-key; a value rejected by the
// underlying property's validator is reported through onError and the prior
// layer's value is kept for that key only. Keys unknown to the layer below
// pass through unvalidated.
func Resolve(defaults, persisted, override Snapshot, onError func(key string, err error)) (Snapshot, Diagnostics) {
	if onError == nil {
		onError = func(string, error) {}
	}

	merged := make(map[string]Property, defaults.Len())
	for _, prop := range defaults.Properties() {
		merged[prop.Key] = prop
	}
	overlay(merged, persisted, onError)
	overlay(merged, override, onError)

	props := make([]Property, 0, len(merged))
	for _, prop := range merged {
		props = append(props, prop)
	}
	return NewSnapshot(props...), diagnose(defaults, persisted)
}

func overlay(merged map[string]Property, layer Snapshot, onError func(key string, err error)) {
	for _, incoming := range layer.Properties() {
		base, known := merged[incoming.Key]
		if !known {
			merged[incoming.Key] = incoming
			continue
		}
		value := incoming.Value
		if base.Validate != nil {
			normalized, err := base.Validate(value)
			if err != nil {
				onError(incoming.Key, err)
				continue
			}
			value = normalized
		}
		base.Value = value
		merged[base.Key] = base
	}
}

func diagnose(defaults, persisted Snapshot) Diagnostics {
	var diag Diagnostics
	for _, prop := range defaults.Properties() {
		if prop.Hidden {
			continue
		}
		if !persisted.Has(prop.Key) {
			diag.NewKeys = append(diag.NewKeys, prop.Key)
		}
	}
	for _, key := range persisted.Keys() {
		if !defaults.Has(key) {
			diag.DeprecatedKeys = append(diag.DeprecatedKeys, key)
		}
	}
	return diag
}
