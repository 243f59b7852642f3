package systems

// PhaseInfo describes a pipeline phase for UI display.
type PhaseInfo struct {
	ID          string // Phase name (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Category    string // Grouping (e.g., "index", "physics")
}

// PhaseRegistry holds metadata about all phases.
// This centralizes phase naming so the HUD and perf tracker stay in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with all known phases in execution order.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known phases to the registry.
// Update this when adding new phases.
func (r *PhaseRegistry) registerDefaults() {
	r.Register(PhaseInfo{ID: PhaseReindex, Name: "Reindex", Description: "Rebuilds the spatial index on its cadence", Category: "index"})
	r.Register(PhaseInfo{ID: PhaseClassify, Name: "Classify", Description: "Fills neighbor, reduced and enlarged sets", Category: "index"})

	r.Register(PhaseInfo{ID: PhaseForces, Name: "Forces", Description: "Separation, cohesion, alignment, relaxation, spring", Category: "physics"})
	r.Register(PhaseInfo{ID: PhaseVelocity, Name: "Velocity", Description: "Integrates forces into velocities", Category: "physics"})
	r.Register(PhaseInfo{ID: PhasePosition, Name: "Position", Description: "Integrates velocities into positions", Category: "physics"})
	r.Register(PhaseInfo{ID: PhaseHeading, Name: "Heading", Description: "Turns headings towards velocities", Category: "physics"})
}

// Register adds a phase to the registry.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	r.phases = append(r.phases, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// ByCategory returns phases filtered by category.
func (r *PhaseRegistry) ByCategory(category string) []PhaseInfo {
	var result []PhaseInfo
	for _, info := range r.phases {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *PhaseRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.phases {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all phase IDs in registration order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}
