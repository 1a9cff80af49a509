package navigation

// Restricted action names.
const (
	ActionStats     = "stats"
	ActionBroadcast = "broadcast"
)

// Guard is a fixed allow-list of identities gating a fixed set of
// restricted actions. Every other action is authorized for everyone.
type Guard struct {
	admins     map[int64]struct{}
	restricted map[string]struct{}
}

// NewGuard builds a guard for the given admin identities. With no explicit
// restricted actions, stats and broadcast are restricted.
func NewGuard(admins []int64, restricted ...string) *Guard {
	if len(restricted) == 0 {
		restricted = []string{ActionStats, ActionBroadcast}
	}
	g := &Guard{
		admins:     make(map[int64]struct{}, len(admins)),
		restricted: make(map[string]struct{}, len(restricted)),
	}
	for _, id := range admins {
		g.admins[id] = struct{}{}
	}
	for _, a := range restricted {
		g.restricted[a] = struct{}{}
	}
	return g
}

// Restricted reports whether action requires an allow-listed identity.
func (g *Guard) Restricted(action string) bool {
	_, ok := g.restricted[action]
	return ok
}

// IsAuthorized reports whether identity may invoke action.
func (g *Guard) IsAuthorized(identity int64, action string) bool {
	if g == nil {
		return action != ActionStats && action != ActionBroadcast
	}
	if !g.Restricted(action) {
		return true
	}
	_, ok := g.admins[identity]
	return ok
}
