package regress

import (
	"sort"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
	"github.com/RockYYY888/bdi-planlib/bdiplan/pddl"
)

// Invariants are the always-true domain facts synthesized once per domain:
// predicate-level mutex pairs and exactly-one groups. They back the
// consistency checks that prune impossible regression states.
type Invariants struct {
	// mutex holds unordered predicate-name pairs that can never co-occur,
	// keyed low/high.
	mutex map[[2]string]bool

	// groups are the exactly-one predicate groups, each sorted.
	groups [][]string

	// singletons are predicates that occur at most once in any reachable
	// state: members of an exactly-one group that contains a nullary
	// predicate.
	singletons map[string]bool
}

// Mutex reports whether two predicate names form a synthesized mutex pair.
func (inv *Invariants) Mutex(p, q string) bool {
	if p > q {
		p, q = q, p
	}
	return inv.mutex[[2]string{p, q}]
}

// MutexPairs returns the sorted mutex pairs.
func (inv *Invariants) MutexPairs() [][2]string {
	pairs := make([][2]string, 0, len(inv.mutex))
	for pair := range inv.mutex {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// ExactlyOneGroups returns the synthesized exactly-one groups.
func (inv *Invariants) ExactlyOneGroups() [][]string {
	return inv.groups
}

// Singleton reports whether a predicate may occur at most once.
func (inv *Invariants) Singleton(p string) bool {
	return inv.singletons[p]
}

// SynthesizeInvariants derives the invariants from the domain's action
// schemas.
//
// Mutex pairs use the h² fixpoint: start from every pair mutex, then let
// every action clear any pair it can make simultaneously true — two add
// effects, an add effect alongside a positive precondition the action does
// not delete, or two such surviving preconditions. The approximation is
// sound: a pair is kept only if no action can co-achieve it at the
// predicate level.
func SynthesizeInvariants(domain *pddl.Domain) *Invariants {
	inv := &Invariants{
		mutex:      make(map[[2]string]bool),
		singletons: make(map[string]bool),
	}

	names := effectPredicates(domain)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			inv.mutex[[2]string{names[i], names[j]}] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for _, action := range domain.Actions {
			adds := predicateNames(action.Add)
			dels := nameSet(action.Del)
			survivors := survivingPreconditions(action, dels)

			// Two add effects co-occur in the successor state.
			for i := 0; i < len(adds); i++ {
				for j := i + 1; j < len(adds); j++ {
					changed = clearMutex(inv, adds[i], adds[j]) || changed
				}
			}
			// An add effect co-occurs with any precondition that survives.
			for _, add := range adds {
				for _, pre := range survivors {
					if add != pre {
						changed = clearMutex(inv, add, pre) || changed
					}
				}
			}
			// Surviving preconditions co-occur with each other.
			for i := 0; i < len(survivors); i++ {
				for j := i + 1; j < len(survivors); j++ {
					changed = clearMutex(inv, survivors[i], survivors[j]) || changed
				}
			}
		}
	}

	inv.groups = detectExactlyOneGroups(domain)
	for _, group := range inv.groups {
		if groupHasNullary(domain, group) {
			for _, p := range group {
				inv.singletons[p] = true
			}
		}
	}
	return inv
}

func clearMutex(inv *Invariants, p, q string) bool {
	if p > q {
		p, q = q, p
	}
	key := [2]string{p, q}
	if inv.mutex[key] {
		delete(inv.mutex, key)
		return true
	}
	return false
}

func preconditionsMutex(inv *Invariants, action *pddl.Action) bool {
	pres := predicateNames(action.PosPre)
	for i := 0; i < len(pres); i++ {
		for j := i + 1; j < len(pres); j++ {
			if inv.Mutex(pres[i], pres[j]) {
				return true
			}
		}
	}
	return false
}

func survivingPreconditions(action *pddl.Action, dels map[string]bool) []string {
	var out []string
	for _, name := range predicateNames(action.PosPre) {
		if !dels[name] {
			out = append(out, name)
		}
	}
	return out
}

// detectExactlyOneGroups scans for toggle actions: one add effect and one
// delete effect over different predicates marks the two as complements in a
// latent slot. Pairs sharing a predicate merge transitively into groups.
func detectExactlyOneGroups(domain *pddl.Domain) [][]string {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] == x {
			return x
		}
		parent[x] = find(parent[x])
		return parent[x]
	}
	union := func(a, b string) {
		if _, ok := parent[a]; !ok {
			parent[a] = a
		}
		if _, ok := parent[b]; !ok {
			parent[b] = b
		}
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, action := range domain.Actions {
		if len(action.Add) == 1 && len(action.Del) == 1 && action.Add[0].Name != action.Del[0].Name {
			union(action.Add[0].Name, action.Del[0].Name)
		}
	}

	members := make(map[string][]string)
	for p := range parent {
		root := find(p)
		members[root] = append(members[root], p)
	}
	var groups [][]string
	for _, group := range members {
		if len(group) >= 2 {
			sort.Strings(group)
			groups = append(groups, group)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

func groupHasNullary(domain *pddl.Domain, group []string) bool {
	arity := func(name string) (int, bool) {
		if domain.Predicates != nil {
			n, ok := domain.Predicates[name]
			return n, ok
		}
		for _, action := range domain.Actions {
			for _, atoms := range [][]bdiplan.Atom{action.Add, action.Del, action.PosPre, action.NegPre} {
				for _, a := range atoms {
					if a.Name == name {
						return len(a.Args), true
					}
				}
			}
		}
		return 0, false
	}
	for _, p := range group {
		if n, ok := arity(p); ok && n == 0 {
			return true
		}
	}
	return false
}

func effectPredicates(domain *pddl.Domain) []string {
	seen := make(map[string]bool)
	var names []string
	for _, action := range domain.Actions {
		for _, atoms := range [][]bdiplan.Atom{action.Add, action.Del} {
			for _, a := range atoms {
				if !seen[a.Name] {
					seen[a.Name] = true
					names = append(names, a.Name)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}

func predicateNames(atoms []bdiplan.Atom) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range atoms {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}
	return names
}

func nameSet(atoms []bdiplan.Atom) map[string]bool {
	set := make(map[string]bool, len(atoms))
	for _, a := range atoms {
		set[a.Name] = true
	}
	return set
}
