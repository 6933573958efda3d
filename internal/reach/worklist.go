package reach

// Roots collects the entry points that seed a reachability pass: the
// entry-point method (if any), every type/method carrying an attribute
// the analysis treats as an implicit root (serialization contracts,
// P/Invoke entry points, explicit keep-alive markers), and every static
// constructor (cctors run as a side effect of first type-use, not a
// direct call, so they can't be discovered by edge-walking alone).
type Roots struct {
	EntryPoint  string
	AlwaysKeep  []string
	StaticCtors []string
}

// Collect flattens a Roots value into the []Member slice Analyze wants.
func (r Roots) Collect() []Member {
	members := make([]Member, 0, 1+len(r.AlwaysKeep)+len(r.StaticCtors))
	if r.EntryPoint != "" {
		members = append(members, Member{Kind: KindMethod, Name: r.EntryPoint})
	}
	for _, name := range r.AlwaysKeep {
		members = append(members, Member{Kind: KindMethod, Name: name})
	}
	for _, name := range r.StaticCtors {
		members = append(members, Member{Kind: KindMethod, Name: name})
	}
	return members
}

// ResolveVirtualCalls runs a second fixed-point pass over res: for every
// virtual or interface call site the caller passes in virtualCallSites
// (kept apart from ordinary edges because resolving one requires the
// callee's declaring type to already be known reachable),
// it asks src for the override set on reachable descendants and folds
// any newly-discovered overrides back into a fresh Analyze pass rooted
// at the now-larger reachable set. Iterates until a pass adds nothing,
// since newly added overrides can themselves introduce further virtual
// call-sites.
func ResolveVirtualCalls(src EdgeSource, res Result, virtualCallSites []VirtualCallSite) Result {
	for {
		before := len(res.ReachableMethods)

		for _, site := range virtualCallSites {
			if !res.ReachableTypes[site.DeclaringType] && !res.ReachableMethods[site.DeclaringType] {
				continue
			}
			AddVirtualOverrides(src, &res, site.DeclaringType, site.SlotName)
		}

		if len(res.ReachableMethods) == before {
			return res
		}

		roots := make([]Member, 0, len(res.ReachableMethods)+len(res.ReachableTypes))
		for m := range res.ReachableMethods {
			roots = append(roots, Member{Kind: KindMethod, Name: m})
		}
		for t := range res.ReachableTypes {
			roots = append(roots, Member{Kind: KindType, Name: t})
		}
		next := Analyze(src, roots)
		for m := range next.ReachableMethods {
			res.ReachableMethods[m] = true
		}
		for t := range next.ReachableTypes {
			res.ReachableTypes[t] = true
		}
		res.Instantiations = mergeInstantiations(res.Instantiations, next.Instantiations)
	}
}

// VirtualCallSite names one virtual or interface dispatch the edge walk
// encountered, deferred until its declaring type's reachability — and
// therefore its descendant set — is known.
type VirtualCallSite struct {
	DeclaringType string
	SlotName      string
}

func mergeInstantiations(a, b []GenericInstantiation) []GenericInstantiation {
	seen := make(map[string]bool, len(a))
	key := func(inst GenericInstantiation) string {
		k := inst.OpenDefinitionName
		for _, arg := range inst.TypeArgNames {
			k += "|" + arg
		}
		return k
	}
	for _, inst := range a {
		seen[key(inst)] = true
	}
	out := a
	for _, inst := range b {
		k := key(inst)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, inst)
	}
	return out
}
