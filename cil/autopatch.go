package cil

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// patchMissingMethod builds a stub standing in for site: a private static
// method with site's name and signature whose body unconditionally throws,
// naming the call that was never resolved. Grounded on
// original_source/src/bin/linker.rs::patch_missing_method.
func patchMissingMethod(site CallSite) *Method {
	m := NewMethod(Private, true, site.Sig, site.Name, nil)
	ops := ThrowMsg(fmt.Sprintf("Tried to invoke missing method %s", site.Name))
	m.Ops = ops[:]
	return m
}

// Autopatch synthesizes a throwing stub for every distinct unresolved
// external call site in asm: a static call with no declaring type, naming
// a function asm does not itself define. Each distinct (name, signature)
// is patched once even if called many times. Grounded on
// original_source/src/bin/linker.rs::autopatch (SPEC_FULL.md §5; spec.md
// §4.7, S4).
func Autopatch(asm *Assembly) {
	for _, site := range UnresolvedExternals(asm) {
		asm.AddMethod(patchMissingMethod(site))
	}
}

// UnresolvedExternals returns the distinct (name, signature) call sites in
// asm that reference a function asm does not itself define, the set
// Autopatch would otherwise silently paper over. A linker run with
// abort-on-error semantics checks this instead of calling Autopatch, so a
// missing external fails the link immediately rather than becoming a
// throwing stub (spec.md §7 category 6, recoverable-by-default but opt-out
// via CILGEN_ABORT_ON_ERROR/cilgen.yaml's abort_on_error).
func UnresolvedExternals(asm *Assembly) []CallSite {
	patched := make(map[string]CallSite)
	for _, site := range asm.CallSites() {
		if !site.IsUnresolvedExternal() {
			continue
		}
		if _, ok := asm.LookupMethod(site.Name); ok {
			continue
		}
		key := site.Key()
		if _, seen := patched[key]; seen {
			continue
		}
		patched[key] = site
	}
	keys := make([]string, 0, len(patched))
	for k := range patched {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]CallSite, len(keys))
	for i, k := range keys {
		out[i] = patched[k]
	}
	return out
}
