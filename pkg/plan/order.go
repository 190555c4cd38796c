package plan

import "strings"

// Order implements the Plan Orderer (4.4): classifies CAs, assigns signers
// to unsigned plans within each base_path group, and emits the result in
// signer-before-signed order via a reverse index over signed_by.
func Order(plans []Plan, rootCAPath string) []Plan {
	assigned := assignSigners(plans, rootCAPath)

	return emitInSignerOrder(assigned)
}

func assignSigners(plans []Plan, rootCAPath string) []Plan {
	groups := make(map[string][]int)

	for i, p := range plans {
		groups[p.BasePath] = append(groups[p.BasePath], i)
	}

	out := append([]Plan(nil), plans...)

	for basePath, idxs := range groups {
		var cas []int

		for _, i := range idxs {
			if out[i].IsCA {
				cas = append(cas, i)
			}
		}

		var signer string

		var ambiguous bool

		switch {
		case len(cas) == 1:
			signer = out[cas[0]].Path
		case len(cas) > 1:
			canonical := basePath + "/ca"
			found := ""

			for _, i := range cas {
				if out[i].Path == canonical {
					found = canonical

					break
				}
			}

			if found != "" {
				signer = found
			} else {
				ambiguous = true
			}
		}

		for _, i := range idxs {
			p := out[i]
			if p.IsCA || p.SignedBy != "" {
				continue
			}

			switch {
			case ambiguous:
				out[i] = p.AsError("Ambiguous or missing signing CA")
			case signer != "":
				p.SignedBy = signer
				out[i] = p
			}
		}
	}

	for i, p := range out {
		if p.Kind == KindError || p.SignedBy != "" {
			continue
		}

		if rootCAPath != "" {
			p.SignedBy = rootCAPath
			p.SignedByAbsPath = true
		} else {
			p.SelfSigned = SelfSignedImplicit
		}

		out[i] = p
	}

	return out
}

func emitInSignerOrder(plans []Plan) []Plan {
	byPath := make(map[string]int, len(plans))
	for i, p := range plans {
		byPath[p.Path] = i
	}

	signerIndex := make(map[string][]string)

	roots := make([]string, 0, len(plans))

	for _, p := range plans {
		if p.Kind == KindError {
			continue
		}

		switch {
		case p.SignedBy == "":
			roots = append(roots, p.Path)
		case p.SignedByAbsPath:
			roots = append(roots, p.Path)
		case p.SignedBy == p.Path:
			p.SelfSigned = SelfSignedExplicit
			p.IsCA = true
			plans[byPath[p.Path]] = p
			roots = append(roots, p.Path)
		default:
			signerIndex[p.SignedBy] = append(signerIndex[p.SignedBy], p.Path)
		}
	}

	cyclic := detectSignerCycles(plans, signerIndex)

	var (
		result  []Plan
		visited = make(map[string]bool, len(plans))
	)

	var visit func(path string)

	visit = func(path string) {
		if visited[path] {
			return
		}

		visited[path] = true

		idx, ok := byPath[path]
		if !ok {
			return
		}

		if cyclic[path] {
			result = append(result, plans[idx].AsError("Cyclical CA signage detected"))

			return
		}

		result = append(result, plans[idx])

		for _, child := range signerIndex[path] {
			visit(child)
		}
	}

	sortStrings(roots)

	for _, r := range roots {
		visit(r)
	}

	// Plans not reachable from a real root either sit on a closed signing
	// cycle or have no signer in the set. The cyclic ones are emitted here
	// as their cyclic-error variant; the rest stay unvisited and are emitted
	// below as their orphan-error variant.
	remaining := make([]string, 0, len(plans))

	for _, p := range plans {
		if p.Kind != KindError && !visited[p.Path] {
			remaining = append(remaining, p.Path)
		}
	}

	sortStrings(remaining)

	for _, r := range remaining {
		if cyclic[r] {
			visit(r)
		}
	}

	for _, p := range plans {
		if p.Kind == KindError {
			result = append(result, p)
			continue
		}

		if !visited[p.Path] {
			result = append(result, p.AsError("Could not find associated signing CA"))
		}
	}

	return result
}

// detectSignerCycles walks the signer graph (signer path -> paths it signs)
// with standard white/gray/black DFS coloring, so every plan on a closed
// signing cycle is identified up front and can be converted to a single
// error record instead of being emitted once as valid and once as an error.
func detectSignerCycles(plans []Plan, signerIndex map[string][]string) map[string]bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	cyclic := make(map[string]bool)
	state := make(map[string]int, len(plans))

	var stack []string

	var visit func(path string)

	visit = func(path string) {
		switch state[path] {
		case black:
			return
		case gray:
			for i := len(stack) - 1; i >= 0; i-- {
				cyclic[stack[i]] = true

				if stack[i] == path {
					break
				}
			}

			return
		}

		state[path] = gray
		stack = append(stack, path)

		for _, child := range signerIndex[path] {
			visit(child)
		}

		stack = stack[:len(stack)-1]
		state[path] = black
	}

	all := make([]string, 0, len(plans))

	for _, p := range plans {
		if p.Kind != KindError {
			all = append(all, p.Path)
		}
	}

	sortStrings(all)

	for _, p := range all {
		visit(p)
	}

	return cyclic
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && strings.Compare(s[j], s[j-1]) < 0; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
