package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/genesisproject/genesis/pkg/kit"
)

// Credential value grammars, per the documented forms:
//
//	random <N>[ fmt <name>[ at <dest>]][ allowed-chars <class>][ fixed]
//	ssh <bits>[ fixed]
//	rsa <bits>[ fixed]
//	dhparam[s] <bits>[ fixed]
var (
	randomPattern = regexp.MustCompile(
		`^random\s+(\d+)(?:\s+fmt\s+(\S+)(?:\s+at\s+(\S+))?)?(?:\s+allowed-chars\s+(\S+))?(?:\s+(fixed))?$`,
	)
	sshPattern      = regexp.MustCompile(`^ssh\s+(\d+)(?:\s+(fixed))?$`)
	rsaPattern      = regexp.MustCompile(`^rsa\s+(\d+)(?:\s+(fixed))?$`)
	dhparamsPattern = regexp.MustCompile(`^dhparams?\s+(\d+)(?:\s+(fixed))?$`)
)

// Options configures the Secret Plan Parser.
type Options struct {
	RootCAPath string
	Validate   bool
	Filter     *Filter
}

// Parse converts a kit metadata tree plus the enabled feature list into an
// ordered sequence of Plans: x509 plans first in dependency order (4.4),
// then all other types in sorted path order.
func Parse(meta kit.Metadata, features []string, opts Options) []Plan {
	entries := kit.Flatten(meta, features)

	byPath := make(map[string]Plan)

	var order []string

	for _, e := range entries {
		p := parseEntry(e)

		if opts.Filter != nil && !opts.Filter.Match(p.Path) {
			continue
		}

		if existing, dup := byPath[p.Path]; dup && existing.Kind != KindError {
			continue
		}

		if _, seen := byPath[p.Path]; !seen {
			order = append(order, p.Path)
		}

		byPath[p.Path] = p
	}

	x509Plans := make([]Plan, 0, len(order))
	others := make([]Plan, 0, len(order))

	for _, path := range order {
		p := byPath[path]
		if p.Kind == KindX509 {
			x509Plans = append(x509Plans, p)
		} else {
			others = append(others, p)
		}
	}

	ordered := Order(x509Plans, opts.RootCAPath)

	sortByPath(others)

	return append(ordered, others...)
}

func sortByPath(plans []Plan) {
	for i := 1; i < len(plans); i++ {
		for j := i; j > 0 && plans[j].Path < plans[j-1].Path; j-- {
			plans[j], plans[j-1] = plans[j-1], plans[j]
		}
	}
}

func parseEntry(e kit.Entry) Plan {
	if e.Group == "certificates" {
		return parseCertificate(e)
	}

	return parseCredential(e)
}

func parseCertificate(e kit.Entry) Plan {
	if strings.Contains(e.Path, ":") {
		return Plan{Kind: KindError, Path: e.Path, Error: "certificate path must not contain ':'"}
	}

	fields, ok := e.Value.(map[string]any)
	if !ok {
		return Plan{Kind: KindError, Path: e.Path, Error: "certificate entry must be a mapping"}
	}

	basePath := basePathOf(e.Path)

	names := stringList(fields["names"])
	if len(names) == 0 {
		if name, ok := fields["name"].(string); ok {
			names = []string{name}
		}
	}

	p := Plan{
		Kind:     KindX509,
		Path:     e.Path,
		BasePath: basePath,
		IsCA:     boolField(fields["is_ca"]) || strings.HasSuffix(e.Path, "/ca"),
		Names:    names,
		Usage:    stringList(fields["usage"]),
		ValidFor: stringField(fields["valid_for"]),
	}

	if signedBy, ok := fields["signed_by"].(string); ok {
		p.SignedBy = signedBy
	}

	return p
}

func basePathOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}

	return path[:idx]
}

func boolField(v any) bool {
	b, _ := v.(bool)

	return b
}

func stringField(v any) string {
	s, _ := v.(string)

	return s
}

func stringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func parseCredential(e kit.Entry) Plan {
	path := e.Path
	key := ""

	if idx := strings.Index(path, ":"); idx >= 0 {
		key = path[idx+1:]
		path = path[:idx]

		if strings.Contains(path, ":") {
			return Plan{Kind: KindError, Path: e.Path, Error: "credential path may contain at most one ':'"}
		}
	}

	value, ok := e.Value.(string)
	if !ok {
		return Plan{Kind: KindError, Path: e.Path, Error: "credential entry must be a string"}
	}

	switch {
	case randomPattern.MatchString(value):
		if key == "" {
			return Plan{Kind: KindError, Path: e.Path, Error: "random credential requires a path:key form"}
		}

		m := randomPattern.FindStringSubmatch(value)
		size, _ := strconv.Atoi(m[1])

		return Plan{
			Kind:        KindRandom,
			Path:        path,
			Key:         key,
			Size:        size,
			Format:      m[2],
			Destination: m[3],
			ValidChars:  m[4],
			Fixed:       m[5] == "fixed",
		}
	case key != "":
		return Plan{Kind: KindError, Path: e.Path, Error: "only random credentials may use the path:key form"}
	case sshPattern.MatchString(value):
		m := sshPattern.FindStringSubmatch(value)
		size, _ := strconv.Atoi(m[1])

		return Plan{Kind: KindSSH, Path: path, Size: size, Fixed: m[2] == "fixed"}
	case rsaPattern.MatchString(value):
		m := rsaPattern.FindStringSubmatch(value)
		size, _ := strconv.Atoi(m[1])

		return Plan{Kind: KindRSA, Path: path, Size: size, Fixed: m[2] == "fixed"}
	case dhparamsPattern.MatchString(value):
		m := dhparamsPattern.FindStringSubmatch(value)
		size, _ := strconv.Atoi(m[1])

		return Plan{Kind: KindDHParams, Path: path, Size: size, Fixed: m[2] == "fixed"}
	default:
		return Plan{Kind: KindError, Path: e.Path, Error: fmt.Sprintf("unrecognized credential form: %q", value)}
	}
}
