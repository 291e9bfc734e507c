package geminstall

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a gem-grammar version: dot-separated segments that are either
// numeric ("1", "42") or alphabetic ("a", "beta"). Alphabetic segments mark
// prerelease versions and sort before any numeric segment.
//
// This is not semver. Gem versions routinely carry four or more segments
// ("0.9.4.1") and use bare alphabetic prerelease markers ("1.0.a"), neither
// of which semver tooling accepts.
type Version struct {
	raw string
}

type versionSegment struct {
	num   int
	str   string
	alpha bool
}

// ParseVersion parses a version string. Leading and trailing whitespace is
// ignored. The empty string parses as "0".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "0"
	}

	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return Version{}, fmt.Errorf("malformed version %q", s)
		}
		for _, r := range part {
			valid := r == '-' ||
				(r >= '0' && r <= '9') ||
				(r >= 'a' && r <= 'z') ||
				(r >= 'A' && r <= 'Z')
			if !valid {
				return Version{}, fmt.Errorf("malformed version %q", s)
			}
		}
	}

	return Version{raw: s}, nil
}

// MustParseVersion is ParseVersion for statically known inputs.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.raw == "" {
		return "0"
	}
	return v.raw
}

func (v Version) segments() []versionSegment {
	parts := strings.Split(v.String(), ".")
	segs := make([]versionSegment, 0, len(parts))

	for _, part := range parts {
		if n, err := strconv.Atoi(part); err == nil {
			segs = append(segs, versionSegment{num: n})
		} else {
			segs = append(segs, versionSegment{str: part, alpha: true})
		}
	}

	return segs
}

// Prerelease reports whether any segment is alphabetic.
func (v Version) Prerelease() bool {
	for _, seg := range v.segments() {
		if seg.alpha {
			return true
		}
	}
	return false
}

// Compare returns -1, 0, or 1 depending on whether v sorts before, equal to,
// or after other. Missing trailing segments count as zero, so "1.2" == "1.2.0".
func (v Version) Compare(other Version) int {
	a, b := v.segments(), other.segments()

	limit := len(a)
	if len(b) > limit {
		limit = len(b)
	}

	for i := 0; i < limit; i++ {
		sa, sb := versionSegment{}, versionSegment{}
		if i < len(a) {
			sa = a[i]
		}
		if i < len(b) {
			sb = b[i]
		}

		switch {
		case sa.alpha && sb.alpha:
			if c := strings.Compare(sa.str, sb.str); c != 0 {
				return c
			}
		case sa.alpha:
			return -1
		case sb.alpha:
			return 1
		default:
			if sa.num != sb.num {
				if sa.num < sb.num {
					return -1
				}
				return 1
			}
		}
	}

	return 0
}

// Bump returns the smallest version excluded by a pessimistic constraint on v:
// the last segment is dropped and the new last segment incremented, so
// "1.2.3" bumps to "1.3" and "1.2" bumps to "2".
func (v Version) Bump() Version {
	segs := v.segments()
	if len(segs) > 1 {
		segs = segs[:len(segs)-1]
	}

	parts := make([]string, len(segs))
	for i, seg := range segs {
		if seg.alpha {
			parts[i] = seg.str
		} else {
			parts[i] = strconv.Itoa(seg.num)
		}
	}

	last := len(segs) - 1
	if segs[last].alpha {
		parts[last] = "1"
	} else {
		parts[last] = strconv.Itoa(segs[last].num + 1)
	}

	return Version{raw: strings.Join(parts, ".")}
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Requirement is a single version constraint: an operator and a reference
// version. Supported operators are =, !=, >, <, >=, <= and the pessimistic
// ~> ("compatible with"). A bare version means =.
type Requirement struct {
	op      string
	version Version
}

var requirementOps = map[string]struct{}{
	"=": {}, "!=": {}, ">": {}, "<": {}, ">=": {}, "<=": {}, "~>": {},
}

// DefaultRequirement matches every released version: "> 0".
func DefaultRequirement() Requirement {
	return Requirement{op: ">", version: Version{raw: "0"}}
}

// ParseRequirement parses constraint strings such as "> 0", ">= 1.2.3",
// "~> 2.1" or "1.4" (shorthand for "= 1.4").
func ParseRequirement(s string) (Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultRequirement(), nil
	}

	op := "="
	rest := s

	for candidate := range requirementOps {
		if strings.HasPrefix(s, candidate) && len(candidate) == 2 {
			op = candidate
			rest = s[len(candidate):]
			break
		}
	}
	if rest == s {
		for candidate := range requirementOps {
			if strings.HasPrefix(s, candidate) && len(candidate) == 1 {
				op = candidate
				rest = s[len(candidate):]
				break
			}
		}
	}

	version, err := ParseVersion(rest)
	if err != nil {
		return Requirement{}, fmt.Errorf("malformed requirement %q: %w", s, err)
	}

	return Requirement{op: op, version: version}, nil
}

// MustParseRequirement is ParseRequirement for statically known inputs.
func MustParseRequirement(s string) Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Requirement) String() string {
	if r.op == "" {
		return DefaultRequirement().String()
	}
	return r.op + " " + r.version.String()
}

// Satisfies reports whether v meets the constraint.
func (r Requirement) Satisfies(v Version) bool {
	if r.op == "" {
		r = DefaultRequirement()
	}

	cmp := v.Compare(r.version)

	switch r.op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case "~>":
		return cmp >= 0 && v.Compare(r.version.Bump()) < 0
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Requirement) UnmarshalText(text []byte) error {
	parsed, err := ParseRequirement(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
