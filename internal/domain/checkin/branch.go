package checkin

import (
	"fmt"
	"strings"
)

type BranchMapper struct {
	patterns []BranchPattern
}

func NewBranchMapper(patterns []BranchPattern) *BranchMapper {
	if len(patterns) == 0 {
		patterns = DefaultBranchPatterns
	}
	normalized := make([]BranchPattern, 0, len(patterns))
	for _, p := range patterns {
		subs := make([]string, 0, len(p.Substrings))
		for _, s := range p.Substrings {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				subs = append(subs, s)
			}
		}
		normalized = append(normalized, BranchPattern{Branch: p.Branch, Substrings: subs})
	}
	return &BranchMapper{patterns: normalized}
}

// Resolve maps a terminal identifier to its branch, case-insensitively.
func (m *BranchMapper) Resolve(deviceID string) string {
	id := strings.ToLower(deviceID)
	for _, p := range m.patterns {
		for _, s := range p.Substrings {
			if strings.Contains(id, s) {
				return p.Branch
			}
		}
	}
	return UnknownBranch
}

// Branches lists configured branch names in match order.
func (m *BranchMapper) Branches() []string {
	names := make([]string, 0, len(m.patterns))
	for _, p := range m.patterns {
		names = append(names, p.Branch)
	}
	return names
}

// LikePatterns returns SQL LIKE patterns selecting the branch's terminals.
// A nil slice with ok=true means no filtering.
func (m *BranchMapper) LikePatterns(branch string) ([]string, bool) {
	if IsAllBranches(branch) {
		return nil, true
	}
	for _, p := range m.patterns {
		if !strings.EqualFold(p.Branch, branch) {
			continue
		}
		likes := make([]string, 0, len(p.Substrings))
		for _, s := range p.Substrings {
			likes = append(likes, "%"+strings.NewReplacer(" ", "%", "-", "%").Replace(s)+"%")
		}
		return likes, true
	}
	return nil, false
}

// ParseBranchPatterns reads "Villas=villas|vlla;Nave=nave".
func ParseBranchPatterns(s string) ([]BranchPattern, error) {
	var patterns []BranchPattern
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, subs, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.TrimSpace(subs) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBranchPattern, entry)
		}
		patterns = append(patterns, BranchPattern{Branch: name, Substrings: strings.Split(subs, "|")})
	}
	return patterns, nil
}
