package domain

import "strings"

// EngineerFilter narrows an engineer roster. Zero values disable a criterion.
type EngineerFilter struct {
	Search        string
	Specialty     string
	MinRate       *float64
	MaxRate       *float64
	MinExperience *int
	Availability  Availability
}

// Matches reports whether p satisfies every active criterion. Each
// criterion is independent of the others, so the order in which they are
// applied never changes the result.
func (f EngineerFilter) Matches(p *Profile) bool {
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		if !strings.Contains(strings.ToLower(p.FullName), s) &&
			!strings.Contains(strings.ToLower(p.Specialty), s) &&
			!strings.Contains(strings.ToLower(p.Company), s) {
			return false
		}
	}
	if f.Specialty != "" && p.Specialty != f.Specialty {
		return false
	}
	if f.MinRate != nil && (p.HourlyRate == nil || *p.HourlyRate < *f.MinRate) {
		return false
	}
	if f.MaxRate != nil && (p.HourlyRate == nil || *p.HourlyRate > *f.MaxRate) {
		return false
	}
	if f.MinExperience != nil && (p.ExperienceYears == nil || *p.ExperienceYears < *f.MinExperience) {
		return false
	}
	if f.Availability != "" && p.Availability != f.Availability {
		return false
	}
	return true
}

// FilterEngineers returns the engineers of roster matching f, preserving
// roster order. The input slice is not modified.
func FilterEngineers(roster []*Profile, f EngineerFilter) []*Profile {
	out := make([]*Profile, 0, len(roster))
	for _, p := range roster {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
