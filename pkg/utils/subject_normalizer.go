package utils

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// SubjectNormalizationConfig maps raw subject labels to canonical subjects.
// A nil canonical marks a label that is not an academic subject.
type SubjectNormalizationConfig struct {
	Subjects map[string]*string `yaml:"subjects"`
}

// SubjectNormalizer canonicalises subject names once at ingestion time
type SubjectNormalizer struct {
	exact  map[string]*string
	folded map[string]*string
}

var qualifierRe = regexp.MustCompile(`\s*\([^)]*\)`)

// NewSubjectNormalizer loads the mapping from a YAML file
func NewSubjectNormalizer(configPath string) (*SubjectNormalizer, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg SubjectNormalizationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Subjects) == 0 {
		return nil, fmt.Errorf("config %s defines no subjects", configPath)
	}
	return NewSubjectNormalizerFromConfig(cfg), nil
}

// NewSubjectNormalizerFromConfig builds a normalizer from an in-memory mapping
func NewSubjectNormalizerFromConfig(cfg SubjectNormalizationConfig) *SubjectNormalizer {
	sn := &SubjectNormalizer{
		exact:  make(map[string]*string, len(cfg.Subjects)),
		folded: make(map[string]*string, len(cfg.Subjects)),
	}
	for raw, canonical := range cfg.Subjects {
		key := strings.TrimSpace(raw)
		sn.exact[key] = canonical
		sn.folded[FoldCase(key)] = canonical
	}
	return sn
}

// Normalize returns the canonical subject for raw. ok is false for blank,
// unmapped or explicitly excluded labels.
//
// Lookup order: exact label, case-folded label, then the label with
// parenthetical qualifiers such as "(O Level)" or "(IP)" removed.
func (sn *SubjectNormalizer) Normalize(raw string) (canonical string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	candidates := []string{trimmed}
	if stripped := strings.TrimSpace(qualifierRe.ReplaceAllString(trimmed, "")); stripped != "" && stripped != trimmed {
		candidates = append(candidates, stripped)
	}

	for _, c := range candidates {
		if v, found := sn.exact[c]; found {
			return deref(v)
		}
		if v, found := sn.folded[FoldCase(c)]; found {
			return deref(v)
		}
	}
	return "", false
}

// NormalizeAll canonicalises a list, dropping non-subjects and duplicates
func (sn *SubjectNormalizer) NormalizeAll(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		canonical, ok := sn.Normalize(r)
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

// CanonicalSubjects lists every distinct canonical subject, sorted
func (sn *SubjectNormalizer) CanonicalSubjects() []string {
	set := make(map[string]struct{})
	for _, v := range sn.exact {
		if v != nil {
			set[*v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func deref(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	return *v, true
}

// FoldCase returns the case-folded form of s for case-insensitive comparison.
// A Caser keeps state, so a fresh one is used per call.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// GetSubjectConfigPath returns the normalization config path
func GetSubjectConfigPath() string {
	if configPath := os.Getenv("SUBJECT_NORMALIZATION_CONFIG"); configPath != "" {
		return configPath
	}
	return "config/subject_normalization.yaml"
}
