// Package extract pulls telemetry probe names, regions, and search engines
// out of free-form test case text.
package extract

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"covtrack/internal/domain"
)

// Fallback values when a dimension is not present in the text.
const (
	NothingFound = "nothing found"
)

// Default extraction patterns. Both can be overridden from a YAML file.
const (
	DefaultProbePattern  = `(?:browser|urlbar|contextservices)\.[\w.-]+`
	DefaultRegionPattern = `\b(US|DE|CA|CN)\b`
)

// Patterns holds the configurable extraction regexes.
type Patterns struct {
	ProbePattern  string `yaml:"probe_pattern"`
	RegionPattern string `yaml:"region_pattern"`
}

// LoadPatterns reads pattern overrides from a YAML file. Missing fields
// keep their defaults; an empty path returns the defaults untouched.
func LoadPatterns(path string) (Patterns, error) {
	p := Patterns{
		ProbePattern:  DefaultProbePattern,
		RegionPattern: DefaultRegionPattern,
	}
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read patterns file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse patterns file: %w", err)
	}
	if p.ProbePattern == "" {
		p.ProbePattern = DefaultProbePattern
	}
	if p.RegionPattern == "" {
		p.RegionPattern = DefaultRegionPattern
	}
	return p, nil
}

// Result is everything recognized in one piece of text.
type Result struct {
	Probes  []string
	Regions []string
	Engines []string
}

// Service compiles the extraction patterns once and rebuilds the engine
// alternation from the supported engine list on each call, so newly
// registered engines are recognized without a restart.
type Service struct {
	probeRe  *regexp.Regexp
	regionRe *regexp.Regexp
	engines  domain.EngineRepository
}

// NewService compiles the patterns and returns an extraction Service.
func NewService(p Patterns, engines domain.EngineRepository) (*Service, error) {
	probeRe, err := regexp.Compile(p.ProbePattern)
	if err != nil {
		return nil, fmt.Errorf("compile probe pattern: %w", err)
	}
	regionRe, err := regexp.Compile(p.RegionPattern)
	if err != nil {
		return nil, fmt.Errorf("compile region pattern: %w", err)
	}
	return &Service{probeRe: probeRe, regionRe: regionRe, engines: engines}, nil
}

// Probes returns the distinct probe names found in text, in order of first
// appearance.
func (s *Service) Probes(text string) []string {
	return unique(s.probeRe.FindAllString(text, -1))
}

// Regions returns the distinct regions found in text.
func (s *Service) Regions(text string) []string {
	return unique(s.regionRe.FindAllString(text, -1))
}

// Engines returns the distinct supported engines mentioned in text,
// matched case-insensitively as whole words.
func (s *Service) Engines(ctx context.Context, text string) ([]string, error) {
	known, err := s.engines.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(known) == 0 {
		return nil, nil
	}

	alts := make([]string, len(known))
	for i, e := range known {
		alts[i] = regexp.QuoteMeta(e.Name)
	}
	re, err := regexp.Compile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile engine pattern: %w", err)
	}

	var found []string
	for _, m := range re.FindAllString(text, -1) {
		found = append(found, strings.ToLower(m))
	}
	return unique(found), nil
}

// Analyze runs all three extractors over one piece of text.
func (s *Service) Analyze(ctx context.Context, text string) (*Result, error) {
	engines, err := s.Engines(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Result{
		Probes:  s.Probes(text),
		Regions: s.Regions(text),
		Engines: engines,
	}, nil
}

// Rotation reduces text to a single (region, engine) pair, the sentinels
// standing in for dimensions the text never mentions.
func (s *Service) Rotation(ctx context.Context, text string) (region, engine string, err error) {
	region = domain.NoRegion
	if r := s.Regions(text); len(r) > 0 {
		region = r[0]
	}
	engine = domain.NoEngine
	engines, err := s.Engines(ctx, text)
	if err != nil {
		return "", "", err
	}
	if len(engines) > 0 {
		engine = engines[0]
	}
	return region, engine, nil
}

// RenderProbes joins probe names for display, the sentinel when none were
// found.
func RenderProbes(probes []string) string {
	if len(probes) == 0 {
		return NothingFound
	}
	return strings.Join(probes, ", ")
}

func unique(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
