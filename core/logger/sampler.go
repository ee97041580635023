package logger

import (
	"strconv"
	"strings"
	"sync"
)

// defaultDebugSample keeps 2% of update receipt logs; sender and intake debug events all pass.
const defaultDebugSample = "tg=1/50,tg.sender=1"

type ratio struct {
	keep, every int
}

func (r ratio) unlimited() bool {
	return r.every <= 0 || r.keep >= r.every
}

// componentSampler thins debug events per component. Rules are matched on the
// longest dotted prefix of the component name, so "intake" covers
// "intake.dialogue" unless that component has its own rule.
type componentSampler struct {
	mu       sync.Mutex
	rules    map[string]ratio
	fallback ratio
	seen     map[string]int
}

func newComponentSampler(spec string) *componentSampler {
	s := &componentSampler{}
	s.Configure(spec)
	return s
}

// Configure replaces the rules with the parsed spec and resets counters.
// An empty spec restores the defaults; "off" disables sampling entirely.
func (s *componentSampler) Configure(spec string) {
	if strings.TrimSpace(spec) == "" {
		spec = defaultDebugSample
	}
	rules, fallback := parseSampleSpec(spec)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
	s.fallback = fallback
	s.seen = make(map[string]int)
}

// Allow reports whether the next debug event of component passes sampling.
func (s *componentSampler) Allow(component string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, r := s.match(strings.TrimSpace(component))
	if r.unlimited() {
		return true
	}
	n := s.seen[key]%r.every + 1
	s.seen[key] = n
	return n <= r.keep
}

func (s *componentSampler) match(component string) (string, ratio) {
	for name := component; name != ""; {
		if r, ok := s.rules[name]; ok {
			return name, r
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return "", s.fallback
}

// parseSampleSpec reads comma-separated entries such as
// "tg=1/50,intake.dialogue=1/5,1/10". An entry without a component sets the
// fallback ratio. A bare number N means 1/N. Malformed entries are skipped.
func parseSampleSpec(spec string) (map[string]ratio, ratio) {
	rules := make(map[string]ratio)
	var fallback ratio
	if strings.EqualFold(strings.TrimSpace(spec), "off") {
		return rules, fallback
	}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, scoped := strings.Cut(entry, "=")
		if !scoped {
			value, name = name, ""
		}
		r, ok := parseRatio(value)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			fallback = r
			continue
		}
		rules[name] = r
	}
	return rules, fallback
}

func parseRatio(value string) (ratio, bool) {
	value = strings.TrimSpace(value)
	if num, den, ok := strings.Cut(value, "/"); ok {
		keep, err1 := strconv.Atoi(strings.TrimSpace(num))
		every, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 != nil || err2 != nil || keep < 0 || every <= 0 {
			return ratio{}, false
		}
		return ratio{keep: keep, every: every}, true
	}
	every, err := strconv.Atoi(value)
	if err != nil || every <= 0 {
		return ratio{}, false
	}
	return ratio{keep: 1, every: every}, true
}
