package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Strategy selects one of the retrieval pipelines.
type Strategy string

const (
	StrategySimple    Strategy = "simple"
	StrategySelfQuery Strategy = "self"
	StrategyFusion    Strategy = "fusion"
)

// ParseStrategy converts a user-supplied strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySimple:
		return StrategySimple, nil
	case StrategySelfQuery, "self-query", "self_query":
		return StrategySelfQuery, nil
	case StrategyFusion:
		return StrategyFusion, nil
	default:
		return "", fmt.Errorf("unknown strategy: %q", s)
	}
}

// Prefix returns the collection name prefix that isolates each
// strategy's collections in the shared vector index.
func (s Strategy) Prefix() string {
	switch s {
	case StrategySelfQuery:
		return "selfrag_"
	case StrategyFusion:
		return "fusionrag_"
	default:
		return "simplerag_"
	}
}

// NeedsMetadata reports whether ingestion must extract structured
// metadata per chunk. Only self-query retrieval filters on metadata.
func (s Strategy) NeedsMetadata() bool {
	return s == StrategySelfQuery
}

// CollectionName derives the deterministic collection name for a
// document: strategy prefix plus the sanitized file name with its
// extension stripped. Two uploads that sanitize to the same name
// replace each other; uploads are full-replace by contract. Names that
// sanitize to nothing are rejected.
func CollectionName(s Strategy, fileName string) (string, error) {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	sanitized := sanitizeName(base)
	if strings.Trim(sanitized, "_") == "" {
		return "", fmt.Errorf("%w: %q sanitizes to nothing", ErrInvalidCollection, fileName)
	}
	return s.Prefix() + sanitized, nil
}

// sanitizeName maps every rune outside [A-Za-z0-9_-] to an underscore.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
