package validator

import (
	"fmt"
	"time"
)

// CacheKey identifies one cached result, keyed by (rule_id,
// repository_snapshot_digest, rule_version) per §4.C "Result cache".
type CacheKey struct {
	RuleID          string
	SnapshotDigest  string
	RuleVersion     string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.RuleID, k.SnapshotDigest, k.RuleVersion)
}

// ResultCache stores validation results keyed by CacheKey. Entries are
// immutable once written: updates write new entries keyed by rule version
// (§5 "Shared resources").
type ResultCache interface {
	Get(key CacheKey) (Result, bool)
	Set(key CacheKey, result Result, ttl time.Duration)
}
