package worm

// BreakKind classifies a single chain break found during verification.
type BreakKind string

const (
	BreakGap          BreakKind = "GAP"
	BreakHashMismatch BreakKind = "HASH_MISMATCH"
	BreakPrevMismatch BreakKind = "PREV_HASH_MISMATCH"
)

// ChainBreak records one detected break.
type ChainBreak struct {
	Sequence uint64
	Kind     BreakKind
	Detail   string
}

// VerificationResult is the output of verify_chain (§4.D).
type VerificationResult struct {
	Valid       bool
	EntriesSeen int
	Breaks      []ChainBreak
}

// VerifyChain performs the §4.D linear scan from fromSeq to toSeq inclusive:
// for each entry i>0, recompute sha512 from payload and assert it equals
// the stored sha512, and assert entry i's stored prev_hash equals entry
// (i-1)'s sha512. Gaps, hash mismatches, and reordering are all breaks.
func (c *Chain) VerifyChain(fromSeq, toSeq uint64) (VerificationResult, error) {
	result := VerificationResult{Valid: true}

	var prevHash string
	if fromSeq <= 1 {
		prevHash = genesisHash()
		fromSeq = 1
	} else {
		prev, ok, err := c.store.ReadEntry(fromSeq - 1)
		if err != nil {
			return result, err
		}
		if ok {
			prevHash = prev.SHA512
		}
	}

	for seq := fromSeq; seq <= toSeq; seq++ {
		entry, ok, err := c.store.ReadEntry(seq)
		if err != nil {
			return result, err
		}
		if !ok {
			result.Valid = false
			result.Breaks = append(result.Breaks, ChainBreak{Sequence: seq, Kind: BreakGap, Detail: "missing entry"})
			continue
		}
		result.EntriesSeen++

		if entry.PrevHash != prevHash {
			result.Valid = false
			result.Breaks = append(result.Breaks, ChainBreak{
				Sequence: seq, Kind: BreakPrevMismatch,
				Detail: "stored prev_hash does not match predecessor's sha512",
			})
		}

		// nextPrevHash is what entry (seq+1) must match. It comes from the
		// recomputed digest below, not entry.SHA512, so a single tampered
		// stored digest produces one HASH_MISMATCH here and does not
		// cascade into a second, spurious break on the next entry (§8 S2).
		nextPrevHash := entry.SHA512

		canonicalPayload, err := canonicalPayloadBytes(entry.Payload)
		if err == nil {
			recomputedSHA, _ := dualDigest(entry.Sequence, entry.PrevHash, canonicalPayload)
			nextPrevHash = recomputedSHA
			if recomputedSHA != entry.SHA512 {
				result.Valid = false
				result.Breaks = append(result.Breaks, ChainBreak{
					Sequence: seq, Kind: BreakHashMismatch, Detail: "recomputed sha512 differs from stored value",
				})
			}
		}

		prevHash = nextPrevHash
	}

	return result, nil
}
