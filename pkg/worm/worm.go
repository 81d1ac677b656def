// Package worm implements the append-only, hash-chained evidence log
// (§4.D), grounded on the teacher's pkg/ledger.Ledger but with the dual
// SHA-512/BLAKE2b digest and genesis-hash convention the spec requires.
package worm

import (
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/scie-systems/scie-core/pkg/canon"
	"github.com/scie-systems/scie-core/pkg/scieerr"
	"golang.org/x/crypto/blake2b"
)

// genesisSeed is hashed to produce the genesis entry's prev_hash
// (§3 EvidenceEntry: "genesis entry has prev_hash = sha512(\"genesis\")").
const genesisSeed = "genesis"

// Entry is a single WORM record (§6 "WORM storage interface").
type Entry struct {
	Sequence    uint64    `json:"sequence"`
	Timestamp   time.Time `json:"timestamp"`
	PrevHash    string    `json:"prev_hash"`
	Payload     any       `json:"payload"`
	SHA512      string    `json:"sha512"`
	BLAKE2b     string    `json:"blake2b"`
	SharedRefs  []string  `json:"shared_refs,omitempty"`
}

// Store is the append-only storage interface a WORM chain writes through.
// A filesystem implementation lives in store_file.go; it is the only
// implementation in this package.
type Store interface {
	WriteEntry(e Entry) error
	ReadEntry(seq uint64) (Entry, bool, error)
	TailSequence() (uint64, error)
}

// Chain is the hash-chained WORM log. It serializes Append calls behind an
// exclusive lock, per §4.D's append protocol.
type Chain struct {
	mu            sync.Mutex
	store         Store
	clock         func() time.Time
	acquireTimeout time.Duration

	lockCh chan struct{} // buffered(1); held == empty
}

// New constructs a Chain backed by store, using the real-time clock and a
// 30s lock-acquisition timeout (§5 "Timeouts").
func New(store Store) *Chain {
	c := &Chain{
		store:          store,
		clock:          time.Now,
		acquireTimeout: 30 * time.Second,
		lockCh:         make(chan struct{}, 1),
	}
	c.lockCh <- struct{}{}
	return c
}

// WithClock overrides the chain's time source for deterministic tests.
func (c *Chain) WithClock(clock func() time.Time) *Chain {
	c.clock = clock
	return c
}

func genesisHash() string {
	sum := sha512.Sum512([]byte(genesisSeed))
	return hex.EncodeToString(sum[:])
}

// Append implements the §4.D append protocol: acquire the tail lock, compute
// sequence and prev_hash from the current tail, serialize payload
// canonically, compute the dual digest, write, advance the tail, release.
func (c *Chain) Append(payload any, sharedRefs ...string) (Entry, error) {
	select {
	case <-c.lockCh:
		defer func() { c.lockCh <- struct{}{} }()
	case <-time.After(c.acquireTimeout):
		return Entry{}, scieerr.New(scieerr.ConcurrentWrite, "timed out acquiring WORM tail lock")
	}

	tailSeq, err := c.store.TailSequence()
	if err != nil {
		return Entry{}, scieerr.Wrap(scieerr.StoreReadonly, "read tail sequence", err)
	}

	var prevHash string
	var sequence uint64
	if tailSeq == 0 {
		prevHash = genesisHash()
		sequence = 1
	} else {
		tail, ok, err := c.store.ReadEntry(tailSeq)
		if err != nil || !ok {
			return Entry{}, scieerr.Wrap(scieerr.StoreReadonly, "read tail entry", err)
		}
		prevHash = tail.SHA512
		sequence = tail.Sequence + 1
	}

	canonicalPayload, err := canon.Bytes(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("worm: canonicalize payload: %w", err)
	}

	sha, b2 := dualDigest(sequence, prevHash, canonicalPayload)

	entry := Entry{
		Sequence:   sequence,
		Timestamp:  c.clock().UTC(),
		PrevHash:   prevHash,
		Payload:    payload,
		SHA512:     sha,
		BLAKE2b:    b2,
		SharedRefs: sharedRefs,
	}

	if err := c.store.WriteEntry(entry); err != nil {
		return Entry{}, scieerr.Wrap(scieerr.StoreReadonly, "write entry", err)
	}
	return entry, nil
}

// Read returns the entry at seq.
func (c *Chain) Read(seq uint64) (Entry, bool, error) {
	return c.store.ReadEntry(seq)
}

// dualDigest computes sha512(sequence || prev_hash || payload_bytes) and the
// blake2b-32 digest of the same input (§4.D step 3).
func dualDigest(sequence uint64, prevHash string, payloadBytes []byte) (sha512Hex, blake2bHex string) {
	input := digestInput(sequence, prevHash, payloadBytes)

	sha := sha512.Sum512(input)
	b2, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a bad key, and we pass nil.
		panic(fmt.Sprintf("worm: blake2b.New256: %v", err))
	}
	b2.Write(input)

	return hex.EncodeToString(sha[:]), hex.EncodeToString(b2.Sum(nil))
}

func canonicalPayloadBytes(payload any) ([]byte, error) {
	return canon.Bytes(payload)
}

func digestInput(sequence uint64, prevHash string, payloadBytes []byte) []byte {
	seqBytes, _ := json.Marshal(sequence)
	var buf []byte
	buf = append(buf, seqBytes...)
	buf = append(buf, []byte(prevHash)...)
	buf = append(buf, payloadBytes...)
	return buf
}
