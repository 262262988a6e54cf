package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
)

// Domain prefixes for digests.
// Version suffix enables future algorithm migration.
const (
	DomainLevel = "trainsim/level/v1"
	DomainTick  = "trainsim/tick/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// LevelDigest identifies the level text a run was started from.
func LevelDigest(text []byte) string {
	return hashWithDomain(DomainLevel, text)
}

// TickDigest chains the digest of the previous tick with the snapshot taken
// after this one. prev is "" for the first tick.
func TickDigest(prev string, s engine.Snapshot) (string, error) {
	state, err := Marshal(s)
	if err != nil {
		return "", fmt.Errorf("TickDigest: tick %d: %w", s.Tick, err)
	}
	data := make([]byte, 0, len(prev)+1+len(state))
	data = append(data, prev...)
	data = append(data, 0x00)
	data = append(data, state...)
	return hashWithDomain(DomainTick, data), nil
}

// Chain accumulates tick digests over a run.
type Chain struct {
	head    string
	entries []string
}

// Add records the snapshot taken after a tick and returns its digest.
func (c *Chain) Add(s engine.Snapshot) (string, error) {
	d, err := TickDigest(c.head, s)
	if err != nil {
		return "", err
	}
	c.head = d
	c.entries = append(c.entries, d)
	return d, nil
}

// Head returns the latest digest, "" before the first Add.
func (c *Chain) Head() string { return c.head }

// Digests returns every digest in tick order.
func (c *Chain) Digests() []string {
	return append([]string(nil), c.entries...)
}

// MustTickDigest is like TickDigest but panics on error.
// Use only in tests.
func MustTickDigest(prev string, s engine.Snapshot) string {
	d, err := TickDigest(prev, s)
	if err != nil {
		panic(err)
	}
	return d
}
