package ribbon

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// SegmentState is the plain geometry of one segment.
type SegmentState struct {
	StartX   float64 `cbor:"1,keyasint"`
	StartY   float64 `cbor:"2,keyasint"`
	EndX     float64 `cbor:"3,keyasint"`
	EndY     float64 `cbor:"4,keyasint"`
	Length   float64 `cbor:"5,keyasint"`
	Strength float64 `cbor:"6,keyasint"`
	Backface bool    `cbor:"7,keyasint"`
}

// Snapshot is a copy of the chain in left to right order.
type Snapshot struct {
	Segments           []SegmentState `cbor:"1,keyasint"`
	TotalSegmentLength float64        `cbor:"2,keyasint"`
	// Pulled is the chain position of the pivot, or -1.
	Pulled int `cbor:"3,keyasint"`
}

// Snapshot copies the current chain.
func (r *Ribbon) Snapshot() Snapshot {
	snap := Snapshot{
		Segments:           make([]SegmentState, 0, r.chain.count),
		TotalSegmentLength: r.totalSegmentLength,
		Pulled:             -1,
	}
	for i := r.chain.first; i != nilIndex; i = r.chain.next(i) {
		s := r.chain.seg(i)
		if i == r.pulled {
			snap.Pulled = len(snap.Segments)
		}
		start, end := s.StartPoint(), s.EndPoint()
		snap.Segments = append(snap.Segments, SegmentState{
			StartX:   start.X,
			StartY:   start.Y,
			EndX:     end.X,
			EndY:     end.Y,
			Length:   s.SegmentLength(),
			Strength: s.StraightenStrength,
			Backface: s.Backface(),
		})
	}
	return snap
}

var snapshotEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Fingerprint hashes the deterministic CBOR encoding of the snapshot.
func (s Snapshot) Fingerprint() (string, error) {
	b, err := snapshotEncMode.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:16]), nil
}
