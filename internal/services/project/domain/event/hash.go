package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrChainBroken indicates a stored event does not match its recomputed hashes.
var ErrChainBroken = errors.New("event chain is broken")

// CanonicalJSON re-encodes a JSON document with sorted object keys, no
// insignificant whitespace and no HTML escaping. Numbers keep their literal form.
func CanonicalJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode: trailing data")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EventHash computes the content hash of an event's business fields.
// Journal fields (Seq and the hashes) are excluded.
func EventHash(evt Event) (string, error) {
	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	envelope := map[string]any{
		"project_id":  evt.ProjectID,
		"type":        string(evt.Type),
		"timestamp":   evt.Timestamp.UTC().Format(time.RFC3339Nano),
		"actor_id":    evt.ActorID,
		"request_id":  evt.RequestID,
		"entity_type": evt.EntityType,
		"entity_id":   evt.EntityID,
		"payload":     json.RawMessage(payload),
	}
	return hashEnvelope(envelope)
}

// ChainHash computes the hash that links an event to its predecessor.
func ChainHash(evt Event, prevHash string) (string, error) {
	contentHash := evt.Hash
	if contentHash == "" {
		computed, err := EventHash(evt)
		if err != nil {
			return "", err
		}
		contentHash = computed
	}
	envelope := map[string]any{
		"project_id": evt.ProjectID,
		"seq":        evt.Seq,
		"event_hash": contentHash,
		"prev_hash":  prevHash,
	}
	return hashEnvelope(envelope)
}

// Seal assigns the integrity fields for an event at seq following prevChainHash.
func Seal(evt Event, seq uint64, prevChainHash string) (Event, error) {
	evt.Seq = seq
	hash, err := EventHash(evt)
	if err != nil {
		return Event{}, fmt.Errorf("event hash: %w", err)
	}
	evt.Hash = hash
	evt.PrevHash = prevChainHash
	chain, err := ChainHash(evt, prevChainHash)
	if err != nil {
		return Event{}, fmt.Errorf("chain hash: %w", err)
	}
	evt.ChainHash = chain
	return evt, nil
}

// VerifyChain recomputes the hashes of a contiguous stream starting at seq 1
// and reports the first event that does not match.
func VerifyChain(events []Event) error {
	prev := ""
	for i, evt := range events {
		if want := uint64(i + 1); evt.Seq != want {
			return fmt.Errorf("%w: expected seq %d got %d", ErrChainBroken, want, evt.Seq)
		}
		hash, err := EventHash(evt)
		if err != nil {
			return fmt.Errorf("seq %d: %w", evt.Seq, err)
		}
		if hash != evt.Hash {
			return fmt.Errorf("%w: seq %d content hash mismatch", ErrChainBroken, evt.Seq)
		}
		if evt.PrevHash != prev {
			return fmt.Errorf("%w: seq %d prev hash mismatch", ErrChainBroken, evt.Seq)
		}
		chain, err := ChainHash(evt, prev)
		if err != nil {
			return fmt.Errorf("seq %d: %w", evt.Seq, err)
		}
		if chain != evt.ChainHash {
			return fmt.Errorf("%w: seq %d chain hash mismatch", ErrChainBroken, evt.Seq)
		}
		prev = evt.ChainHash
	}
	return nil
}

func hashEnvelope(envelope map[string]any) (string, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	canonical, err := CanonicalJSON(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
