package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EncodeRecord serializes a session record for storage.
func EncodeRecord(r Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal session record: %w", err)
	}
	return data, nil
}

// DecodeRecord parses and structurally validates a stored session record.
// Any returned error means the payload must be treated as corrupted.
func DecodeRecord(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Record{}, errors.New("session record is not a JSON object")
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("unmarshal session record: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the structural invariants of a record.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return errors.New("session record: missing id")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("session record: missing name")
	case !strings.Contains(r.Email, "@"):
		return fmt.Errorf("session record: invalid email %q", r.Email)
	case !r.Role.Valid():
		return fmt.Errorf("session record: invalid role %q", r.Role)
	}
	if !r.ExpiresAt.IsZero() && !r.IssuedAt.IsZero() && r.ExpiresAt.Before(r.IssuedAt) {
		return errors.New("session record: expires before issued")
	}
	return nil
}

// NewRecord builds a record for p issued at now. A positive ttl sets ExpiresAt.
func NewRecord(p Principal, now time.Time, ttl time.Duration) Record {
	r := Record{Principal: p, IssuedAt: now.UTC()}
	if ttl > 0 {
		r.ExpiresAt = r.IssuedAt.Add(ttl)
	}
	return r
}
