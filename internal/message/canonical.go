package message

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	gocid "github.com/ipfs/go-cid"

	dwncid "github.com/hookdeck/dwn-go/internal/cid"
)

var canonicalEncMode = mustCanonicalEncMode()

func mustCanonicalEncMode() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("message: invalid canonical cbor options: %v", err))
	}
	return mode
}

// CanonicalBytes returns the deterministic binary encoding a message's CID
// is derived from: descriptor and fields canonically CBOR-encoded, with any
// inline data field excluded since it is persisted separately.
func (m Message) CanonicalBytes() ([]byte, error) {
	stripped := m
	stripped.Fields.EncodedData = ""

	jsonData, err := json.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("message: marshal for canonicalization: %w", err)
	}

	var generic any
	if err := json.Unmarshal(jsonData, &generic); err != nil {
		return nil, fmt.Errorf("message: decode for canonicalization: %w", err)
	}

	data, err := canonicalEncMode.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("message: cbor-encode for canonicalization: %w", err)
	}
	return data, nil
}

// CID computes this message's content identifier: a CIDv1 dag-cbor hash of
// its canonical binary encoding.
func (m Message) CID() (gocid.Cid, error) {
	data, err := m.CanonicalBytes()
	if err != nil {
		return gocid.Undef, err
	}
	return dwncid.Of(data)
}
