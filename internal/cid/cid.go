// Package cid computes the content identifiers used to address messages:
// a CIDv1 over the dag-cbor codec, hashed with SHA-256.
package cid

import (
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	mh "github.com/multiformats/go-multihash"
)

// Codec is the multicodec used for every CID this package produces: dag-cbor (0x71).
const Codec = gocid.DagCBOR

// Of hashes data with SHA-256 and wraps the digest as a CIDv1 dag-cbor CID.
// data is expected to already be the canonical CBOR encoding of whatever is
// being addressed; Of does not encode on the caller's behalf.
func Of(data []byte) (gocid.Cid, error) {
	digest, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return gocid.Undef, fmt.Errorf("cid: hash: %w", err)
	}
	return gocid.NewCidV1(Codec, digest), nil
}

// OfEncoded is a convenience wrapper for callers that hold a Canonicalizer
// (anything producing its own deterministic bytes) rather than raw bytes.
func OfEncoded(encode func() ([]byte, error)) (gocid.Cid, error) {
	data, err := encode()
	if err != nil {
		return gocid.Undef, fmt.Errorf("cid: encode: %w", err)
	}
	return Of(data)
}

// String renders c in its canonical multibase-32 (lowercase) string form,
// the form used on the wire and in index keys.
func String(c gocid.Cid) string {
	s, err := c.StringOfBase(multibase.Base32)
	if err != nil {
		// CIDv1 always supports base32; this can only fail on a malformed Cid.
		return c.String()
	}
	return s
}

// Parse decodes a multibase CID string back into a Cid, rejecting anything
// that isn't a CIDv1 dag-cbor identifier.
func Parse(s string) (gocid.Cid, error) {
	c, err := gocid.Decode(s)
	if err != nil {
		return gocid.Undef, fmt.Errorf("cid: parse %q: %w", s, err)
	}
	if c.Version() != 1 {
		return gocid.Undef, fmt.Errorf("cid: parse %q: not a CIDv1", s)
	}
	if c.Type() != Codec {
		return gocid.Undef, fmt.Errorf("cid: parse %q: codec %#x, want dag-cbor", s, c.Type())
	}
	return c, nil
}
