package signatures

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"maunium.net/go/mautrix/crypto/canonicaljson"
)

var (
	// ErrNotObject is returned when a signed payload is not a JSON object.
	ErrNotObject = errors.New("signed JSON must be an object")
	// ErrNotCanonical is returned for input that has no canonical JSON form.
	ErrNotCanonical = errors.New("not canonicalizable JSON")
)

const maxSafeInt = 1<<53 - 1

// Canonicalize re-encodes raw as Matrix canonical JSON: sorted object keys,
// no insignificant whitespace and strings as raw UTF-8. Invalid UTF-8 and
// numbers that are not integers in [-(2^53)+1, 2^53-1] are rejected.
func Canonicalize(raw []byte) ([]byte, error) {
	if err := checkCanonicalizable(raw); err != nil {
		return nil, err
	}
	return canonicaljson.CanonicalJSONAssumeValid(raw), nil
}

// SignableJSON returns the canonical form of obj without its "signatures" and
// "unsigned" members, which is the byte string signatures are computed over.
// The stripped signatures are returned alongside.
func SignableJSON(obj []byte) ([]byte, *Signatures, error) {
	if err := checkCanonicalizable(obj); err != nil {
		return nil, nil, err
	}
	if !gjson.ParseBytes(obj).IsObject() {
		return nil, nil, ErrNotObject
	}

	sigs := New()
	if rawSigs := gjson.GetBytes(obj, "signatures"); rawSigs.Exists() {
		if err := sigs.UnmarshalJSON([]byte(rawSigs.Raw)); err != nil {
			return nil, nil, fmt.Errorf("signatures member: %w", err)
		}
	}

	stripped, err := sjson.DeleteBytes(obj, "signatures")
	if err != nil {
		return nil, nil, err
	}
	if stripped, err = sjson.DeleteBytes(stripped, "unsigned"); err != nil {
		return nil, nil, err
	}
	return canonicaljson.CanonicalJSONAssumeValid(stripped), sigs, nil
}

// AttachSignatures merges sigs into obj's "signatures" member and returns the
// canonical result.
func AttachSignatures(obj []byte, sigs *Signatures) ([]byte, error) {
	_, existing, err := SignableJSON(obj)
	if err != nil {
		return nil, err
	}
	existing.Merge(sigs)

	b, err := existing.MarshalJSON()
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetRawBytes(obj, "signatures", b)
	if err != nil {
		return nil, err
	}
	return canonicaljson.CanonicalJSONAssumeValid(out), nil
}

func checkCanonicalizable(raw []byte) error {
	if !utf8.Valid(raw) {
		return fmt.Errorf("%w: invalid UTF-8", ErrNotCanonical)
	}
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("%w: invalid JSON", ErrNotCanonical)
	}
	return checkNumbers(gjson.ParseBytes(raw))
}

func checkNumbers(v gjson.Result) error {
	switch {
	case v.Type == gjson.Number:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil || n > maxSafeInt || n < -maxSafeInt {
			return fmt.Errorf("%w: number %s is not a safe integer", ErrNotCanonical, v.Raw)
		}
	case v.IsObject(), v.IsArray():
		var err error
		v.ForEach(func(_, child gjson.Result) bool {
			err = checkNumbers(child)
			return err == nil
		})
		return err
	}
	return nil
}
