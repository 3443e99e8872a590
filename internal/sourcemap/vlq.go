package sourcemap

import (
	"fmt"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqShift    = 5
	vlqBase     = 1 << vlqShift
	vlqMask     = vlqBase - 1
	vlqContinue = vlqBase
)

var base64Values = func() [256]int {
	var t [256]int
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base64Digits); i++ {
		t[base64Digits[i]] = i
	}
	return t
}()

// appendVLQ appends the base64 VLQ encoding of v.
func appendVLQ(dst []byte, v int) []byte {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & vlqMask
		u >>= vlqShift
		if u > 0 {
			digit |= vlqContinue
		}
		dst = append(dst, base64Digits[digit])
		if u == 0 {
			return dst
		}
	}
}

// decodeVLQ reads one value starting at s[i] and returns it with the index
// of the next unread byte.
func decodeVLQ(s string, i int) (int, int, error) {
	result, shift := 0, 0
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("truncated VLQ value")
		}
		digit := base64Values[s[i]]
		if digit < 0 {
			return 0, i, fmt.Errorf("invalid base64 digit %q at %d", s[i], i)
		}
		i++
		result += (digit & vlqMask) << shift
		if digit&vlqContinue == 0 {
			break
		}
		shift += vlqShift
		if shift > 60 {
			return 0, i, fmt.Errorf("VLQ value too large")
		}
	}
	if result&1 == 1 {
		return -(result >> 1), i, nil
	}
	return result >> 1, i, nil
}
