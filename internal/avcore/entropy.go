package avcore

import (
	"math"
	"os"
)

// Entropy computes the Shannon entropy, in bits per byte, of the full
// file at path. Empty files return 0 (spec §4.3, §8 boundary behavior).
func Entropy(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errNotFound(path)
		}
		return 0, errIO("read", path, err)
	}
	return entropyOf(data), nil
}

func entropyOf(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	total := float64(len(data))
	var entropy float64
	for _, f := range freq {
		if f == 0 {
			continue
		}
		p := float64(f) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
