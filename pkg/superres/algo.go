// Package superres provides the per-frame super-resolution transform.
//
// Models are looked up in a directory laid out as
//
//	<dir>/EDSR/EDSR_x{2,3,4}.pb
//	<dir>/ESPCN/ESPCN_x{2,3,4}.pb
//	<dir>/FSRCNN/FSRCNN_x{2,3,4}.pb
//	<dir>/FSRCNN/FSRCNN-small_x{2,3,4}.pb
//	<dir>/LapSRN/LapSRN_x{2,4,8}.pb
//
// An Engine validates that the model for its algorithm and scale is present
// and resamples frames with a kernel matched to that algorithm.
package superres

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Algo identifies a super-resolution model family.
type Algo int

const (
	// EDSR is the largest and slowest model, best suited to still pictures.
	EDSR Algo = iota
	// FSRCNN is a small, fast model that can run in real time.
	FSRCNN
	// FSRCNNSmall is FSRCNN with a smaller network: faster, lower quality.
	FSRCNNSmall
	// LapSRN is a medium sized model and the only one that goes up to x8.
	LapSRN
	// ESPCN is small and fast with good results on movies.
	ESPCN
)

// DefaultAlgo is the algorithm used for movies.
const DefaultAlgo = ESPCN

var algoNames = map[Algo]string{
	EDSR:        "edsr",
	FSRCNN:      "fsrcnn",
	FSRCNNSmall: "fsrcnn_small",
	LapSRN:      "lapsrn",
	ESPCN:       "espcn",
}

// Algos lists every supported algorithm.
func Algos() []Algo {
	return []Algo{EDSR, FSRCNN, FSRCNNSmall, LapSRN, ESPCN}
}

// String returns the lower-case algorithm name.
func (a Algo) String() string {
	if name, ok := algoNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAlgo parses an algorithm name, case-insensitively.
func ParseAlgo(s string) (Algo, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for algo, n := range algoNames {
		if n == name {
			return algo, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgo, s)
}

// ValidateScale checks that algo supports scale.
// Every model supports x2 to x4; LapSRN supports even factors up to x8.
// Whether a model file exists for the factor is checked by New.
func ValidateScale(algo Algo, scale int) error {
	if _, ok := algoNames[algo]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAlgo, int(algo))
	}
	if scale < 2 {
		return fmt.Errorf("%w: x%d", ErrInvalidScale, scale)
	}
	if algo == LapSRN {
		if scale > 8 || scale%2 != 0 {
			return fmt.Errorf("%w: %s does not support x%d", ErrInvalidScale, algo, scale)
		}
		return nil
	}
	if scale > 4 {
		return fmt.Errorf("%w: %s does not support x%d", ErrInvalidScale, algo, scale)
	}
	return nil
}

// ModelPath returns the model file for algo and scale under dir.
func ModelPath(dir string, algo Algo, scale int) string {
	var sub, file string
	switch algo {
	case EDSR:
		sub, file = "EDSR", fmt.Sprintf("EDSR_x%d.pb", scale)
	case FSRCNN:
		sub, file = "FSRCNN", fmt.Sprintf("FSRCNN_x%d.pb", scale)
	case FSRCNNSmall:
		sub, file = "FSRCNN", fmt.Sprintf("FSRCNN-small_x%d.pb", scale)
	case LapSRN:
		sub, file = "LapSRN", fmt.Sprintf("LapSRN_x%d.pb", scale)
	default:
		sub, file = "ESPCN", fmt.Sprintf("ESPCN_x%d.pb", scale)
	}
	return filepath.Join(dir, sub, file)
}
