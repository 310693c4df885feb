package production

import (
	"fmt"
	"strings"
)

// Modality identifies one content type a production can generate.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
	ModalityVideo Modality = "video"
)

// Modalities is the fixed reporting order. Tasks complete concurrently in
// arbitrary order; aggregates are always assembled in this order so the
// caller-visible output is deterministic.
var Modalities = []Modality{ModalityText, ModalityImage, ModalityAudio, ModalityVideo}

// ParseModality normalizes a free-form modality name.
func ParseModality(raw string) (Modality, error) {
	switch Modality(strings.ToLower(strings.TrimSpace(raw))) {
	case ModalityText:
		return ModalityText, nil
	case ModalityImage:
		return ModalityImage, nil
	case ModalityAudio:
		return ModalityAudio, nil
	case ModalityVideo:
		return ModalityVideo, nil
	default:
		return "", fmt.Errorf("unknown modality %q", raw)
	}
}

// ParseModalities normalizes and deduplicates a list of modality names,
// preserving the fixed reporting order.
func ParseModalities(raw []string) ([]Modality, error) {
	seen := make(map[Modality]bool, len(raw))
	for _, r := range raw {
		m, err := ParseModality(r)
		if err != nil {
			return nil, err
		}
		seen[m] = true
	}
	var out []Modality
	for _, m := range Modalities {
		if seen[m] {
			out = append(out, m)
		}
	}
	return out, nil
}

// orderModalities returns the subset of the fixed order present in selected.
func orderModalities(selected []Modality) []Modality {
	seen := make(map[Modality]bool, len(selected))
	for _, m := range selected {
		seen[m] = true
	}
	var out []Modality
	for _, m := range Modalities {
		if seen[m] {
			out = append(out, m)
		}
	}
	return out
}
