package srp

import "fmt"

// Preset names a predefined group and hash combination.
type Preset string

// Supported presets.
const (
	// PresetDefault is the RFC 5054 2048-bit group with SHA-256.
	PresetDefault Preset = "default"
	// PresetHighSecurity is the RFC 5054 3072-bit group with SHA-512.
	PresetHighSecurity Preset = "high-security"
	// PresetHomeKit is an alias of PresetHighSecurity, the parameters
	// used by HomeKit accessory pairing.
	PresetHomeKit Preset = "homekit"
)

// Params selects a group and a hash for an Engine. HashName is empty for a
// caller-supplied hash.
type Params struct {
	Group    Group
	Hash     Hash
	HashName string
}

// PresetParams returns the parameters of a preset.
func PresetParams(p Preset) (Params, error) {
	var groupName, hashName string
	switch p {
	case PresetDefault:
		groupName, hashName = GroupRFC5054_2048, HashSHA256
	case PresetHighSecurity, PresetHomeKit:
		groupName, hashName = GroupRFC5054_3072, HashSHA512
	default:
		return Params{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidParameter, p)
	}
	return NamedParams(groupName, hashName)
}

// NamedParams resolves a named group and a named hash.
func NamedParams(groupName, hashName string) (Params, error) {
	group, err := LookupGroup(groupName)
	if err != nil {
		return Params{}, err
	}
	h, err := LookupHash(hashName)
	if err != nil {
		return Params{}, err
	}
	canonical, _ := CanonicalHashName(hashName)
	return Params{Group: group, Hash: h, HashName: canonical}, nil
}

// NewParamsEngine creates an Engine from resolved parameters.
func NewParamsEngine(p Params) (*Engine, error) {
	return NewGroupEngine(p.Group, p.Hash)
}

// NewPresetEngine creates an Engine for a preset.
func NewPresetEngine(p Preset) (*Engine, error) {
	params, err := PresetParams(p)
	if err != nil {
		return nil, err
	}
	return NewParamsEngine(params)
}
