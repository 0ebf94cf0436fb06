package resources

// ResourceType names the kind a resource belongs to. Names are unique per kind.
type ResourceType int

/** @brief Resource kinds handled by the manager. */
const (
	ResourceTypeTexture ResourceType = iota
	ResourceTypeShaderProg
	ResourceTypeMaterial
	ResourceTypeMesh
	ResourceTypeTilemap
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeTexture:
		return "texture"
	case ResourceTypeShaderProg:
		return "shader program"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeTilemap:
		return "tilemap"
	default:
		return "unknown"
	}
}

// Residency tells whether a resource has a backend representation in GPU memory.
// CPU-only kinds stay Unrealized for their whole life.
type Residency uint8

const (
	Unrealized Residency = iota
	Realized
)

func (r Residency) String() string {
	if r == Realized {
		return "realized"
	}
	return "unrealized"
}

// The directory under the project path every resource path is relative to.
const ResourcesDir = "Resources"

// Reserved prefix for resources built from in-process code.
const BuiltinPrefix = "OSE"
