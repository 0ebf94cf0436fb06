package resources

import "strings"

const (
	BuiltinShaderDefault2d = "OSE-Default2dShaderProg"
	BuiltinShaderDefault3d = "OSE-Default3dShaderProg"
)

// ShaderSource holds the per-stage source of a shader program.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// ShaderProg is a shader program, either built into the engine or loaded from a
// property file naming its stage sources.
type ShaderProg struct {
	Name string
	// Path is empty for built-in programs.
	Path    string
	Builtin bool
	Source  ShaderSource

	gpu GPUShaderProg
}

// IsBuiltinName reports whether identifier uses the reserved built-in prefix.
func IsBuiltinName(identifier string) bool {
	return strings.HasPrefix(identifier, BuiltinPrefix)
}

var builtinShaders = map[string]ShaderSource{
	BuiltinShaderDefault2d: {
		Vertex: `#version 330 core
layout (location = 0) in vec2 in_position;
layout (location = 1) in vec2 in_texcoord;
uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
out vec2 v_texcoord;
void main() {
	v_texcoord = in_texcoord;
	gl_Position = u_projection * u_view * u_model * vec4(in_position, 0.0, 1.0);
}`,
		Fragment: `#version 330 core
in vec2 v_texcoord;
uniform sampler2D u_texture0;
out vec4 out_colour;
void main() {
	out_colour = texture(u_texture0, v_texcoord);
}`,
	},
	BuiltinShaderDefault3d: {
		Vertex: `#version 330 core
layout (location = 0) in vec3 in_position;
layout (location = 1) in vec3 in_normal;
layout (location = 2) in vec2 in_texcoord;
uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
out vec3 v_normal;
out vec2 v_texcoord;
void main() {
	v_normal = mat3(u_model) * in_normal;
	v_texcoord = in_texcoord;
	gl_Position = u_projection * u_view * u_model * vec4(in_position, 1.0);
}`,
		Fragment: `#version 330 core
in vec3 v_normal;
in vec2 v_texcoord;
uniform sampler2D u_texture0;
out vec4 out_colour;
void main() {
	float light = max(dot(normalize(v_normal), normalize(vec3(0.3, 1.0, 0.5))), 0.2);
	out_colour = vec4(texture(u_texture0, v_texcoord).rgb * light, 1.0);
}`,
	},
}

func builtinShaderSource(identifier string) (ShaderSource, bool) {
	src, ok := builtinShaders[identifier]
	return src, ok
}

func (s *ShaderProg) GPU() GPUShaderProg {
	return s.gpu
}
