package shader

import "fluid-glow/core"

// Extension customises a template-based scene material: code for slots plus
// the uniforms that code reads.
type Extension struct {
	Name     string
	Code     map[Slot]string
	Uniforms core.Uniforms
}

// Material is a full-screen pass program with its uniform values. Uniforms
// are mutated in place between passes.
type Material struct {
	Name     string
	Program  Program
	Uniforms core.Uniforms
}

func NewMaterial(name string, program Program, uniforms core.Uniforms) *Material {
	if uniforms == nil {
		uniforms = core.Uniforms{}
	}
	return &Material{Name: name, Program: program, Uniforms: uniforms}
}

// ScreenVertex draws a fullscreen triangle from gl_VertexID; no vertex
// buffer is needed.
const ScreenVertex = `
#version 410 core
out vec2 vUv;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    vUv         = pos[gl_VertexID] * 0.5 + 0.5;
}
`

// ScreenProgram pairs ScreenVertex with a fragment source.
func ScreenProgram(key, fragment string) Program {
	return Program{Key: key, Vertex: ScreenVertex, Fragment: fragment}
}
