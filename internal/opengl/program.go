package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"

	"fluid-glow/core"
	"fluid-glow/scene"
	"fluid-glow/shader"
)

// program is a linked GL program with its uniform locations resolved lazily.
type program struct {
	id        uint32
	locations map[string]int32
}

func (p *program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

// program returns the cached program for src.Key, compiling it on first use.
// A failed key is remembered and logged once.
func (d *Device) program(src shader.Program) (*program, error) {
	if p, ok := d.programs[src.Key]; ok {
		return p, nil
	}
	if err, ok := d.failed[src.Key]; ok {
		return nil, err
	}

	id, err := newProgram(src.Vertex, src.Fragment)
	if err != nil {
		err = fmt.Errorf("program %q: %w", src.Key, err)
		d.failed[src.Key] = err
		log.Error().Err(err).Msg("shader compile")
		return nil, err
	}

	p := &program{id: id, locations: make(map[string]int32)}
	d.programs[src.Key] = p
	log.Debug().Str("program", src.Key).Msg("compiled")
	return p, nil
}

// ── Uniforms ──────────────────────────────────────────────────────────────────

// bindUniforms writes every uniform the program declares, assigning texture
// units upward from unit. It returns the next free unit.
func (d *Device) bindUniforms(p *program, u core.Uniforms, unit int32) int32 {
	for name, v := range u {
		if v == nil {
			continue
		}
		d.setUniform(p, name, v.Value, &unit)
	}
	return unit
}

func (d *Device) setUniform(p *program, name string, value any, unit *int32) {
	loc := p.location(name)
	if loc < 0 {
		return
	}

	switch v := value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case float64:
		gl.Uniform1f(loc, float32(v))
	case int:
		gl.Uniform1i(loc, int32(v))
	case int32:
		gl.Uniform1i(loc, v)
	case bool:
		var b int32
		if v {
			b = 1
		}
		gl.Uniform1i(loc, b)
	case mgl32.Vec2:
		gl.Uniform2fv(loc, 1, &v[0])
	case mgl32.Vec3:
		gl.Uniform3fv(loc, 1, &v[0])
	case mgl32.Vec4:
		gl.Uniform4fv(loc, 1, &v[0])
	case core.Color:
		gl.Uniform4f(loc, v.R, v.G, v.B, v.A)
	case mgl32.Mat3:
		gl.UniformMatrix3fv(loc, 1, false, &v[0])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	case []float32:
		if len(v) > 0 {
			gl.Uniform1fv(loc, int32(len(v)), &v[0])
		}
	case []mgl32.Vec3:
		if len(v) > 0 {
			gl.Uniform3fv(loc, int32(len(v)), &v[0][0])
		}
	case *core.Target:
		if v == nil || !samplerUnitFree(name, *unit) {
			return
		}
		d.bindTexture(*unit, d.ensureTarget(v).color)
		gl.Uniform1i(loc, *unit)
		*unit++
	case *scene.Texture:
		if v == nil || !samplerUnitFree(name, *unit) {
			return
		}
		d.bindTexture(*unit, d.ensureTexture(v))
		gl.Uniform1i(loc, *unit)
		*unit++
	case nil:
	default:
		log.Warn().Str("uniform", name).Str("type", fmt.Sprintf("%T", value)).Msg("unsupported uniform type")
	}
}

func samplerUnitFree(name string, unit int32) bool {
	if unit >= scratchUnit {
		log.Warn().Str("uniform", name).Int32("unit", unit).Msg("out of texture units")
		return false
	}
	return true
}

// scratchUnit is the texture unit used to (re)specify textures and targets.
// Storage is often created lazily while a draw binds its samplers to units
// 0..n; doing it on a unit no draw samples from leaves those bindings alone.
const scratchUnit = 15

func useScratchUnit() {
	gl.ActiveTexture(gl.TEXTURE0 + scratchUnit)
}

func (d *Device) bindTexture(unit int32, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, id)
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		info := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(info))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(info, "\x00"))
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(strings.TrimLeft(src, "\n") + "\x00")
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		info := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(info))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(info, "\x00"))
	}
	return sh, nil
}
