package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/rs/zerolog/log"

	"fluid-glow/core"
)

// glTarget is the GPU storage behind a core.Target.
type glTarget struct {
	fbo   uint32
	color uint32
	depth uint32 // renderbuffer, 0 when the target has no depth buffer

	width, height int32
	generation    uint64
}

// ensureTarget returns t's storage, allocating it on first use and
// re-specifying it after a resize. New storage is cleared to transparent
// black. The previously bound framebuffer and viewport stay in effect.
func (d *Device) ensureTarget(t *core.Target) *glTarget {
	gt, _ := t.Handle.(*glTarget)
	if gt != nil && gt.generation == t.Generation {
		return gt
	}
	if gt == nil {
		gt = &glTarget{}
		gl.GenFramebuffers(1, &gt.fbo)
		gl.GenTextures(1, &gt.color)
		t.Handle = gt
		d.targets[t] = gt
	}

	gt.width = int32(max(t.Width, 1))
	gt.height = int32(max(t.Height, 1))
	gt.generation = t.Generation

	internal, pixelType := int32(gl.RGBA8), uint32(gl.UNSIGNED_BYTE)
	if t.Format == core.FormatRGBA16F {
		internal, pixelType = gl.RGBA16F, gl.HALF_FLOAT
	}
	filter := int32(gl.LINEAR)
	if t.Filter == core.FilterNearest {
		filter = gl.NEAREST
	}

	useScratchUnit()
	gl.BindTexture(gl.TEXTURE_2D, gt.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, gt.width, gt.height, 0, gl.RGBA, pixelType, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindFramebuffer(gl.FRAMEBUFFER, gt.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, gt.color, 0)

	if t.DepthBuffer {
		if gt.depth == 0 {
			gl.GenRenderbuffers(1, &gt.depth)
		}
		gl.BindRenderbuffer(gl.RENDERBUFFER, gt.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, gt.width, gt.height)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, gt.depth)
	}

	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		log.Warn().Str("target", t.Name).Uint32("status", s).Msg("framebuffer incomplete")
	}

	gl.Viewport(0, 0, gt.width, gt.height)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.BindFramebuffer(gl.FRAMEBUFFER, d.boundFBO)
	gl.Viewport(0, 0, d.viewport[0], d.viewport[1])
	log.Debug().Str("target", t.Name).Int32("width", gt.width).Int32("height", gt.height).Msg("target allocated")
	return gt
}

// Release frees the storage behind t. The descriptor stays usable and is
// reallocated if drawn to again.
func (d *Device) Release(t *core.Target) {
	gt, ok := t.Handle.(*glTarget)
	if !ok {
		return
	}
	gl.DeleteFramebuffers(1, &gt.fbo)
	gl.DeleteTextures(1, &gt.color)
	if gt.depth != 0 {
		gl.DeleteRenderbuffers(1, &gt.depth)
	}
	t.Handle = nil
	delete(d.targets, t)
}
