package render

import (
	"fmt"
	"strings"

	"fluid-glow/core"
	"fluid-glow/shader"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ── Shaders ───────────────────────────────────────────────────────────────────

const screenHeader = `
#version 410 core
in vec2 vUv;
out vec4 fragColor;
`

// luminosityFragment keeps pixels whose luma passes a smoothed threshold.
const luminosityFragment = screenHeader + `
uniform sampler2D tMap;
uniform float uThreshold;
uniform float uSmoothing;

void main() {
    vec4 texel = texture(tMap, vUv);
    float v = dot(texel.rgb, vec3(0.299, 0.587, 0.114));
    float alpha = smoothstep(uThreshold, uThreshold + uSmoothing, v);
    fragColor = mix(vec4(0.0, 0.0, 0.0, 1.0), texel, alpha);
}
`

// blurFragment is one axis of a separable Gaussian. KERNEL_RADIUS is
// defined per material; uWeights[0] is the centre tap.
const blurFragment = `
uniform sampler2D tMap;
uniform vec2 uDirection;
uniform vec2 uResolution;
uniform float uWeights[KERNEL_RADIUS];

void main() {
    vec2 invSize = 1.0 / uResolution;
    vec3 sum = texture(tMap, vUv).rgb * uWeights[0];
    for (int i = 1; i < KERNEL_RADIUS; i++) {
        vec2 offset = uDirection * invSize * float(i);
        sum += (texture(tMap, vUv + offset).rgb + texture(tMap, vUv - offset).rgb) * uWeights[i];
    }
    fragColor = vec4(sum, 1.0);
}
`

const bloomCompositeFragment = screenHeader + `
uniform sampler2D tBlur1;
uniform sampler2D tBlur2;
uniform sampler2D tBlur3;
uniform sampler2D tBlur4;
uniform sampler2D tBlur5;
uniform float uBloomFactors[5];

void main() {
    fragColor = uBloomFactors[0] * texture(tBlur1, vUv) +
                uBloomFactors[1] * texture(tBlur2, vUv) +
                uBloomFactors[2] * texture(tBlur3, vUv) +
                uBloomFactors[3] * texture(tBlur4, vUv) +
                uBloomFactors[4] * texture(tBlur5, vUv);
}
`

// compositeFragment adds bloom to the scene with an RGB split driven by the
// fluid velocity.
const compositeFragment = screenHeader + `
uniform sampler2D tScene;
uniform sampler2D tBloom;
uniform sampler2D tFluid;
uniform float uBloomDistortion;

vec4 getRGB(sampler2D image, vec2 uv, float angle, float amount) {
    vec2 offset = vec2(cos(angle), sin(angle)) * amount;
    vec4 r = texture(image, uv + offset);
    vec4 g = texture(image, uv);
    vec4 b = texture(image, uv - offset);
    return vec4(r.r, g.g, b.b, g.a);
}

void main() {
    vec3 fluid = texture(tFluid, vUv).rgb;
    vec2 uv = vUv - fluid.rg * 0.0002;

    vec2 dir = 0.5 - vUv;
    float angle = atan(dir.y, dir.x);
    float amount = length(fluid.rg) * 0.0001;

    fragColor = getRGB(tScene, uv, angle, amount);
    fragColor.rgb += getRGB(tBloom, uv, angle, amount + 0.001 * uBloomDistortion).rgb;
}
`

// ── Materials ─────────────────────────────────────────────────────────────────

func newLuminosityMaterial(threshold, smoothing float32) *shader.Material {
	return shader.NewMaterial("luminosity", shader.ScreenProgram("luminosity", luminosityFragment), core.Uniforms{
		"tMap":       core.NewUniform(nil),
		"uThreshold": core.NewUniform(threshold),
		"uSmoothing": core.NewUniform(smoothing),
	})
}

func newBlurMaterial(kernelRadius int) *shader.Material {
	name := fmt.Sprintf("bloom.blur.%d", kernelRadius)
	var b strings.Builder
	b.WriteString(screenHeader)
	fmt.Fprintf(&b, "#define KERNEL_RADIUS %d\n", kernelRadius)
	b.WriteString(blurFragment)

	return shader.NewMaterial(name, shader.ScreenProgram(name, b.String()), core.Uniforms{
		"tMap":        core.NewUniform(nil),
		"uDirection":  core.NewUniform(mgl32.Vec2{1, 0}),
		"uResolution": core.NewUniform(mgl32.Vec2{1, 1}),
		"uWeights":    core.NewUniform(GaussianWeights(kernelRadius)),
	})
}

func newBloomCompositeMaterial(blurs []*core.Target, factors []float32) *shader.Material {
	u := core.Uniforms{"uBloomFactors": core.NewUniform(factors)}
	for i, t := range blurs {
		u[fmt.Sprintf("tBlur%d", i+1)] = core.NewUniform(t)
	}
	return shader.NewMaterial("bloom.composite", shader.ScreenProgram("bloom.composite", bloomCompositeFragment), u)
}

func newCompositeMaterial(fluid *core.Uniform, distortion float32) *shader.Material {
	return shader.NewMaterial("composite", shader.ScreenProgram("composite", compositeFragment), core.Uniforms{
		"tScene":           core.NewUniform(nil),
		"tBloom":           core.NewUniform(nil),
		"tFluid":           fluid,
		"uBloomDistortion": core.NewUniform(distortion),
	})
}

// GaussianWeights returns the one-sided tap weights for a blur of the given
// kernel radius, with sigma equal to the radius. Weights are normalised so
// the centre tap plus both mirrored sides sum to 1.
func GaussianWeights(kernelRadius int) []float32 {
	if kernelRadius < 1 {
		return nil
	}
	sigma := float32(kernelRadius)
	w := make([]float32, kernelRadius)
	sum := float32(0)
	for i := range w {
		x := float32(i)
		w[i] = 0.39894 * math32.Exp(-0.5*x*x/(sigma*sigma)) / sigma
		if i == 0 {
			sum += w[i]
		} else {
			sum += 2 * w[i]
		}
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
