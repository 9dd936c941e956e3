package view

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"

	"fluid-glow/config"
	"fluid-glow/core"
	"fluid-glow/scene"
	"fluid-glow/shader"
)

const (
	floorSize         = 100
	floorY            = -1.6
	floorRepeat       = 16
	reflectorHeight   = 1024
	reflectorInitSize = 512
)

const floorVertexPars = `
uniform mat4 textureMatrix;
out vec4 vCoord;
out vec3 vToEye;`

const floorVertexMain = `
vCoord = textureMatrix * vec4(transformed, 1.0);
vToEye = cameraPosition - (modelMatrix * vec4(transformed, 1.0)).xyz;`

const floorFragmentPars = `
uniform sampler2D reflectMap;
uniform float mirror;
uniform float mixStrength;
in vec4 vCoord;
in vec3 vToEye;`

// The normal map is in tangent space; its blue channel is the plane's up axis.
const floorFragmentDiffuse = `
vec4 normalColor = texture(normalMap, vNormalMapUv * normalScale);
vec3 reflectNormal = normalize(vec3(normalColor.r * 2.0 - 1.0, normalColor.b, normalColor.g * 2.0 - 1.0));
vec3 reflectCoord = vCoord.xyz / vCoord.w;
vec2 reflectUv = reflectCoord.xy + reflectCoord.z * reflectNormal.xz * 0.05;
vec4 reflectColor = texture(reflectMap, reflectUv);

vec3 toEye = normalize(vToEye);
float theta = max(dot(toEye, normal), 0.0);
float reflectance = pow(1.0 - theta, 5.0);
reflectColor = mix(vec4(0.0), reflectColor, reflectance);

diffuseColor.rgb = diffuseColor.rgb * ((1.0 - min(1.0, mirror)) + reflectColor.rgb * mixStrength);`

// Floor is a large polished plane that mirrors the rest of the scene.
type Floor struct {
	Group     *scene.Node
	Reflector *scene.Reflector

	Mirror      *core.Uniform
	MixStrength *core.Uniform

	loader Loader
	assets config.FloorAssets

	mesh    *scene.Node // built by Load, attached by Mount
	mounted bool
}

func NewFloor(loader Loader, assets config.FloorAssets) *Floor {
	return &Floor{
		Group:       scene.NewNode("Floor"),
		Reflector:   scene.NewReflector(reflectorInitSize, reflectorInitSize),
		Mirror:      core.NewUniform(float32(0)),
		MixStrength: core.NewUniform(float32(10)),
		loader:      loader,
		assets:      assets,
	}
}

// Load fetches the floor textures and builds the mesh. A texture failure is
// logged and leaves the floor empty; it is not returned.
func (f *Floor) Load(ctx context.Context) {
	textures, err := f.loader.LoadTextures(ctx, f.assets.BaseColor, f.assets.Normal, f.assets.ORM)
	if err != nil {
		log.Error().Err(err).Msg("floor textures")
		return
	}
	base, normal, orm := textures[0], textures[1], textures[2]
	for _, t := range textures {
		t.SetRepeat(floorRepeat)
	}

	mat := scene.NewStandardMaterial("floor")
	mat.Color = core.ColorWhite.OffsetHSL(0, 0, -0.65)
	mat.Metalness = 1
	mat.Roughness = 1
	mat.Map = base
	mat.MetalnessMap = orm
	mat.RoughnessMap = orm
	mat.AOMap = orm
	mat.AOMapIntensity = 1
	mat.NormalMap = normal
	mat.NormalScale = mgl32.Vec2{3, 3}
	mat.Extension = &shader.Extension{
		Name: "reflector",
		Code: map[shader.Slot]string{
			shader.VertexPars:      floorVertexPars,
			shader.VertexMain:      floorVertexMain,
			shader.FragmentPars:    floorFragmentPars,
			shader.FragmentDiffuse: floorFragmentDiffuse,
		},
		Uniforms: core.Uniforms{
			"reflectMap":    f.Reflector.TargetUniform,
			"textureMatrix": f.Reflector.TextureMatrixUniform,
			"mirror":        f.Mirror,
			"mixStrength":   f.MixStrength,
		},
	}

	plane := scene.CreatePlane(floorSize, floorSize, 1, 1)
	plane.Name = "Floor"
	plane.Material = mat

	mesh := scene.NewMeshNode(plane)
	mesh.SetPosition(mgl32.Vec3{0, floorY, 0})
	mesh.SetRotationX(-math32.Pi / 2)
	mesh.Add(f.Reflector.Node)
	mesh.OnBeforeRender = f.reflect
	f.mesh = mesh
}

// reflect renders the mirrored view with the floor itself hidden.
func (f *Floor) reflect(r scene.Renderer, s *scene.Scene, c *scene.Camera) {
	f.Group.Visible = false
	f.Reflector.Update(r, s, c)
	f.Group.Visible = true
}

// Mount attaches the built mesh. It runs on the render thread.
func (f *Floor) Mount() {
	if f.mesh == nil || f.mounted {
		return
	}
	f.Group.Add(f.mesh)
	f.mounted = true
}

// Mesh returns the floor mesh node, or nil if it was never built.
func (f *Floor) Mesh() *scene.Node {
	return f.mesh
}

func (f *Floor) Resize(width, height int) {
	f.Reflector.SetSize(core.FloorPowerOfTwo(width)/2, reflectorHeight)
}
