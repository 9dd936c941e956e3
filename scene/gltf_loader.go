package scene

import (
	"fmt"
	"path/filepath"

	"fluid-glow/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ModelData holds the nodes and textures of a loaded model file.
type ModelData struct {
	Roots    []*Node
	Textures []*Texture
}

// LoadGLTF opens a .glb or .gltf file and returns its scene graph with
// standard materials. Broken images and primitives are logged and skipped.
func LoadGLTF(path string) (*ModelData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	b := &gltfBuilder{
		doc:    doc,
		dir:    filepath.Dir(path),
		logger: log.With().Str("model", path).Logger(),
		data:   &ModelData{},
	}
	b.textures()
	b.materials()
	b.meshes()
	b.nodes()
	return b.data, nil
}

// gltfBuilder converts a document in dependency order: textures, then
// materials, meshes and nodes. Each stage indexes the previous one's output
// by glTF index.
type gltfBuilder struct {
	doc    *gltf.Document
	dir    string
	logger zerolog.Logger
	data   *ModelData

	texs   []*Texture
	mats   []*Material
	prims  [][]*Mesh
	nodeOf []*Node
}

func (b *gltfBuilder) textures() {
	b.texs = make([]*Texture, len(b.doc.Textures))
	for i, gt := range b.doc.Textures {
		if gt.Source == nil {
			continue
		}
		if tex := b.image(*gt.Source); tex != nil {
			b.texs[i] = tex
			b.data.Textures = append(b.data.Textures, tex)
		}
	}
}

func (b *gltfBuilder) image(idx int) *Texture {
	img := b.doc.Images[idx]
	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(b.doc, b.doc.BufferViews[*img.BufferView])
		if err != nil {
			b.logger.Warn().Err(err).Int("image", idx).Msg("gltf image buffer view")
			return nil
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", idx)
		}
		tex, err := decodeImageBytes(name, raw)
		if err != nil {
			b.logger.Warn().Err(err).Int("image", idx).Msg("gltf image decode")
			return nil
		}
		return tex
	case img.URI != "" && !img.IsEmbeddedResource():
		// glTF UVs already use a top-left origin, so no flip
		tex, err := loadTextureNoFlip(filepath.Join(b.dir, img.URI))
		if err != nil {
			b.logger.Warn().Err(err).Str("uri", img.URI).Msg("gltf image")
			return nil
		}
		return tex
	}
	return nil
}

func (b *gltfBuilder) texture(idx int) *Texture {
	if idx >= 0 && idx < len(b.texs) {
		return b.texs[idx]
	}
	return nil
}

func (b *gltfBuilder) materials() {
	b.mats = make([]*Material, len(b.doc.Materials))
	for i, gm := range b.doc.Materials {
		mat := NewStandardMaterial(gm.Name)
		mat.DoubleSided = gm.DoubleSided

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Color = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
			mat.Metalness = float32(pbr.MetallicFactorOrDefault())
			mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
			if pbr.BaseColorTexture != nil {
				mat.Map = b.texture(pbr.BaseColorTexture.Index)
			}
			if pbr.MetallicRoughnessTexture != nil {
				// G roughness, B metalness: the same packing the floor uses
				mr := b.texture(pbr.MetallicRoughnessTexture.Index)
				mat.MetalnessMap, mat.RoughnessMap = mr, mr
			}
		}
		if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
			mat.NormalMap = b.texture(*nt.Index)
			s := float32(nt.ScaleOrDefault())
			mat.NormalScale = mgl32.Vec2{s, s}
		}
		if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
			mat.AOMap = b.texture(*ot.Index)
			mat.AOMapIntensity = float32(ot.StrengthOrDefault())
		}
		b.mats[i] = mat
	}
}

func (b *gltfBuilder) meshes() {
	b.prims = make([][]*Mesh, len(b.doc.Meshes))
	for mi, gm := range b.doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(b.doc, gm.Name, pi, *prim)
			if err != nil {
				b.logger.Warn().Err(err).Int("mesh", mi).Int("primitive", pi).Msg("gltf primitive")
				continue
			}
			ComputeTangents(m)
			if prim.Material != nil && *prim.Material < len(b.mats) {
				m.Material = b.mats[*prim.Material]
			} else {
				m.Material = NewStandardMaterial("default")
			}
			b.prims[mi] = append(b.prims[mi], m)
		}
	}
}

func (b *gltfBuilder) nodes() {
	b.nodeOf = make([]*Node, len(b.doc.Nodes))
	for i, gn := range b.doc.Nodes {
		b.nodeOf[i] = b.node(i, gn)
	}
	for i, gn := range b.doc.Nodes {
		for _, c := range gn.Children {
			if c < len(b.nodeOf) {
				b.nodeOf[i].Add(b.nodeOf[c])
			}
		}
	}

	if sc := b.doc.Scene; sc != nil && *sc < len(b.doc.Scenes) {
		for _, r := range b.doc.Scenes[*sc].Nodes {
			if r < len(b.nodeOf) {
				b.data.Roots = append(b.data.Roots, b.nodeOf[r])
			}
		}
		return
	}
	for _, n := range b.nodeOf {
		if n.Parent == nil {
			b.data.Roots = append(b.data.Roots, n)
		}
	}
}

// node builds one glTF node. A mesh with several primitives becomes one
// child per primitive.
func (b *gltfBuilder) node(i int, gn *gltf.Node) *Node {
	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}
	n := NewNode(name)

	t, sc, r := gn.TranslationOrDefault(), gn.ScaleOrDefault(), gn.RotationOrDefault()
	n.SetPosition(mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})
	n.SetScale(mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})
	// glTF stores x, y, z, w
	n.SetRotation(mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}})

	if gn.Mesh == nil || *gn.Mesh >= len(b.prims) {
		return n
	}
	prims := b.prims[*gn.Mesh]
	if len(prims) == 1 {
		n.Mesh = prims[0]
		return n
	}
	for pi, p := range prims {
		child := NewMeshNode(p)
		child.Name = fmt.Sprintf("%s_prim%d", name, pi)
		n.Add(child)
	}
	return n
}

func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs, uvs1 [][2]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_1"]; ok {
		uvs1, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
			v.UV1 = v.UV
		}
		if i < len(uvs1) {
			v.UV1 = mgl32.Vec2(uvs1[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return CreateMeshFromData(name, verts, indices), nil
}
