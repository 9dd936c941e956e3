package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	pstrconv "github.com/tdewolff/parse/v2/strconv"

	"fluid-glow/core"
)

// LoadModel loads a .glb, .gltf or .obj file by extension.
func LoadModel(path string) (*ModelData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return LoadGLTF(path)
	case ".obj":
		return LoadOBJ(path)
	}
	return nil, fmt.Errorf("model %q: unsupported format", path)
}

// objFace is one triangle; each corner indexes the position, UV and normal
// pools (-1 when absent).
type objFace struct {
	v, vt, vn [3]int
}

type objObject struct {
	name    string
	matName string
	faces   []objFace
}

// LoadOBJ reads a Wavefront .obj file. A referenced .mtl next to it is
// loaded as well; its textures are resolved relative to the file.
func LoadOBJ(path string) (*ModelData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	data, err := ParseOBJ(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	return data, nil
}

// ParseOBJ builds one mesh node per object or group. Polygons are fan
// triangulated; meshes without normals get area-weighted ones. dir resolves
// mtllib references; pass "" to skip materials.
func ParseOBJ(r io.Reader, dir string) (*ModelData, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		objects   []objObject
	)
	materials := map[string]*Material{}
	var textures []*Texture
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if p, ok := parseFloats(fields[1:], 3); ok {
				positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})
			}
		case "vn":
			if p, ok := parseFloats(fields[1:], 3); ok {
				normals = append(normals, mgl32.Vec3{p[0], p[1], p[2]})
			}
		case "vt":
			if p, ok := parseFloats(fields[1:], 2); ok {
				uvs = append(uvs, mgl32.Vec2{p[0], p[1]})
			}
		case "o", "g":
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objObject{name: name, matName: cur.matName}
		case "usemtl":
			if len(fields) > 1 {
				cur.matName = fields[1]
			}
		case "mtllib":
			if dir == "" || len(fields) < 2 {
				continue
			}
			mats, texs, err := loadMTL(filepath.Join(dir, fields[1]), dir)
			if err != nil {
				return nil, err
			}
			for k, v := range mats {
				materials[k] = v
			}
			textures = append(textures, texs...)
		case "f":
			if len(fields) < 4 {
				continue
			}
			corners := make([][3]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				corners = append(corners, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			for i := 1; i+1 < len(corners); i++ {
				a, b, c := corners[0], corners[i], corners[i+1]
				cur.faces = append(cur.faces, objFace{
					v:  [3]int{a[0], b[0], c[0]},
					vt: [3]int{a[1], b[1], c[1]},
					vn: [3]int{a[2], b[2], c[2]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry")
	}

	data := &ModelData{Textures: textures}
	for _, obj := range objects {
		mesh := buildOBJMesh(obj, positions, normals, uvs)
		if mat, ok := materials[obj.matName]; ok {
			mesh.Material = mat
		} else {
			mesh.Material = NewStandardMaterial(obj.name)
		}
		node := NewMeshNode(mesh)
		node.Name = obj.name
		data.Roots = append(data.Roots, node)
	}
	return data, nil
}

func parseFloats(fields []string, n int) ([]float32, bool) {
	if len(fields) < n {
		return nil, false
	}
	out := make([]float32, n)
	for i := range out {
		f, m := pstrconv.ParseFloat([]byte(fields[i]))
		if m == 0 {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn" into 0-based
// indices. Negative OBJ indices count back from the end of each pool.
func parseFaceVertex(tok string, nv, nvt, nvn int) [3]int {
	res := [3]int{-1, -1, -1}
	pools := [3]int{nv, nvt, nvn}
	for i, part := range strings.SplitN(tok, "/", 3) {
		if part == "" {
			continue
		}
		n, m := pstrconv.ParseInt([]byte(part))
		if m == 0 {
			continue
		}
		switch {
		case n > 0:
			res[i] = int(n) - 1
		case n < 0:
			res[i] = pools[i] + int(n)
		}
	}
	return res
}

// buildOBJMesh de-duplicates corners sharing the same index triple.
func buildOBJMesh(obj objObject, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *Mesh {
	type key [3]int
	seen := map[key]uint32{}
	var (
		vertices []core.Vertex
		indices  []uint32
	)
	hasNormals := true

	for _, face := range obj.faces {
		for c := 0; c < 3; c++ {
			k := key{face.v[c], face.vt[c], face.vn[c]}
			if idx, ok := seen[k]; ok {
				indices = append(indices, idx)
				continue
			}
			v := core.Vertex{Normal: mgl32.Vec3{0, 1, 0}}
			if k[0] >= 0 && k[0] < len(positions) {
				v.Position = positions[k[0]]
			}
			if k[1] >= 0 && k[1] < len(uvs) {
				v.UV = uvs[k[1]]
				v.UV1 = v.UV
			}
			if k[2] >= 0 && k[2] < len(normals) {
				v.Normal = normals[k[2]]
			} else {
				hasNormals = false
			}
			idx := uint32(len(vertices))
			vertices = append(vertices, v)
			seen[k] = idx
			indices = append(indices, idx)
		}
	}

	if !hasNormals {
		generateNormals(vertices, indices)
	}
	m := CreateMeshFromData(obj.name, vertices, indices)
	ComputeTangents(m)
	return m
}

// generateNormals writes area-weighted vertex normals.
func generateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].Len() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// loadMTL maps Kd to Color, Ns to roughness, map_Kd to Map and
// map_Bump/norm to NormalMap.
func loadMTL(path, dir string) (map[string]*Material, []*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open mtl %q: %w", path, err)
	}
	defer f.Close()

	mats := map[string]*Material{}
	var (
		textures []*Texture
		cur      *Material
	)
	texture := func(name string) *Texture {
		tex, err := LoadTexture(filepath.Join(dir, name))
		if err != nil {
			return nil
		}
		textures = append(textures, tex)
		return tex
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = NewStandardMaterial(fields[1])
				mats[fields[1]] = cur
			}
			continue
		}
		if cur == nil || len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "Kd":
			if p, ok := parseFloats(fields[1:], 3); ok {
				cur.Color = core.Color{R: p[0], G: p[1], B: p[2], A: 1}
			}
		case "Ns":
			if p, ok := parseFloats(fields[1:], 1); ok {
				// Blinn-Phong exponent to GGX roughness
				cur.Roughness = core.Clamp(math32.Sqrt(2/(math32.Max(p[0], 0)+2)), 0, 1)
			}
		case "d":
			if p, ok := parseFloats(fields[1:], 1); ok {
				cur.Color.A = p[0]
			}
		case "map_Kd":
			cur.Map = texture(fields[len(fields)-1])
		case "map_Bump", "map_bump", "bump", "norm":
			cur.NormalMap = texture(fields[len(fields)-1])
		}
	}
	return mats, textures, scanner.Err()
}
