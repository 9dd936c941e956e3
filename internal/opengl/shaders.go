package opengl

import "fluid-glow/shader"

// ── Scene shaders ─────────────────────────────────────────────────────────────

// sceneVertex is shared by the standard and basic templates. Extensions can
// read `transformed` (object-space position) in vertex_main.
const sceneVertex = `
#version 410 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 uv;
layout(location = 3) in vec2 uv1;
layout(location = 4) in vec3 tangent;

uniform mat4 modelMatrix;
uniform mat4 viewMatrix;
uniform mat4 projectionMatrix;
uniform mat3 normalMatrix;
uniform vec3 cameraPosition;
uniform vec2 uvRepeat;
uniform vec2 uv1Repeat;

out vec2 vUv;
out vec2 vUv1;
out vec2 vNormalMapUv;
out vec3 vWorldPosition;
out vec3 vNormal;
out vec3 vTangent;
out float vFogDepth;

#pragma slot vertex_pars

void main() {
    vec3 transformed = position;

    vUv = uv * uvRepeat;
    vUv1 = uv1 * uv1Repeat;
    vNormalMapUv = vUv;

    vec4 worldPosition = modelMatrix * vec4(transformed, 1.0);
    vWorldPosition = worldPosition.xyz;
    vNormal = normalize(normalMatrix * normal);
    vTangent = mat3(modelMatrix) * tangent;

    vec4 mvPosition = viewMatrix * worldPosition;
    vFogDepth = -mvPosition.z;
    gl_Position = projectionMatrix * mvPosition;

    #pragma slot vertex_main
}
`

const sceneFragmentHeader = `
#version 410 core
in vec2 vUv;
in vec2 vUv1;
in vec2 vNormalMapUv;
in vec3 vWorldPosition;
in vec3 vNormal;
in vec3 vTangent;
in float vFogDepth;

out vec4 fragColor;

uniform vec3 diffuse;
uniform float opacity;
uniform sampler2D map;
uniform bool hasMap;

uniform bool useFog;
uniform vec3 fogColor;
uniform float fogNear;
uniform float fogFar;

uniform vec3 cameraPosition;
uniform bool doubleSided;

vec3 applyFog(vec3 color) {
    if (!useFog) return color;
    float f = smoothstep(fogNear, fogFar, vFogDepth);
    return mix(color, fogColor, f);
}
`

// standardFragment is metal/roughness shading with a hemisphere light and
// up to four directional lights. Extensions can modify diffuseColor in
// fragment_diffuse; normal (world space, normal-mapped) and the material
// samplers are in scope there.
const standardFragment = sceneFragmentHeader + `
uniform float metalness;
uniform float roughness;
uniform sampler2D normalMap;
uniform bool hasNormalMap;
uniform vec2 normalScale;
uniform sampler2D metalnessMap;
uniform bool hasMetalnessMap;
uniform sampler2D roughnessMap;
uniform bool hasRoughnessMap;
uniform sampler2D aoMap;
uniform bool hasAoMap;
uniform float aoMapIntensity;

uniform vec3 hemiSkyColor;
uniform vec3 hemiGroundColor;
uniform int numDirLights;
uniform vec3 dirLightDirection[4];
uniform vec3 dirLightColor[4];

#pragma slot fragment_pars

const float PI = 3.141592653589793;

float D_GGX(float alpha, float dotNH) {
    float a2 = alpha * alpha;
    float denom = dotNH * dotNH * (a2 - 1.0) + 1.0;
    return a2 / (PI * denom * denom);
}

float V_GGX_SmithCorrelated(float alpha, float dotNL, float dotNV) {
    float a2 = alpha * alpha;
    float gv = dotNL * sqrt(a2 + (1.0 - a2) * dotNV * dotNV);
    float gn = dotNV * sqrt(a2 + (1.0 - a2) * dotNL * dotNL);
    return 0.5 / max(gv + gn, 1e-6);
}

vec3 F_Schlick(vec3 f0, float dotVH) {
    float fresnel = exp2((-5.55473 * dotVH - 6.98316) * dotVH);
    return f0 * (1.0 - fresnel) + fresnel;
}

void main() {
    vec4 diffuseColor = vec4(diffuse, opacity);
    if (hasMap) diffuseColor *= texture(map, vUv);

    float metalnessFactor = metalness;
    if (hasMetalnessMap) metalnessFactor *= texture(metalnessMap, vUv).b;
    float roughnessFactor = roughness;
    if (hasRoughnessMap) roughnessFactor *= texture(roughnessMap, vUv).g;

    vec3 normal = normalize(vNormal);
    if (doubleSided && !gl_FrontFacing) normal = -normal;
    if (hasNormalMap) {
        vec3 t = normalize(vTangent - normal * dot(normal, vTangent));
        vec3 b = cross(normal, t);
        vec3 mapN = texture(normalMap, vNormalMapUv).xyz * 2.0 - 1.0;
        mapN.xy *= normalScale;
        normal = normalize(mat3(t, b, normal) * mapN);
    }

    #pragma slot fragment_diffuse

    vec3 albedo = diffuseColor.rgb * (1.0 - metalnessFactor);
    vec3 specularColor = mix(vec3(0.04), diffuseColor.rgb, metalnessFactor);
    float r = clamp(roughnessFactor, 0.0525, 1.0);
    float alpha = r * r;

    vec3 viewDir = normalize(cameraPosition - vWorldPosition);
    float dotNV = clamp(dot(normal, viewDir), 0.0, 1.0);

    vec3 direct = vec3(0.0);
    for (int i = 0; i < numDirLights; i++) {
        vec3 l = normalize(dirLightDirection[i]);
        float dotNL = clamp(dot(normal, l), 0.0, 1.0);
        vec3 irradiance = dotNL * dirLightColor[i];
        vec3 h = normalize(l + viewDir);
        float dotNH = clamp(dot(normal, h), 0.0, 1.0);
        float dotVH = clamp(dot(viewDir, h), 0.0, 1.0);
        vec3 spec = F_Schlick(specularColor, dotVH) * V_GGX_SmithCorrelated(alpha, dotNL, dotNV) * D_GGX(alpha, dotNH);
        direct += irradiance * (albedo / PI + spec);
    }

    float hemiWeight = 0.5 * normal.y + 0.5;
    vec3 indirect = mix(hemiGroundColor, hemiSkyColor, hemiWeight) * albedo / PI;
    if (hasAoMap) {
        float ao = (texture(aoMap, vUv1).r - 1.0) * aoMapIntensity + 1.0;
        indirect *= ao;
    }

    fragColor = vec4(applyFog(direct + indirect), diffuseColor.a);
}
`

// basicFragment is unlit: color times map, then fog.
const basicFragment = sceneFragmentHeader + `
#pragma slot fragment_pars

void main() {
    vec4 diffuseColor = vec4(diffuse, opacity);
    if (hasMap) diffuseColor *= texture(map, vUv);

    #pragma slot fragment_diffuse

    fragColor = vec4(applyFog(diffuseColor.rgb), diffuseColor.a);
}
`

var standardTemplate = shader.Template{
	Name:     "standard",
	Vertex:   sceneVertex,
	Fragment: standardFragment,
}

var basicTemplate = shader.Template{
	Name:     "basic",
	Vertex:   sceneVertex,
	Fragment: basicFragment,
}
