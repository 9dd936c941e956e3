package fluid

// header is shared by every solver pass. The neighbour macros sample one
// texel left/right/top/bottom of vUv.
const header = `
#version 410 core
in vec2 vUv;
out vec4 fragColor;
uniform vec2 texelSize;
#define vL (vUv - vec2(texelSize.x, 0.0))
#define vR (vUv + vec2(texelSize.x, 0.0))
#define vT (vUv + vec2(0.0, texelSize.y))
#define vB (vUv - vec2(0.0, texelSize.y))
`

const splatFragment = header + `
uniform sampler2D uTarget;
uniform float aspectRatio;
uniform vec3 color;
uniform vec2 point;
uniform float radius;

void main() {
    vec2 p = vUv - point;
    p.x *= aspectRatio;
    vec3 splat = exp(-dot(p, p) / radius) * color;
    vec3 base = texture(uTarget, vUv).xyz;
    fragColor = vec4(base + splat, 1.0);
}
`

const curlFragment = header + `
uniform sampler2D uVelocity;

void main() {
    float L = texture(uVelocity, vL).y;
    float R = texture(uVelocity, vR).y;
    float T = texture(uVelocity, vT).x;
    float B = texture(uVelocity, vB).x;
    float vorticity = R - L - T + B;
    fragColor = vec4(0.5 * vorticity, 0.0, 0.0, 1.0);
}
`

const vorticityFragment = header + `
uniform sampler2D uVelocity;
uniform sampler2D uCurl;
uniform float curl;
uniform float dt;

void main() {
    float L = texture(uCurl, vL).x;
    float R = texture(uCurl, vR).x;
    float T = texture(uCurl, vT).x;
    float B = texture(uCurl, vB).x;
    float C = texture(uCurl, vUv).x;

    vec2 force = 0.5 * vec2(abs(T) - abs(B), abs(R) - abs(L));
    force /= length(force) + 0.0001;
    force *= curl * C;
    force.y *= -1.0;

    vec2 velocity = texture(uVelocity, vUv).xy;
    fragColor = vec4(velocity + force * dt, 0.0, 1.0);
}
`

const divergenceFragment = header + `
uniform sampler2D uVelocity;

void main() {
    float L = texture(uVelocity, vL).x;
    float R = texture(uVelocity, vR).x;
    float T = texture(uVelocity, vT).y;
    float B = texture(uVelocity, vB).y;

    vec2 C = texture(uVelocity, vUv).xy;
    if (vL.x < 0.0) { L = -C.x; }
    if (vR.x > 1.0) { R = -C.x; }
    if (vT.y > 1.0) { T = -C.y; }
    if (vB.y < 0.0) { B = -C.y; }

    float div = 0.5 * (R - L + T - B);
    fragColor = vec4(div, 0.0, 0.0, 1.0);
}
`

const clearFragment = header + `
uniform sampler2D uTexture;
uniform float value;

void main() {
    fragColor = value * texture(uTexture, vUv);
}
`

const pressureFragment = header + `
uniform sampler2D uPressure;
uniform sampler2D uDivergence;

void main() {
    float L = texture(uPressure, vL).x;
    float R = texture(uPressure, vR).x;
    float T = texture(uPressure, vT).x;
    float B = texture(uPressure, vB).x;
    float divergence = texture(uDivergence, vUv).x;
    float pressure = (L + R + B + T - divergence) * 0.25;
    fragColor = vec4(pressure, 0.0, 0.0, 1.0);
}
`

const gradientSubtractFragment = header + `
uniform sampler2D uPressure;
uniform sampler2D uVelocity;

void main() {
    float L = texture(uPressure, vL).x;
    float R = texture(uPressure, vR).x;
    float T = texture(uPressure, vT).x;
    float B = texture(uPressure, vB).x;
    vec2 velocity = texture(uVelocity, vUv).xy;
    velocity -= vec2(R - L, T - B);
    fragColor = vec4(velocity, 0.0, 1.0);
}
`

const advectionFragment = header + `
uniform sampler2D uVelocity;
uniform sampler2D uSource;
uniform float dt;
uniform float dissipation;

void main() {
    vec2 coord = vUv - dt * texture(uVelocity, vUv).xy * texelSize;
    fragColor = dissipation * texture(uSource, coord);
    fragColor.a = 1.0;
}
`
