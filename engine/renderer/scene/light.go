package scene

import (
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

// Light is a leaf that contributes to the deferred lighting pass. Each
// implementation packs itself into the GPU-side constant layout.
type Light interface {
	Leaf
	FillLightConstants(lc *shaders.LightConstants)
}

// DirectionalLight models a distant emitter such as the sun. Direction
// points from the light towards the scene and is kept normalized.
type DirectionalLight struct {
	Name        string
	Direction   math.Vec3
	AngularSize float32 // apparent diameter, degrees
	Irradiance  float32
	Color       math.Vec3
}

func NewDirectionalLight(name string) *DirectionalLight {
	return &DirectionalLight{
		Name:        name,
		Direction:   math.Vec3{Y: -1},
		AngularSize: 0.5,
		Irradiance:  1.0,
		Color:       math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

func (d *DirectionalLight) LeafName() string { return d.Name }

// SetDirection normalizes the given vector. A zero vector leaves the
// previous direction untouched.
func (d *DirectionalLight) SetDirection(dir math.Vec3) {
	if dir.LengthSquared() <= math.FloatEpsilon {
		return
	}
	d.Direction = dir.Normalized()
}

func (d *DirectionalLight) FillLightConstants(lc *shaders.LightConstants) {
	*lc = shaders.LightConstants{}
	lc.LightType = shaders.LightTypeDirectional
	lc.Direction = [4]float32{d.Direction.X, d.Direction.Y, d.Direction.Z, d.AngularSize * math.Deg2Rad}
	lc.ColorIntensity = [4]float32{d.Color.X, d.Color.Y, d.Color.Z, d.Irradiance}
}

// PointLight is a local emitter with quadratic falloff clipped at Radius.
type PointLight struct {
	Name      string
	Position  math.Vec3
	Radius    float32
	Intensity float32
	Color     math.Vec3
}

func NewPointLight(name string) *PointLight {
	return &PointLight{
		Name:      name,
		Radius:    1.0,
		Intensity: 1.0,
		Color:     math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

func (p *PointLight) LeafName() string { return p.Name }

func (p *PointLight) FillLightConstants(lc *shaders.LightConstants) {
	*lc = shaders.LightConstants{}
	lc.LightType = shaders.LightTypePoint
	lc.PositionRadius = [4]float32{p.Position.X, p.Position.Y, p.Position.Z, p.Radius}
	lc.ColorIntensity = [4]float32{p.Color.X, p.Color.Y, p.Color.Z, p.Intensity}
}
