package soft

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// screenVertex is one post-vertex-shader vertex ready for rasterization.
type screenVertex struct {
	x, y float32
	// z is the NDC depth remapped to [0,1].
	z float32
	// invW weights perspective-correct interpolation.
	invW float32
	out  VSOutput
}

func readFloats(data []byte, byteOffset uint64, count int) []float32 {
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint32(data[byteOffset+uint64(i*4):])
		out[i] = gomath.Float32frombits(bits)
	}
	return out
}

func mat4FromFloats(f []float32) math.Mat4 {
	m := math.Mat4{}
	copy(m.Data[:], f)
	return m
}

// assembleVertex fetches one vertex's attributes per the pipeline's
// input layout.
func assembleVertex(state rhi.GraphicsState, vertexIndex, instanceIndex uint32) (VSInput, error) {
	in := VSInput{VertexIndex: vertexIndex, InstanceIndex: instanceIndex}

	findBinding := func(slot uint32) *rhi.VertexBufferBinding {
		for i := range state.VertexBuffers {
			if state.VertexBuffers[i].Slot == slot {
				return &state.VertexBuffers[i]
			}
		}
		return nil
	}

	for _, attr := range state.Pipeline.Desc().InputLayout {
		binding := findBinding(attr.BufferSlot)
		if binding == nil {
			return in, fmt.Errorf("vertex attribute '%s': no buffer bound to slot %d", attr.Name, attr.BufferSlot)
		}
		b, err := asBuffer(binding.Buffer)
		if err != nil {
			return in, err
		}
		element := vertexIndex
		if attr.IsInstanced {
			element = instanceIndex
		}
		offset := binding.Offset + uint64(attr.Offset) + uint64(element)*uint64(attr.ElementStride)
		count := attributeFloatCount(attr.Name)
		if offset+uint64(count*4) > b.desc.ByteSize {
			return in, fmt.Errorf("vertex attribute '%s': fetch past end of buffer '%s'", attr.Name, b.name)
		}
		f := readFloats(b.data, offset, count)
		switch attr.Name {
		case "position":
			in.Position = math.Vec3{X: f[0], Y: f[1], Z: f[2]}
		case "texcoord1":
			in.TexCoord = math.Vec2{X: f[0], Y: f[1]}
		case "normal":
			in.Normal = math.Vec3{X: f[0], Y: f[1], Z: f[2]}
		case "tangent":
			in.Tangent = math.Vec3{X: f[0], Y: f[1], Z: f[2]}
		case "transform":
			in.Transform = mat4FromFloats(f)
		case "prev_transform":
			in.PrevTransform = mat4FromFloats(f)
		}
	}
	return in, nil
}

func edgeFn(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// rasterizeDrawIndexed executes one indexed draw on the CPU: vertex
// shading, viewport transform, triangle rasterization with depth test
// and perspective-correct interpolation, pixel shading into the bound
// attachments.
func rasterizeDrawIndexed(state rhi.GraphicsState, args rhi.DrawArguments) error {
	pipeline := state.Pipeline.(*graphicsPipeline)
	fb := state.Framebuffer.(*framebuffer)

	rs, err := newShaderResources(state.BindingSet)
	if err != nil {
		return err
	}

	if state.IndexBuffer.Buffer == nil {
		return fmt.Errorf("indexed draw without an index buffer")
	}
	ib, err := asBuffer(state.IndexBuffer.Buffer)
	if err != nil {
		return err
	}
	if state.IndexBuffer.Format != rhi.FormatR32Uint {
		return fmt.Errorf("unsupported index format")
	}
	indexAt := func(i uint32) uint32 {
		off := state.IndexBuffer.Offset + uint64(args.StartIndex+i)*4
		return binary.LittleEndian.Uint32(ib.data[off:]) + args.StartVertex
	}

	var colors []*texture
	for _, att := range fb.desc.ColorAttachments {
		colors = append(colors, att.(*texture))
	}
	var depth *texture
	if fb.desc.DepthAttachment != nil {
		depth = fb.desc.DepthAttachment.(*texture)
	}

	vp := state.Viewport
	if vp.Width == 0 || vp.Height == 0 {
		vp = rhi.Viewport{Width: float32(fb.info.Width), Height: float32(fb.info.Height)}
	}

	instanceCount := args.InstanceCount
	if instanceCount == 0 {
		instanceCount = 1
	}

	for inst := uint32(0); inst < instanceCount; inst++ {
		instanceIndex := args.StartInstance + inst
		for tri := uint32(0); tri+3 <= args.VertexCount; tri += 3 {
			var sv [3]screenVertex
			skip := false
			for k := 0; k < 3; k++ {
				vin, err := assembleVertex(state, indexAt(tri+uint32(k)), instanceIndex)
				if err != nil {
					return err
				}
				vout := pipeline.vs(vin, rs)
				w := vout.Position.W
				if w <= math.FloatEpsilon {
					// No near-plane clipping: drop triangles that
					// reach behind the camera.
					skip = true
					break
				}
				ndcX := vout.Position.X / w
				ndcY := vout.Position.Y / w
				ndcZ := vout.Position.Z / w
				sv[k] = screenVertex{
					x:    vp.X + (ndcX*0.5+0.5)*vp.Width,
					y:    vp.Y + (1.0-(ndcY*0.5+0.5))*vp.Height,
					z:    ndcZ*0.5 + 0.5,
					invW: 1.0 / w,
					out:  vout,
				}
			}
			if skip {
				continue
			}

			area := edgeFn(sv[0].x, sv[0].y, sv[1].x, sv[1].y, sv[2].x, sv[2].y)
			if area == 0 {
				continue
			}
			// Counter-clockwise in NDC appears clockwise in y-down
			// screen space, so front faces carry negative area here.
			switch pipeline.desc.CullMode {
			case rhi.CullModeBack:
				if area > 0 {
					continue
				}
			case rhi.CullModeFront:
				if area < 0 {
					continue
				}
			}

			minX := int(math.Floor(math.Min(sv[0].x, math.Min(sv[1].x, sv[2].x))))
			maxX := int(math.Floor(math.Max(sv[0].x, math.Max(sv[1].x, sv[2].x)))) + 1
			minY := int(math.Floor(math.Min(sv[0].y, math.Min(sv[1].y, sv[2].y))))
			maxY := int(math.Floor(math.Max(sv[0].y, math.Max(sv[1].y, sv[2].y)))) + 1
			minX = math.Max(minX, int(vp.X))
			minY = math.Max(minY, int(vp.Y))
			maxX = math.Min(maxX, int(vp.X+vp.Width))
			maxY = math.Min(maxY, int(vp.Y+vp.Height))

			for py := minY; py < maxY; py++ {
				for px := minX; px < maxX; px++ {
					cx := float32(px) + 0.5
					cy := float32(py) + 0.5
					b0 := edgeFn(sv[1].x, sv[1].y, sv[2].x, sv[2].y, cx, cy) / area
					b1 := edgeFn(sv[2].x, sv[2].y, sv[0].x, sv[0].y, cx, cy) / area
					b2 := edgeFn(sv[0].x, sv[0].y, sv[1].x, sv[1].y, cx, cy) / area
					if b0 < 0 || b1 < 0 || b2 < 0 {
						continue
					}

					z := b0*sv[0].z + b1*sv[1].z + b2*sv[2].z
					if pipeline.desc.DepthTest && depth != nil {
						if z >= depth.load(px, py)[0] {
							continue
						}
					}

					in := PSInput{PixelX: px, PixelY: py}
					in.VSOutput = interpolate(sv, b0, b1, b2)
					outputs := pipeline.ps(in, rs)

					for i, t := range colors {
						if i >= len(outputs) {
							break
						}
						o := outputs[i]
						t.store(px, py, [4]float32{o.X, o.Y, o.Z, o.W})
					}
					if pipeline.desc.DepthWrite && depth != nil {
						d := depth.load(px, py)
						d[0] = z
						depth.store(px, py, d)
					}
				}
			}
		}
	}
	return nil
}

// interpolate blends the three vertices' outputs perspective-correct.
func interpolate(sv [3]screenVertex, b0, b1, b2 float32) VSOutput {
	w0 := b0 * sv[0].invW
	w1 := b1 * sv[1].invW
	w2 := b2 * sv[2].invW
	sum := w0 + w1 + w2
	if sum != 0 {
		w0 /= sum
		w1 /= sum
		w2 /= sum
	}

	blend3 := func(a, b, c math.Vec3) math.Vec3 {
		return a.MulScalar(w0).Add(b.MulScalar(w1)).Add(c.MulScalar(w2))
	}
	blend4 := func(a, b, c math.Vec4) math.Vec4 {
		return a.MulScalar(w0).Add(b.MulScalar(w1)).Add(c.MulScalar(w2))
	}

	out := VSOutput{}
	out.Position = blend4(sv[0].out.Position, sv[1].out.Position, sv[2].out.Position)
	out.PrevPosition = blend4(sv[0].out.PrevPosition, sv[1].out.PrevPosition, sv[2].out.PrevPosition)
	out.WorldPos = blend3(sv[0].out.WorldPos, sv[1].out.WorldPos, sv[2].out.WorldPos)
	out.Normal = blend3(sv[0].out.Normal, sv[1].out.Normal, sv[2].out.Normal)
	out.TexCoord = math.Vec2{
		X: sv[0].out.TexCoord.X*w0 + sv[1].out.TexCoord.X*w1 + sv[2].out.TexCoord.X*w2,
		Y: sv[0].out.TexCoord.Y*w0 + sv[1].out.TexCoord.Y*w1 + sv[2].out.TexCoord.Y*w2,
	}
	return out
}

func dispatchCompute(state rhi.ComputeState, groupsX, groupsY, groupsZ uint32) error {
	pipeline := state.Pipeline.(*computePipeline)
	rs, err := newShaderResources(state.BindingSet)
	if err != nil {
		return err
	}
	if groupsZ == 0 {
		groupsZ = 1
	}
	sizeX := pipeline.desc.GroupSizeX
	sizeY := pipeline.desc.GroupSizeY
	for gy := uint32(0); gy < groupsY; gy++ {
		for gx := uint32(0); gx < groupsX; gx++ {
			for ly := uint32(0); ly < sizeY; ly++ {
				for lx := uint32(0); lx < sizeX; lx++ {
					pipeline.cs(gx*sizeX+lx, gy*sizeY+ly, rs)
				}
			}
		}
	}
	return nil
}
