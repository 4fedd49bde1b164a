// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/gpu"
)

// paramsSize is the size of the shader's Params uniform.
const paramsSize = 16

// halPipeline runs the bicubic shader on a HAL device. The pipeline objects
// live as long as the backend; the buffers are rebuilt per geometry.
type halPipeline struct {
	ctx    *gpu.HALContext
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	geom      upscale.Geometry
	paramsBuf hal.Buffer
	srcBuf    hal.Buffer
	dstBuf    hal.Buffer
	bindGroup hal.BindGroup
}

func newHALPipeline(ctx *gpu.HALContext) (*halPipeline, error) {
	p := &halPipeline{ctx: ctx, device: ctx.HalDevice(), queue: ctx.HalQueue()}
	if p.device == nil || p.queue == nil {
		return nil, gpu.ErrNilHALDevice
	}
	if err := p.createPipeline(); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *halPipeline) createPipeline() error {
	code, err := CompileSPIRV()
	if err != nil {
		return err
	}
	p.shader, err = p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "bicubic_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	p.bindLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "bicubic_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}

	p.pipeLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "bicubic_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	p.pipeline, err = p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "bicubic_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	return nil
}

// resize rebuilds the buffers for g. Same geometry is a no-op.
func (p *halPipeline) resize(g upscale.Geometry) error {
	if p.bindGroup != nil && p.geom == g {
		return nil
	}
	p.destroyBuffers()

	srcSize := uint64(g.RenderW) * uint64(g.RenderH) * 4
	dstSize := uint64(g.OutputW) * uint64(g.OutputH) * 4

	var err error
	p.paramsBuf, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bicubic_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: params buffer: %v", gpu.ErrOutOfMemory, err)
	}
	p.srcBuf, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bicubic_src", Size: srcSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: source buffer %d bytes: %v", gpu.ErrOutOfMemory, srcSize, err)
	}
	p.dstBuf, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bicubic_dst", Size: dstSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("%w: output buffer %d bytes: %v", gpu.ErrOutOfMemory, dstSize, err)
	}

	p.bindGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "bicubic_bind", Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: p.paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: p.srcBuf.NativeHandle(), Offset: 0, Size: srcSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: p.dstBuf.NativeHandle(), Offset: 0, Size: dstSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}

	p.queue.WriteBuffer(p.paramsBuf, 0, makeParams(g))
	p.geom = g
	return nil
}

// makeParams serializes the Params uniform.
func makeParams(g upscale.Geometry) []byte {
	b := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(g.RenderW))  //nolint:gosec // dimensions always fit uint32
	binary.LittleEndian.PutUint32(b[4:], uint32(g.RenderH))  //nolint:gosec // dimensions always fit uint32
	binary.LittleEndian.PutUint32(b[8:], uint32(g.OutputW))  //nolint:gosec // dimensions always fit uint32
	binary.LittleEndian.PutUint32(b[12:], uint32(g.OutputH)) //nolint:gosec // dimensions always fit uint32
	return b
}

// run uploads input, dispatches one invocation per output pixel and reads
// the result back through the context's staging pool.
func (p *halPipeline) run(input []byte) ([]byte, error) {
	g := p.geom
	p.queue.WriteBuffer(p.srcBuf, 0, packPixels(input))

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "bicubic_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("bicubic"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "bicubic_pass"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.Dispatch(workgroups(g.OutputW), workgroups(g.OutputH), 1)
	pass.End()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	if err := p.ctx.SubmitAndWait(cmdBuf); err != nil {
		return nil, err
	}
	packed, err := p.ctx.ReadBuffer(p.dstBuf, uint64(g.OutputW)*uint64(g.OutputH)*4)
	if err != nil {
		return nil, err
	}
	return unpackPixels(packed), nil
}

func (p *halPipeline) destroyBuffers() {
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	for _, b := range []*hal.Buffer{&p.paramsBuf, &p.srcBuf, &p.dstBuf} {
		if *b != nil {
			p.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	p.geom = upscale.Geometry{}
}

func (p *halPipeline) destroy() {
	if p.device == nil {
		return
	}
	p.destroyBuffers()
	if p.pipeline != nil {
		p.device.DestroyComputePipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
	}
	p.device = nil
}

// packPixels converts RGBA8 bytes to little-endian u32 words.
func packPixels(data []byte) []byte {
	out := make([]byte, len(data))
	for i := 0; i+3 < len(data); i += 4 {
		packed := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
		binary.LittleEndian.PutUint32(out[i:], packed)
	}
	return out
}

// unpackPixels converts little-endian u32 words back to RGBA8 bytes.
func unpackPixels(packed []byte) []byte {
	out := make([]byte, len(packed))
	for i := 0; i+3 < len(packed); i += 4 {
		val := binary.LittleEndian.Uint32(packed[i:])
		out[i+0] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
		out[i+1] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
		out[i+2] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
		out[i+3] = uint8((val >> 24) & 0xFF) //nolint:gosec // masked to 8 bits
	}
	return out
}
