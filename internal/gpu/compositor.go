package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/redact/region"
)

// Compositor errors.
var (
	// ErrNilDevice is returned when a compositor is created without a device.
	ErrNilDevice = errors.New("gpu: device is nil")

	// ErrNotBegun is returned when drawing outside Begin/End.
	ErrNotBegun = errors.New("gpu: frame not begun")

	// ErrInvalidSize is returned for non-positive frame or texture sizes.
	ErrInvalidSize = errors.New("gpu: invalid size")

	// ErrPixelSize is returned when a pixel buffer does not hold exactly
	// width*height*4 bytes.
	ErrPixelSize = errors.New("gpu: pixel buffer size mismatch")

	// ErrExternalTarget is returned by ReadPixels when rendering into a
	// caller-provided view.
	ErrExternalTarget = errors.New("gpu: cannot read back an external target")
)

// TargetFormat is the color format of the render target and of every
// texture the compositor samples.
const TargetFormat = gputypes.TextureFormatRGBA8Unorm

// copyPitchAlignment is the row alignment for texture-to-buffer copies.
const copyPitchAlignment = 256

// Options configures a Compositor.
type Options struct {
	// CombinedBlend blends the alpha channel with the color factors
	// (SRC_ALPHA, ONE_MINUS_SRC_ALPHA) instead of (ONE, ONE_MINUS_SRC_ALPHA).
	CombinedBlend bool
}

// Stats describes compositor activity.
type Stats struct {
	// Quads is the number of redaction quads drawn in the last frame.
	Quads int
	// Frames is the number of submitted frames.
	Frames uint64
	// VertexCapacity is the current vertex buffer size in bytes.
	VertexCapacity uint64
}

// boundTexture is a sampled texture with the bind group that exposes it to
// the quad shader.
type boundTexture struct {
	tex    hal.Texture
	view   hal.TextureView
	group  hal.BindGroup
	width  int
	height int
}

type submission struct {
	index uint64
	cmd   hal.CommandBuffer
}

// Compositor draws one frame per Begin/End pair: a full-screen base quad
// with alpha 1.0 followed by one alpha-blended overlay quad per redaction
// box. All draws share a single index buffer {0,1,2,0,2,3}; quad vertices
// are uploaded into one vertex buffer per frame and each quad is issued as
// its own indexed draw with a base vertex offset.
//
// GPU objects are created lazily on first use and released by Destroy in
// reverse creation order. A Compositor is not safe for concurrent use.
type Compositor struct {
	device   hal.Device
	queue    hal.Queue
	combined bool

	shader          hal.ShaderModule
	bindLayout      hal.BindGroupLayout
	pipeLayout      hal.PipelineLayout
	sampler         hal.Sampler
	basePipeline    hal.RenderPipeline
	overlayPipeline hal.RenderPipeline

	indexBuf       hal.Buffer
	baseUniform    hal.Buffer
	overlayUniform hal.Buffer
	vertexBuf      hal.Buffer
	vertexCap      uint64

	base    boundTexture
	overlay boundTexture

	target         boundTexture
	externalTarget hal.TextureView

	width, height int
	begun         bool
	hasBase       bool
	alpha         float32
	vertices      []byte
	quads         int

	inflight []submission
	stats    Stats
}

// NewCompositor creates a compositor on device and queue. No GPU objects
// are created until the first frame.
func NewCompositor(device hal.Device, queue hal.Queue, opts Options) (*Compositor, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Compositor{
		device:   device,
		queue:    queue,
		combined: opts.CombinedBlend,
		alpha:    1,
	}, nil
}

// overlayBlend returns the blend state for redaction quads.
func (c *Compositor) overlayBlend() gputypes.BlendState {
	if c.combined {
		factor := gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		}
		return gputypes.BlendState{Color: factor, Alpha: factor}
	}
	return gputypes.BlendStateAlpha()
}

// ensurePipeline creates the shader, layouts, sampler and both render
// pipelines on first use.
func (c *Compositor) ensurePipeline() error {
	if c.overlayPipeline != nil {
		return nil
	}
	if quadShaderSource == "" {
		return errors.New("gpu: quad shader source is empty")
	}

	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "redaction_quad_shader",
		Source: hal.ShaderSource{WGSL: quadShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile quad shader: %w", err)
	}
	c.shader = shader

	// Binding 0: QuadUniforms, 1: sampled texture, 2: sampler.
	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "redaction_quad_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create quad bind group layout: %w", err)
	}
	c.bindLayout = bindLayout

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "redaction_quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline layout: %w", err)
	}
	c.pipeLayout = pipeLayout

	sampler, err := c.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "redaction_quad_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create quad sampler: %w", err)
	}
	c.sampler = sampler

	base, err := c.createPipeline("redaction_base_pipeline", nil)
	if err != nil {
		return err
	}
	c.basePipeline = base

	blend := c.overlayBlend()
	overlay, err := c.createPipeline("redaction_overlay_pipeline", &blend)
	if err != nil {
		return err
	}
	c.overlayPipeline = overlay
	slogger().Debug("gpu: quad pipelines created", "combined_blend", c.combined)
	return nil
}

// createPipeline builds a quad pipeline. A nil blend writes fragments
// unblended.
func (c *Compositor) createPipeline(label string, blend *gputypes.BlendState) (hal.RenderPipeline, error) {
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    TargetFormat,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

// ensureStaticBuffers creates the index buffer and the two uniform
// buffers. The index data and the base pass alpha never change.
func (c *Compositor) ensureStaticBuffers() error {
	if c.indexBuf == nil {
		buf, err := c.createBuffer("redaction_indices", uint64(2*len(quadIndices)),
			gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return err
		}
		if err := c.queue.WriteBuffer(buf, 0, indexBytes()); err != nil {
			c.device.DestroyBuffer(buf)
			return fmt.Errorf("upload indices: %w", err)
		}
		c.indexBuf = buf
	}
	if c.baseUniform == nil {
		buf, err := c.createBuffer("redaction_base_uniform", quadUniformSize,
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return err
		}
		if err := c.queue.WriteBuffer(buf, 0, uniformBytes(1)); err != nil {
			c.device.DestroyBuffer(buf)
			return fmt.Errorf("upload base uniform: %w", err)
		}
		c.baseUniform = buf
	}
	if c.overlayUniform == nil {
		buf, err := c.createBuffer("redaction_overlay_uniform", quadUniformSize,
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return err
		}
		c.overlayUniform = buf
	}
	return nil
}

// ensureVertexCapacity grows the vertex buffer to hold size bytes,
// doubling to amortize reallocation.
func (c *Compositor) ensureVertexCapacity(size uint64) error {
	if c.vertexBuf != nil && c.vertexCap >= size {
		return nil
	}
	newCap := max(c.vertexCap, 16*quadBytes)
	for newCap < size {
		newCap *= 2
	}
	buf, err := c.createBuffer("redaction_vertices", newCap,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	if c.vertexBuf != nil {
		c.device.DestroyBuffer(c.vertexBuf)
	}
	c.vertexBuf = buf
	c.vertexCap = newCap
	c.stats.VertexCapacity = newCap
	slogger().Debug("gpu: vertex buffer grown", "bytes", newCap)
	return nil
}

func (c *Compositor) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return buf, nil
}

// createTexture allocates a 2D RGBA texture and its default view.
func (c *Compositor) createTexture(label string, width, height int, usage gputypes.TextureUsage) (boundTexture, error) {
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TargetFormat,
		Usage:         usage,
	})
	if err != nil {
		return boundTexture{}, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           label + "_view",
		Format:          TargetFormat,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		return boundTexture{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return boundTexture{tex: tex, view: view, width: width, height: height}, nil
}

// createSampled allocates a sampled texture, uploads pix and binds it with
// the given uniform buffer.
func (c *Compositor) createSampled(label string, pix []byte, width, height int, uniform hal.Buffer) (boundTexture, error) {
	bt, err := c.createTexture(label, width, height,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return boundTexture{}, err
	}
	if err := c.upload(bt, pix); err != nil {
		c.destroyTexture(&bt)
		return boundTexture{}, err
	}
	group, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: c.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniform.NativeHandle(), Offset: 0, Size: quadUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: bt.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: c.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		c.destroyTexture(&bt)
		return boundTexture{}, fmt.Errorf("create %s bind group: %w", label, err)
	}
	bt.group = group
	return bt, nil
}

func (c *Compositor) upload(bt boundTexture, pix []byte) error {
	err := c.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: bt.tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(bt.width * 4), RowsPerImage: uint32(bt.height)},
		&hal.Extent3D{Width: uint32(bt.width), Height: uint32(bt.height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("upload texture: %w", err)
	}
	return nil
}

func (c *Compositor) destroyTexture(bt *boundTexture) {
	if bt.group != nil {
		c.device.DestroyBindGroup(bt.group)
	}
	if bt.view != nil {
		c.device.DestroyTextureView(bt.view)
	}
	if bt.tex != nil {
		c.device.DestroyTexture(bt.tex)
	}
	*bt = boundTexture{}
}

func checkPixels(pix []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if len(pix) != width*height*4 {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrPixelSize, len(pix), width, height)
	}
	return nil
}

// SetTarget renders subsequent frames into view, typically a surface
// texture, instead of the compositor's own target. The view must have
// TargetFormat. A nil view restores the owned target.
func (c *Compositor) SetTarget(view hal.TextureView) {
	c.externalTarget = view
}

// SetOverlay replaces the overlay bitmap. The previous overlay texture is
// released before the new one is created, so a failure leaves no overlay.
// A nil pix clears the overlay.
func (c *Compositor) SetOverlay(pix []byte, width, height int) error {
	c.destroyTexture(&c.overlay)
	if pix == nil {
		return nil
	}
	if err := checkPixels(pix, width, height); err != nil {
		return err
	}
	if err := c.ensurePipeline(); err != nil {
		return err
	}
	if err := c.ensureStaticBuffers(); err != nil {
		return err
	}
	bt, err := c.createSampled("redaction_overlay", pix, width, height, c.overlayUniform)
	if err != nil {
		return err
	}
	c.overlay = bt
	slogger().Debug("gpu: overlay texture installed", "width", width, "height", height)
	return nil
}

// HasOverlay reports whether an overlay texture is installed.
func (c *Compositor) HasOverlay() bool { return c.overlay.group != nil }

// Begin starts a width x height frame.
func (c *Compositor) Begin(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := c.ensurePipeline(); err != nil {
		return err
	}
	if err := c.ensureStaticBuffers(); err != nil {
		return err
	}
	if c.externalTarget == nil && (c.target.width != width || c.target.height != height) {
		c.destroyTexture(&c.target)
		bt, err := c.createTexture("redaction_target", width, height,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc|gputypes.TextureUsageTextureBinding)
		if err != nil {
			return err
		}
		c.target = bt
	}

	c.width, c.height = width, height
	c.begun = true
	c.hasBase = false
	c.quads = 0
	c.alpha = 1
	c.vertices = appendQuad(c.vertices[:0], fullScreenQuad)
	return nil
}

// DrawBase uploads the video frame drawn full-screen at alpha 1.0.
// pix is tightly packed RGBA; it may differ in size from the frame and is
// stretched to cover it.
func (c *Compositor) DrawBase(pix []byte, width, height int) error {
	if !c.begun {
		return ErrNotBegun
	}
	if err := checkPixels(pix, width, height); err != nil {
		return err
	}
	if c.base.width != width || c.base.height != height {
		c.destroyTexture(&c.base)
		bt, err := c.createSampled("redaction_base", pix, width, height, c.baseUniform)
		if err != nil {
			return err
		}
		c.base = bt
	} else if err := c.upload(c.base, pix); err != nil {
		return err
	}
	c.hasBase = true
	return nil
}

// DrawRegion queues one overlay quad over box at the given alpha. The box
// is in pixel space and may extend past the frame; rasterization clips
// it. Without an overlay nothing is queued. The last alpha queued in a
// frame applies to every quad of that frame.
func (c *Compositor) DrawRegion(box region.Rect, alpha float32) error {
	if !c.begun {
		return ErrNotBegun
	}
	if !c.HasOverlay() {
		return nil
	}
	c.alpha = alpha
	c.vertices = appendQuad(c.vertices, region.NDC(box, c.width, c.height))
	c.quads++
	return nil
}

// End uploads the frame's vertices, records the base and overlay draws in
// one render pass and submits it.
func (c *Compositor) End() error {
	if !c.begun {
		return ErrNotBegun
	}
	c.begun = false
	c.reclaim()

	if err := c.ensureVertexCapacity(uint64(len(c.vertices))); err != nil {
		return err
	}
	if err := c.queue.WriteBuffer(c.vertexBuf, 0, c.vertices); err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}
	if c.quads > 0 {
		if err := c.queue.WriteBuffer(c.overlayUniform, 0, uniformBytes(c.alpha)); err != nil {
			return fmt.Errorf("upload overlay uniform: %w", err)
		}
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "redaction_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("redaction_frame"); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}

	view := c.externalTarget
	if view == nil {
		view = c.target.view
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "redaction_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetVertexBuffer(0, c.vertexBuf, 0)
	rp.SetIndexBuffer(c.indexBuf, gputypes.IndexFormatUint16, 0)

	if c.hasBase {
		rp.SetPipeline(c.basePipeline)
		rp.SetBindGroup(0, c.base.group, nil)
		rp.DrawIndexed(uint32(len(quadIndices)), 1, 0, 0, 0)
	}
	if c.quads > 0 {
		rp.SetPipeline(c.overlayPipeline)
		rp.SetBindGroup(0, c.overlay.group, nil)
		for i := 1; i <= c.quads; i++ {
			rp.DrawIndexed(uint32(len(quadIndices)), 1, 0, int32(4*i), 0)
		}
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	index, err := c.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		c.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("submit: %w", err)
	}
	c.inflight = append(c.inflight, submission{index: index, cmd: cmd})

	c.stats.Quads = c.quads
	c.stats.Frames++
	slogger().Debug("gpu: frame submitted", "quads", c.quads, "submission", index)
	return nil
}

// reclaim frees command buffers of completed submissions.
func (c *Compositor) reclaim() {
	done := c.queue.PollCompleted()
	kept := c.inflight[:0]
	for _, s := range c.inflight {
		if s.index <= done {
			c.device.FreeCommandBuffer(s.cmd)
			continue
		}
		kept = append(kept, s)
	}
	c.inflight = kept
}

// ReadPixels copies the last rendered frame into dst as tightly packed
// RGBA. It waits for the GPU to go idle.
func (c *Compositor) ReadPixels(dst []byte) error {
	if c.externalTarget != nil {
		return ErrExternalTarget
	}
	if c.target.tex == nil {
		return ErrNotBegun
	}
	w, h := uint32(c.target.width), uint32(c.target.height)
	if len(dst) != int(w*h*4) {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrPixelSize, len(dst), w, h)
	}

	bytesPerRow := w * 4
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(aligned) * uint64(h)

	staging, err := c.createBuffer("redaction_staging", size,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer c.device.DestroyBuffer(staging)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "redaction_readback"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("redaction_readback"); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(c.target.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: c.target.tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmd)

	if _, err := c.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("submit readback: %w", err)
	}
	if err := c.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}

	mapping, err := c.device.MapBuffer(staging, 0, size)
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(mapping.Ptr), size)
	for row := range h {
		copy(dst[row*bytesPerRow:(row+1)*bytesPerRow], src[row*aligned:row*aligned+bytesPerRow])
	}
	if err := c.device.UnmapBuffer(staging); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}
	return nil
}

// Stats returns compositor counters.
func (c *Compositor) Stats() Stats { return c.stats }

// Destroy waits for outstanding work and releases every GPU object in
// reverse creation order. Safe to call more than once.
func (c *Compositor) Destroy() {
	if c.device == nil {
		return
	}
	if len(c.inflight) > 0 {
		if err := c.device.WaitIdle(); err != nil {
			slogger().Warn("gpu: wait idle on destroy", "err", err)
		}
		for _, s := range c.inflight {
			c.device.FreeCommandBuffer(s.cmd)
		}
		c.inflight = nil
	}

	c.destroyTexture(&c.target)
	c.destroyTexture(&c.overlay)
	c.destroyTexture(&c.base)
	for _, buf := range []*hal.Buffer{&c.vertexBuf, &c.overlayUniform, &c.baseUniform, &c.indexBuf} {
		if *buf != nil {
			c.device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
	c.vertexCap = 0

	if c.overlayPipeline != nil {
		c.device.DestroyRenderPipeline(c.overlayPipeline)
		c.overlayPipeline = nil
	}
	if c.basePipeline != nil {
		c.device.DestroyRenderPipeline(c.basePipeline)
		c.basePipeline = nil
	}
	if c.sampler != nil {
		c.device.DestroySampler(c.sampler)
		c.sampler = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
}
