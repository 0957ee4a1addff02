package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/meigma/shadercache/gpu"
)

// Guest code opcodes understood by Translator.
const (
	OpConstantBuffer = 'c'
	OpStorageBuffer  = 's'
	OpTexture        = 't' // followed by handle and cbuf slot bytes
	OpImage          = 'i'
	OpTopology       = 'p'
	OpCbUse          = 'u'
	OpReadCb1        = 'r' // followed by an offset byte
	OpFailTranslate  = 'x'
	OpFailLink       = 'f'
)

// FailMarker in a stage binary makes the fake backend fail the link.
const FailMarker = "FAIL"

// ErrTranslate is returned by Translator for code containing OpFailTranslate.
var ErrTranslate = errors.New("testutil: translation failed")

// GuestShader encodes ops as fake guest code: a length byte followed by the
// ops.
func GuestShader(ops ...byte) []byte {
	if len(ops) > 255 {
		panic("testutil: guest shader too long")
	}
	return append([]byte{byte(len(ops))}, ops...)
}

// Translator is a deterministic fake gpu.Translator. Its output embeds
// Version so a backend can reject binaries of another version.
type Translator struct {
	Version string

	decodes atomic.Int64
}

// Decodes returns the number of stages decoded so far.
func (t *Translator) Decodes() int { return int(t.decodes.Load()) }

// DecodeGraphics implements gpu.Translator.
func (t *Translator) DecodeGraphics(acc gpu.Accessor, flags gpu.TranslationFlags, stageIndex int) (gpu.TranslatorContext, error) {
	return t.decode(acc, flags)
}

// DecodeCompute implements gpu.Translator.
func (t *Translator) DecodeCompute(acc gpu.Accessor) (gpu.TranslatorContext, error) {
	return t.decode(acc, gpu.DefaultFlags|gpu.FlagCompute)
}

func (t *Translator) decode(acc gpu.Accessor, flags gpu.TranslationFlags) (gpu.TranslatorContext, error) {
	t.decodes.Add(1)
	n, err := acc.ReadCode(0, 1)
	if err != nil {
		return nil, err
	}
	body, err := acc.ReadCode(1, int(n[0]))
	if err != nil {
		return nil, err
	}
	return &translatorContext{t: t, acc: acc, body: body, flags: flags}, nil
}

type translatorContext struct {
	t     *Translator
	acc   gpu.Accessor
	body  []byte
	flags gpu.TranslationFlags
}

func (c *translatorContext) Translate(previous gpu.TranslatorContext) (*gpu.ShaderProgram, error) {
	info := &gpu.ShaderProgramInfo{Stage: c.acc.Stage()}
	var out bytes.Buffer
	fmt.Fprintf(&out, "%s:%s:", c.t.Version, info.Stage)

	if prev, ok := previous.(*translatorContext); ok && prev != nil {
		out.WriteString("A[")
		if err := prev.run(info, &out); err != nil {
			return nil, err
		}
		out.WriteString("]")
	}
	if err := c.run(info, &out); err != nil {
		return nil, err
	}
	return &gpu.ShaderProgram{Binary: out.Bytes(), Info: info}, nil
}

func (c *translatorContext) run(info *gpu.ShaderProgramInfo, out *bytes.Buffer) error {
	acc := c.acc
	for i := 0; i < len(c.body); i++ {
		switch op := c.body[i]; op {
		case OpConstantBuffer:
			b := acc.QueryBindingConstantBuffer(len(info.CBuffers))
			info.CBuffers = append(info.CBuffers, gpu.BufferDescriptor{Binding: int32(b)}) //nolint:gosec // test bindings are small
			fmt.Fprintf(out, "c%d", b)
		case OpStorageBuffer:
			b := acc.QueryBindingStorageBuffer(len(info.SBuffers))
			info.SBuffers = append(info.SBuffers, gpu.BufferDescriptor{Binding: int32(b)}) //nolint:gosec // test bindings are small
			fmt.Fprintf(out, "s%d", b)
		case OpTexture:
			if i+2 >= len(c.body) {
				return fmt.Errorf("%w: truncated texture op", ErrTranslate)
			}
			handle, cbuf := int(c.body[i+1]), int(c.body[i+2])
			i += 2
			if err := acc.RegisterTexture(handle, cbuf); err != nil {
				return err
			}
			format, _, err := acc.QueryTextureFormat(handle, cbuf)
			if err != nil {
				return err
			}
			st, err := acc.QuerySamplerType(handle, cbuf)
			if err != nil {
				return err
			}
			b := acc.QueryBindingTexture(len(info.Textures), 1)
			info.Textures = append(info.Textures, gpu.TextureDescriptor{
				Binding:     int32(b), //nolint:gosec // test bindings are small
				Type:        st,
				Format:      format,
				CbufSlot:    int32(cbuf),   //nolint:gosec // byte
				HandleIndex: int32(handle), //nolint:gosec // byte
			})
			fmt.Fprintf(out, "t%d/%d/%d", b, format, st)
		case OpImage:
			b := acc.QueryBindingImage(len(info.Images), 1)
			info.Images = append(info.Images, gpu.TextureDescriptor{Binding: int32(b)}) //nolint:gosec // test bindings are small
			fmt.Fprintf(out, "i%d", b)
		case OpTopology:
			fmt.Fprintf(out, "p%d", acc.QueryPrimitiveTopology())
		case OpCbUse:
			fmt.Fprintf(out, "u%d", acc.QueryConstantBufferUse())
		case OpReadCb1:
			if i+1 >= len(c.body) {
				return fmt.Errorf("%w: truncated cb1 op", ErrTranslate)
			}
			v, err := acc.ReadConstantBuffer1(int(c.body[i+1]))
			if err != nil {
				return err
			}
			i++
			fmt.Fprintf(out, "r%d", v)
		case OpFailTranslate:
			return ErrTranslate
		case OpFailLink:
			out.WriteString(FailMarker)
		default:
			out.WriteByte(op)
		}
	}
	return nil
}

// Backend is a fake gpu.Backend. Programs resolve after PendingChecks
// non-blocking link checks, or at the first blocking one.
type Backend struct {
	Caps gpu.Capabilities

	// PendingChecks is the number of non-blocking CheckLink calls that
	// report LinkIncomplete.
	PendingChecks int

	// Reject makes programs fail to link when it returns true.
	Reject func(sources []gpu.ShaderSource) bool

	mu             sync.Mutex
	created        int
	outstanding    int
	maxOutstanding int
}

var _ gpu.Backend = (*Backend)(nil)

// Capabilities implements gpu.Backend.
func (b *Backend) Capabilities() gpu.Capabilities { return b.Caps }

// CreateProgram implements gpu.Backend.
func (b *Backend) CreateProgram(sources []gpu.ShaderSource, info gpu.ProgramInfo) (gpu.Program, error) {
	fail := b.Reject != nil && b.Reject(sources)
	for _, s := range sources {
		if bytes.Contains(s.Binary, []byte(FailMarker)) {
			fail = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.created++
	b.outstanding++
	b.maxOutstanding = max(b.maxOutstanding, b.outstanding)

	p := &Program{backend: b, sources: sources, info: info, pending: b.PendingChecks, status: gpu.LinkSuccess}
	if fail {
		p.status = gpu.LinkFailed
	}
	return p, nil
}

// Created returns the number of programs created.
func (b *Backend) Created() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.created
}

// MaxOutstanding returns the largest number of programs that were created
// but whose link status had not yet been observed.
func (b *Backend) MaxOutstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxOutstanding
}

// Program is a fake gpu.Program.
type Program struct {
	backend *Backend
	sources []gpu.ShaderSource
	info    gpu.ProgramInfo
	status  gpu.LinkStatus

	mu       sync.Mutex
	pending  int
	resolved bool
}

// CheckLink implements gpu.Program.
func (p *Program) CheckLink(blocking bool) gpu.LinkStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !blocking && !p.resolved && p.pending > 0 {
		p.pending--
		return gpu.LinkIncomplete
	}
	if !p.resolved {
		p.resolved = true
		p.backend.mu.Lock()
		p.backend.outstanding--
		p.backend.mu.Unlock()
	}
	return p.status
}

// Binary implements gpu.Program.
func (p *Program) Binary() ([]byte, error) {
	if p.status != gpu.LinkSuccess {
		return nil, errors.New("testutil: program not linked")
	}
	var out []byte
	for _, s := range p.sources {
		out = append(out, s.Binary...)
	}
	return out, nil
}

// Sources returns the sources the program was created from.
func (p *Program) Sources() []gpu.ShaderSource { return p.sources }

// Info returns the program info passed at creation.
func (p *Program) Info() gpu.ProgramInfo { return p.info }
