// Package gpu defines the contracts between the shader cache and the rest of
// the graphics stack, along with the shader metadata the cache persists.
//
// The cache never talks to a graphics API or shader translator directly.
// Hosts provide:
//   - a [Backend] that creates host programs from per-stage binaries
//   - a [Translator] that turns guest shader code into host binaries
//
// The translator reads guest code and GPU state through an [Accessor]. When
// shaders are retranslated from the disk cache, the accessor is backed by the
// stored guest code and the stored [SpecializationState] instead of live GPU
// memory.
//
// # Program layout
//
// Graphics programs have [GraphicsSlots] stage slots. Slot 0 holds the
// optional "vertex A" shader that is merged into the vertex stage, and slots 1
// through 5 hold the vertex, tessellation control, tessellation evaluation,
// geometry and fragment stages. Compute programs have a single slot.
package gpu
