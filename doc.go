// Package shadercache persists compiled GPU shader programs across runs.
//
// A cache directory holds three groups of files:
//   - Guest files: the deduplicated guest shader code and constant buffer 1
//     snapshot of every stage ever stored.
//   - Shared files: one entry per program with the guest code index of each
//     stage and the GPU state the program was specialized for.
//   - Host files, one pair per graphics API and GPU vendor: the compiled
//     host binary of each program and its per-stage translation info.
//
// Host binaries are used when the backend accepts them. Otherwise the
// program is translated again from its guest code, and the shared and host
// files are rewritten so the next run starts from binaries that link.
//
// # Quick Start
//
//	c, err := shadercache.New(dir, backend, translator,
//	    shadercache.WithProgress(func(state shadercache.State, current, total int) {
//	        log.Printf("%s %d/%d", state, current, total)
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	if _, err := c.Load(ctx); err != nil {
//	    return err
//	}
//
// Programs compiled later are stored with Save and written in the
// background once ProcessSaveQueue sees them linked:
//
//	c.Save(program, sources)
//	// once per frame
//	c.ProcessSaveQueue()
package shadercache
