// Package trace is the step model shared by every algorithm engine.
//
// An engine run produces a [Log]: an ordered, append-only sequence of [Step]
// records. Each step names the micro-operation that just happened ([Kind]),
// the structure nodes it concerns (Focus), operation data ([Payload]), a deep
// copy of the structure at that instant ([Snapshot]) and a human-readable
// narrative.
//
// # Snapshot Independence
//
// Engines mutate their structure in place. A step must never observe later
// mutations, so every snapshot handed to [Recorder.Record] is a fresh clone and
// the recorder deep-copies payload slices and maps. Once appended a step is
// immutable; [Log.At] and [Log.Steps] return copies, snapshot included, so a
// caller may type-assert and modify what it receives.
//
// # Frames
//
// Snapshots are engine-specific types. Every snapshot can project itself into a
// [Frame], a renderer-neutral view made of nodes, edges, named lists and an
// optional table. Frames are what the JSON codec writes and what decoded logs
// contain, so a log read back from disk, cache or HTTP is still playable.
//
// # Identity
//
// Structure nodes carry a stable id generated by [IDs], a deterministic counter.
// Ids are preserved across clones so a renderer can correlate the same logical
// node across steps.
//
// # Usage
//
//	rec := trace.NewRecorder()
//	rec.Record(trace.Kind("leaf_insert"), []string{n.ID}, trace.Payload{"key": 7},
//	    tree.Clone(), "insert 7 into leaf n3")
//	log := rec.Log()
//	for i, step := range log.All() {
//	    fmt.Println(i, step.Narrative)
//	}
package trace
