// Package task defines the task record, its status lifecycle, and the
// persisted blob format.
//
// The persisted blob is a JSON array of task records:
//
//	[
//	  {
//	    "title": "Ship release",
//	    "date": "2030-01-01",
//	    "time": "09:00",
//	    "status": "scheduled"
//	  }
//	]
//
// There is no versioning field and no identifier. Tasks receive a session ID
// when they enter the in-memory sequence; the ID is never written back.
//
// # Status Values
//
//   - "scheduled": Task is waiting; no countdown runs
//   - "in-progress": Task is being worked on; a countdown runs to its deadline
//   - "completed": Task is finished (set automatically when the deadline passes)
//
// # Deadlines
//
// The deadline is date + time in the local timezone. It is parsed on demand
// and never stored. Dates or times that do not parse yield an invalid
// deadline, which every caller treats as already past.
//
// # Validation
//
// Loading never validates. ValidateBlob checks a blob against the embedded
// JSON Schema (draft 2020-12), or a schema file supplied by the caller, and
// falls back to minimal structural checks when the schema cannot be compiled.
package task
