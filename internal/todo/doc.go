// Package todo owns the task list: the Task model, field validation, the
// file-backed Store, the display ordering policy and summary statistics.
//
// The task file (tasks.json) is a JSON array of task records:
//
//	[
//	    {
//	        "id": "3f2c9a7e1b4d4e0f9a8b7c6d5e4f3a2b",
//	        "title": "File taxes",
//	        "description": "Federal and state",
//	        "priority": "High",
//	        "due_date": "2025-01-05",
//	        "completed": false
//	    }
//	]
//
// # Persistence
//
// Every mutating Store call rewrites the whole file. Writes go to a temporary
// file in the same directory which is synced and renamed over the original,
// and an advisory lock (<file>.lock) is held while reading or writing.
//
// # Loading
//
//   - A missing file yields an empty list.
//   - A file that is not a JSON array yields an empty list and a
//     *PersistenceError wrapping ErrCorruptDocument.
//   - Records are checked against the record schema. Missing description,
//     priority and completed fields take the defaults "", Medium and false.
//     Records without an id, title or valid due_date, with an unknown
//     priority, or repeating an earlier id are dropped and reported.
//   - When anything was discarded the original bytes are copied to
//     <file>.bak before the next write.
//
// # Priority Values
//
//   - "High": rank 0
//   - "Medium": rank 1
//   - "Low": rank 2
//
// The Store is not safe for concurrent use.
package todo
