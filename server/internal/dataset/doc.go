// Package dataset loads the job-postings CSV into an immutable in-memory
// Table and keeps the table being served in a Store.
//
//   - Load(path) reads plain, .gz or .zst CSV; all failures wrap
//     ErrDataUnavailable. Missing columns are not an error.
//   - Table.Values(column) yields the non-null cells of one column.
//   - Store swaps tables atomically; Replace ignores a table whose
//     fingerprint (BLAKE3 of the file bytes) matches the current one.
//   - Watch(ctx, path, onChange, onFailure) reloads the file on change via fsnotify.
package dataset
