// Package builder holds the form builder session: the explicit state struct
// behind the editor and the operations that mutate it (AddSection, AddField,
// AddOption, DeleteItem, Change, Submit, ...). Interaction surfaces such as the
// terminal builder and the HTTP server call these methods in response to user
// events and never touch the state directly.
//
// Validation is delegated to pkg/validation and conditional visibility to an
// injected visibility.Evaluator, re-evaluated after every value change.
package builder
