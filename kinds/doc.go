// Package kinds defines the record types managed by the records tool:
// cars, rental vehicles, library books, inbox emails and smart devices.
//
// Each type comes with a recordstore.Kind describing its fields and
// validation rules, plus the few operations that only make sense for
// that type (borrowing a book, computing a rental cost and so on).
package kinds
